// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package convert turns a directory of text files into a single NDJSON
// training corpus with one {"text": ...} record per non-empty line.
//
// A run is a single sequential pass: discover candidates, then for each
// candidate stream its lines into the output. A candidate that cannot be read
// is reported and skipped; only a missing or empty input directory (or an
// output that cannot be written) stops the run.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirseerhq/sirseer-corpus/internal/corpus"
	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/metadata"
	"github.com/sirseerhq/sirseer-corpus/internal/output"
)

const (
	// DefaultProgressInterval is how many processed files pass between
	// progress lines.
	DefaultProgressInterval = 10

	// DefaultPreviewCount is how many output records are echoed at the end.
	DefaultPreviewCount = 3
)

// Options configures a conversion run.
type Options struct {
	InputDir   string
	OutputFile string

	// ProgressInterval defaults to DefaultProgressInterval when <= 0.
	ProgressInterval int

	// PreviewCount is the number of records echoed after the run; 0 disables
	// the preview.
	PreviewCount int

	// Out receives progress and summary lines. Nil discards them.
	Out io.Writer
}

// Result describes a finished run.
type Result struct {
	Stats      metadata.Stats
	OutputFile string

	// Preview holds the first records of the output, verbatim.
	Preview []string

	tracker *metadata.Tracker
	params  metadata.RunParams
}

// Report builds the persisted form of the run.
func (r *Result) Report(toolVersion string) *metadata.RunReport {
	return r.tracker.GenerateReport(toolVersion, r.params)
}

// Failures lists the skipped candidates in walk order.
func (r *Result) Failures() []metadata.FileFailure {
	return r.tracker.Failures()
}

// Converter runs one conversion. It is not safe for concurrent use.
type Converter struct {
	opts       Options
	out        io.Writer
	openWriter func(path string) (output.RecordWriter, error)
}

// New creates a Converter for opts.
func New(opts Options) *Converter {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.PreviewCount < 0 {
		opts.PreviewCount = 0
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	return &Converter{
		opts: opts,
		out:  out,
		openWriter: func(path string) (output.RecordWriter, error) {
			return output.NewFileWriter(path)
		},
	}
}

// Run performs the conversion.
//
// It returns an error wrapping ErrConfiguration, without touching the output
// path, when the input directory is missing or empty. Per-file failures are
// printed and counted but never returned. The context is checked between
// files; on cancellation the partially written output should be discarded.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	candidates, err := corpus.Discover(c.opts.InputDir)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.out, "Found %d files\n", len(candidates))

	tracker := metadata.New()
	tracker.SetCandidates(len(candidates))

	writer, err := c.openWriter(c.opts.OutputFile)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	// The output may already exist inside the input tree from an earlier run.
	outputInfo, _ := os.Stat(c.opts.OutputFile)

	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion interrupted: %w", err)
		}

		if outputInfo != nil && isSameFile(outputInfo, path) {
			c.skip(tracker, path, errors.New("is the output file"))
			continue
		}

		if err := c.convertFile(path, writer, tracker); err != nil {
			if errors.Is(err, corpuserrors.ErrFileRead) {
				c.skip(tracker, path, err)
				continue
			}
			return nil, err
		}

		tracker.FileProcessed()
		stats := tracker.Stats()
		if stats.FilesProcessed%c.opts.ProgressInterval == 0 {
			fmt.Fprintf(c.out, "Processed %d/%d files... (%d total lines)\n",
				stats.FilesProcessed, stats.FilesAttempted, stats.LinesWritten)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	result := &Result{
		Stats:      tracker.Stats(),
		OutputFile: c.opts.OutputFile,
		tracker:    tracker,
		params: metadata.RunParams{
			InputDir:   c.opts.InputDir,
			OutputFile: c.opts.OutputFile,
		},
	}

	c.printSummary(result.Stats)

	if c.opts.PreviewCount > 0 {
		preview, err := output.Preview(c.opts.OutputFile, c.opts.PreviewCount)
		if err != nil {
			return nil, err
		}
		result.Preview = preview
		c.printPreview(preview)
	}

	return result, nil
}

// convertFile streams one candidate into the writer. Read failures come back
// wrapping ErrFileRead; anything else is a write failure.
func (c *Converter) convertFile(path string, writer output.RecordWriter, tracker *metadata.Tracker) error {
	reader, err := corpus.OpenLines(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	for reader.Next() {
		if err := writer.Write(output.Record{Text: reader.Text()}); err != nil {
			return err
		}
		tracker.RecordLine()
	}

	return reader.Err()
}

func (c *Converter) skip(tracker *metadata.Tracker, path string, err error) {
	cause := err
	var fileErr *corpuserrors.FileError
	if errors.As(err, &fileErr) {
		cause = fileErr.Err
	}

	fmt.Fprintf(c.out, "Error processing %s: %v\n", path, cause)
	tracker.FileFailed(path, cause)
}

func (c *Converter) printSummary(stats metadata.Stats) {
	fmt.Fprintf(c.out, "\nConversion complete:\n")
	fmt.Fprintf(c.out, "- Files processed: %d\n", stats.FilesProcessed)
	if stats.FilesFailed > 0 {
		fmt.Fprintf(c.out, "- Files skipped: %d\n", stats.FilesFailed)
	}
	fmt.Fprintf(c.out, "- Total lines converted: %d\n", stats.LinesWritten)
	fmt.Fprintf(c.out, "- Output saved to: %s\n", c.opts.OutputFile)
}

func (c *Converter) printPreview(lines []string) {
	fmt.Fprintf(c.out, "\nSample entries from output file:\n")
	for i, line := range lines {
		fmt.Fprintf(c.out, "Entry %d: %s\n", i+1, line)
	}
}

func isSameFile(target os.FileInfo, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(target, info)
}
