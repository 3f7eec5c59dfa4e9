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

// Package metadata tracks the statistics of a conversion run and can persist
// them as a JSON report.
//
// The tracker is the single owner of the run counters (files attempted,
// processed and failed, lines written). Reports are only written when a report
// directory is configured; each run produces its own file, so a directory of
// reports doubles as a history of corpus builds.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// reportPattern matches the files written by SaveReport.
const reportPattern = "convert-report-*.json"

// Tracker accumulates counters for one conversion run.
// It is not safe for concurrent use.
type Tracker struct {
	startTime time.Time
	runID     string
	stats     Stats
	failures  []FileFailure
}

// New starts tracking a run.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
		runID:     uuid.NewString(),
	}
}

// RunID returns the identifier assigned to this run.
func (t *Tracker) RunID() string {
	return t.runID
}

// SetCandidates records how many candidates the walk produced.
func (t *Tracker) SetCandidates(n int) {
	t.stats.FilesAttempted = n
}

// RecordLine counts one written record.
func (t *Tracker) RecordLine() {
	t.stats.LinesWritten++
}

// FileProcessed counts a candidate that was read to the end.
func (t *Tracker) FileProcessed() {
	t.stats.FilesProcessed++
}

// FileFailed counts a skipped candidate and remembers the reason.
func (t *Tracker) FileFailed(path string, err error) {
	t.stats.FilesFailed++
	t.failures = append(t.failures, FileFailure{Path: path, Reason: err.Error()})
}

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats {
	return t.stats
}

// Failures returns the skipped candidates recorded so far.
func (t *Tracker) Failures() []FileFailure {
	out := make([]FileFailure, len(t.failures))
	copy(out, t.failures)
	return out
}

// GenerateReport builds the report for the run as of now.
func (t *Tracker) GenerateReport(toolVersion string, params RunParams) *RunReport {
	completedAt := time.Now()

	return &RunReport{
		ToolVersion: toolVersion,
		RunID:       t.runID,
		Parameters:  params,
		Results: RunResults{
			FilesAttempted: t.stats.FilesAttempted,
			FilesProcessed: t.stats.FilesProcessed,
			FilesFailed:    t.stats.FilesFailed,
			LinesWritten:   t.stats.LinesWritten,
			Duration:       completedAt.Sub(t.startTime).String(),
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
		Failures: t.Failures(),
	}
}

// SaveReport writes the report into dir as
// convert-report-<unix start>-<run id prefix>.json and returns the path.
// The file appears atomically: readers never observe a partial report.
func SaveReport(report *RunReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	id := report.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("convert-report-%d-%s.json", report.Results.StartedAt.Unix(), id)
	path := filepath.Join(dir, filename)

	var buf bytes.Buffer
	if err := WriteReportToWriter(report, &buf); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("failed to save report file: %w", err)
	}

	return path, nil
}

// LoadLatestReport returns the report in dir with the most recent completion
// time, or nil when the directory holds no reports. Unparseable files are
// skipped.
func LoadLatestReport(dir string) (*RunReport, error) {
	files, err := filepath.Glob(filepath.Join(dir, reportPattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list report files: %w", err)
	}

	var latest *RunReport
	for _, file := range files {
		report, readErr := readReport(file)
		if readErr != nil {
			continue
		}
		if latest == nil || report.Results.CompletedAt.After(latest.Results.CompletedAt) {
			latest = report
		}
	}

	return latest, nil
}

func readReport(path string) (*RunReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	var report RunReport
	if err := json.NewDecoder(file).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// WriteReportToWriter writes the report as indented JSON.
func WriteReportToWriter(report *RunReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
