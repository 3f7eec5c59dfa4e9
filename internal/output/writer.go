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

package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Record is a single training example. Each record becomes exactly one
// line of the output file.
type Record struct {
	Text string `json:"text"`
}

// RecordWriter defines the interface for writing training records.
// The converter only depends on this, so tests can substitute failing writers.
type RecordWriter interface {
	// Write appends a single record to the output.
	Write(record Record) error

	// Close flushes buffered records and releases the underlying file.
	Close() error
}

// Writer handles streaming NDJSON output to a file or io.Writer.
// Records are buffered and reach the destination on Flush or Close.
type Writer struct {
	mu        sync.Mutex
	buf       *bufio.Writer
	encoder   *json.Encoder
	count     int
	closed    bool
	closeFunc func() error
}

// NewWriter creates a new NDJSON writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)

	return &Writer{
		buf:     buf,
		encoder: encoder,
	}
}

// NewFileWriter creates the file at path, truncating any existing content,
// and returns a writer for it. Missing parent directories are created.
// The caller must call Close() when done to flush and close the file.
func NewFileWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := NewWriter(file)
	w.closeFunc = file.Close
	return w, nil
}

// Write encodes a single record as one line of NDJSON.
func (w *Writer) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("failed to write record: writer is closed")
	}

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Flush pushes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes any buffered records and closes the underlying file, if any.
// Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.buf.Flush()
	if w.closeFunc != nil {
		if err := w.closeFunc(); err != nil && flushErr == nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
	}
	if flushErr != nil {
		return fmt.Errorf("failed to flush output: %w", flushErr)
	}
	return nil
}

// Preview returns up to n lines from the start of an NDJSON file, with the
// trailing newline removed. A file shorter than n lines yields what it has.
func Preview(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	lines := make([]string, 0, n)
	for len(lines) < n {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, trimNewline(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, fmt.Errorf("failed to read output file: %w", err)
		}
	}

	return lines, nil
}

func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}
