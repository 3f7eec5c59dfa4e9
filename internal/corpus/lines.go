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

package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

// LineReader yields the trimmed, non-empty lines of one text file.
//
// Usage mirrors bufio.Scanner:
//
//	r, err := corpus.OpenLines(path)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for r.Next() {
//	    fmt.Println(r.Text())
//	}
//	if err := r.Err(); err != nil {
//	    return err
//	}
//
// A LineReader is forward-only. To read a file again, open a new one.
type LineReader struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	pending []string
	line    string
	err     error
	done    bool
}

// OpenLines opens path for line reading. All failures are returned as
// *errors.FileError: the path is not a regular file, cannot be opened, or is
// not valid UTF-8 anywhere in its content.
func OpenLines(path string) (*LineReader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &corpuserrors.FileError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &corpuserrors.FileError{Path: path, Err: errors.New("is a directory")}
	}
	// FIFOs and devices would block or never end.
	if !info.Mode().IsRegular() {
		return nil, &corpuserrors.FileError{Path: path, Err: fmt.Errorf("not a regular file (%s)", info.Mode().Type())}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &corpuserrors.FileError{Path: path, Err: err}
	}

	r := &LineReader{
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
	}

	if err := r.validate(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

// validate checks the whole file for UTF-8 validity, then rewinds.
// Line breaks are ASCII, so checking line by line never splits a rune.
func (r *LineReader) validate() error {
	lineNo := 0
	for {
		chunk, err := r.reader.ReadString('\n')
		if chunk != "" {
			lineNo++
			if !utf8.ValidString(chunk) {
				return &corpuserrors.FileError{Path: r.path, Err: fmt.Errorf("invalid UTF-8 on line %d", lineNo)}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return &corpuserrors.FileError{Path: r.path, Err: err}
		}
	}

	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return &corpuserrors.FileError{Path: r.path, Err: fmt.Errorf("rewind failed: %w", err)}
	}
	r.reader.Reset(r.file)
	return nil
}

// Next advances to the next non-empty line. It returns false at end of file
// or on a read error; check Err to tell them apart.
func (r *LineReader) Next() bool {
	for {
		if len(r.pending) > 0 {
			r.line = r.pending[0]
			r.pending = r.pending[1:]
			return true
		}
		if r.done {
			r.line = ""
			return false
		}

		chunk, err := r.reader.ReadString('\n')
		if err != nil {
			r.done = true
			if err != io.EOF {
				r.err = &corpuserrors.FileError{Path: r.path, Err: err}
			}
		}
		r.pending = appendLines(r.pending, chunk)
	}
}

// Text returns the current line.
func (r *LineReader) Text() string {
	return r.line
}

// Err returns the first non-EOF error encountered by Next.
func (r *LineReader) Err() error {
	return r.err
}

// Path returns the file being read.
func (r *LineReader) Path() string {
	return r.path
}

// Close releases the underlying file.
func (r *LineReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// appendLines splits one '\n'-terminated chunk on lone carriage returns too,
// so \n, \r\n and \r all end a line, and keeps the non-blank pieces.
func appendLines(dst []string, chunk string) []string {
	for _, part := range strings.Split(chunk, "\r") {
		if line := strings.TrimSpace(part); line != "" {
			dst = append(dst, line)
		}
	}
	return dst
}
