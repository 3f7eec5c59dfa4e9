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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrConfiguration indicates the run cannot start: the input directory is
	// missing or holds no candidates, or the configuration is invalid.
	// Maps to exit code 1.
	ErrConfiguration = errors.New("configuration error")

	// ErrFileRead indicates a single input file could not be opened or decoded.
	// The converter recovers from it locally, so it never reaches the CLI.
	ErrFileRead = errors.New("file could not be read")

	// ErrToolchain indicates the native build toolchain failed: the compiler
	// is missing, its version cannot be determined, or a kernel failed to compile.
	// Maps to exit code 2.
	ErrToolchain = errors.New("native toolchain failure")

	// ErrKernelMissing indicates one or more expected kernel modules are not built.
	// Maps to exit code 2.
	ErrKernelMissing = errors.New("kernel module missing")
)

// FileError records why one input file was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is reports FileError as ErrFileRead so callers can match the category
// without caring about the underlying cause.
func (e *FileError) Is(target error) bool {
	return target == ErrFileRead
}
