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

package toolerror

import (
	"errors"
	"strings"
)

// Inspector provides methods to classify compiler and toolkit errors.
// This abstraction keeps string matching on compiler output in one place.
type Inspector interface {
	// IsCompilerMissing returns true if the compiler binary could not be started.
	IsCompilerMissing(err error) bool

	// IsUnsupportedArch returns true if the toolkit rejected a target architecture.
	IsUnsupportedArch(err error) bool

	// IsMissingHeader returns true if a header or source could not be found.
	IsMissingHeader(err error) bool

	// IsOutOfMemory returns true if the compiler ran out of memory or was killed.
	IsOutOfMemory(err error) bool
}

// CompilerErrorInspector implements Inspector by matching the messages
// emitted by nvcc, hipcc and the host C++ compiler.
type CompilerErrorInspector struct{}

// NewInspector creates a new compiler error inspector.
func NewInspector() Inspector {
	return &CompilerErrorInspector{}
}

func (i *CompilerErrorInspector) IsCompilerMissing(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "executable file not found") ||
		(strings.Contains(errStr, "fork/exec") && strings.Contains(errStr, "no such file or directory")) ||
		strings.Contains(errStr, "command not found")
}

func (i *CompilerErrorInspector) IsUnsupportedArch(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unsupported gpu architecture") ||
		strings.Contains(errStr, "value 'sm_") ||
		strings.Contains(errStr, "invalid value for --gpu-architecture") ||
		strings.Contains(errStr, "unknown target cpu")
}

func (i *CompilerErrorInspector) IsMissingHeader(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return (strings.Contains(errStr, "fatal error") && strings.Contains(errStr, "no such file or directory")) ||
		strings.Contains(errStr, "cannot open source file") ||
		strings.Contains(errStr, "file not found")
}

func (i *CompilerErrorInspector) IsOutOfMemory(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "out of memory") ||
		strings.Contains(errStr, "cannot allocate memory") ||
		strings.Contains(errStr, "signal: killed")
}

// ErrorChainInspector wraps another inspector and adds support for checking
// typed errors in the error chain before falling back to string matching.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates an inspector that checks typed errors first.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

func (e *ErrorChainInspector) IsCompilerMissing(err error) bool {
	var missingErr interface{ IsCompilerMissing() bool }
	if errors.As(err, &missingErr) && missingErr.IsCompilerMissing() {
		return true
	}
	return e.base.IsCompilerMissing(err)
}

func (e *ErrorChainInspector) IsUnsupportedArch(err error) bool {
	var archErr interface{ IsUnsupportedArch() bool }
	if errors.As(err, &archErr) && archErr.IsUnsupportedArch() {
		return true
	}
	return e.base.IsUnsupportedArch(err)
}

func (e *ErrorChainInspector) IsMissingHeader(err error) bool {
	var headerErr interface{ IsMissingHeader() bool }
	if errors.As(err, &headerErr) && headerErr.IsMissingHeader() {
		return true
	}
	return e.base.IsMissingHeader(err)
}

func (e *ErrorChainInspector) IsOutOfMemory(err error) bool {
	var oomErr interface{ IsOutOfMemory() bool }
	if errors.As(err, &oomErr) && oomErr.IsOutOfMemory() {
		return true
	}
	return e.base.IsOutOfMemory(err)
}

// Hint returns a one-line suggestion for a classified error, or "" when the
// error matches no known category.
func Hint(i Inspector, err error) string {
	switch {
	case i.IsCompilerMissing(err):
		return "compiler not found; check cuda_home/rocm_home or the CUDA_HOME/ROCM_HOME environment variables"
	case i.IsUnsupportedArch(err):
		return "the installed toolkit does not support a requested GPU architecture; upgrade the toolkit or set arch_list"
	case i.IsMissingHeader(err):
		return "a header or source file is missing; check source_dir and include paths"
	case i.IsOutOfMemory(err):
		return "the compiler ran out of memory; build kernels one at a time or on a larger machine"
	default:
		return ""
	}
}
