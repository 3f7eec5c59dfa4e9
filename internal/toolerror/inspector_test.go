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
	"fmt"
	"strings"
	"testing"
)

func TestCompilerErrorInspector(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name   string
		err    error
		method string
		want   bool
	}{
		{
			name:   "exec not found in path",
			err:    errors.New(`exec: "nvcc": executable file not found in $PATH`),
			method: "missing",
			want:   true,
		},
		{
			name:   "absolute compiler path missing",
			err:    errors.New("fork/exec /usr/local/cuda/bin/nvcc: no such file or directory"),
			method: "missing",
			want:   true,
		},
		{
			name:   "wrapped missing compiler",
			err:    fmt.Errorf("detect toolkit: %w", errors.New("fork/exec /opt/rocm/bin/hipcc: no such file or directory")),
			method: "missing",
			want:   true,
		},
		{
			name:   "missing header is not a missing compiler",
			err:    errors.New("softmax.h: No such file or directory"),
			method: "missing",
			want:   false,
		},
		{
			name:   "nvcc unsupported architecture",
			err:    errors.New("nvcc fatal   : Unsupported gpu architecture 'compute_90'"),
			method: "arch",
			want:   true,
		},
		{
			name:   "nvcc invalid sm value",
			err:    errors.New("nvcc fatal   : Value 'sm_89' is not defined for option 'gpu-architecture'"),
			method: "arch",
			want:   true,
		},
		{
			name:   "gcc missing header",
			err:    errors.New("scaled_masked_softmax.cpp:19:10: fatal error: cuda_fp16.h: No such file or directory"),
			method: "header",
			want:   true,
		},
		{
			name:   "nvcc cannot open source",
			err:    errors.New(`catastrophic error: cannot open source file "type_shim.h"`),
			method: "header",
			want:   true,
		},
		{
			name:   "killed compiler",
			err:    errors.New("signal: killed"),
			method: "oom",
			want:   true,
		},
		{
			name:   "cc1plus out of memory",
			err:    errors.New("cc1plus: out of memory allocating 65536 bytes"),
			method: "oom",
			want:   true,
		},
		{
			name:   "unrelated error",
			err:    errors.New("exit status 1"),
			method: "oom",
			want:   false,
		},
		{
			name:   "nil error",
			err:    nil,
			method: "missing",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := check(inspector, tt.method, tt.err); got != tt.want {
				t.Errorf("%s(%v) = %v, want %v", tt.method, tt.err, got, tt.want)
			}
		})
	}
}

func check(i Inspector, method string, err error) bool {
	switch method {
	case "missing":
		return i.IsCompilerMissing(err)
	case "arch":
		return i.IsUnsupportedArch(err)
	case "header":
		return i.IsMissingHeader(err)
	case "oom":
		return i.IsOutOfMemory(err)
	}
	panic("unknown method " + method)
}

type missingCompilerError struct{}

func (missingCompilerError) Error() string           { return "toolchain unavailable" }
func (missingCompilerError) IsCompilerMissing() bool { return true }

type oomError struct{}

func (oomError) Error() string       { return "build aborted" }
func (oomError) IsOutOfMemory() bool { return true }

func TestErrorChainInspector(t *testing.T) {
	chainInspector := NewErrorChainInspector(NewInspector())

	tests := []struct {
		name   string
		err    error
		method string
		want   bool
	}{
		{
			name:   "typed missing compiler",
			err:    missingCompilerError{},
			method: "missing",
			want:   true,
		},
		{
			name:   "wrapped typed missing compiler",
			err:    fmt.Errorf("build failed: %w", missingCompilerError{}),
			method: "missing",
			want:   true,
		},
		{
			name:   "typed out of memory",
			err:    oomError{},
			method: "oom",
			want:   true,
		},
		{
			name:   "falls back to string checking",
			err:    errors.New("Unsupported gpu architecture 'compute_90'"),
			method: "arch",
			want:   true,
		},
		{
			name:   "no match in chain or string",
			err:    errors.New("exit status 2"),
			method: "header",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := check(chainInspector, tt.method, tt.err); got != tt.want {
				t.Errorf("ErrorChainInspector %s() = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name     string
		err      error
		wantPart string
	}{
		{"missing compiler", errors.New("executable file not found"), "compiler not found"},
		{"unsupported arch", errors.New("Unsupported gpu architecture 'compute_90'"), "arch_list"},
		{"missing header", errors.New("fatal error: x.h: No such file or directory"), "header"},
		{"oom", errors.New("signal: killed"), "out of memory"},
		{"unknown", errors.New("exit status 1"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hint(inspector, tt.err)
			if tt.wantPart == "" {
				if got != "" {
					t.Errorf("Hint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantPart) {
				t.Errorf("Hint() = %q, want it to mention %q", got, tt.wantPart)
			}
		})
	}
}
