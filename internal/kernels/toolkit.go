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

package kernels

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

// Version is a CUDA toolkit release as reported by nvcc.
type Version struct {
	Major int
	Minor int

	// Raw is the release token exactly as nvcc printed it.
	Raw string
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseToolkitVersion extracts the release from `nvcc -V` output.
//
// The release is the token following "release". Major is the part before the
// first dot and minor is the first character after it, so "11.10" reads as
// 11.1.
func ParseToolkitVersion(output string) (Version, error) {
	fields := strings.Fields(output)

	idx := -1
	for i, f := range fields {
		if f == "release" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(fields) {
		return Version{}, fmt.Errorf("%w: no release found in nvcc output", corpuserrors.ErrToolchain)
	}

	raw := strings.TrimSuffix(fields[idx+1], ",")
	parts := strings.Split(raw, ".")
	if len(parts) < 2 || parts[1] == "" {
		return Version{}, fmt.Errorf("%w: malformed toolkit release %q", corpuserrors.ErrToolchain, raw)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("%w: malformed toolkit release %q", corpuserrors.ErrToolchain, raw)
	}
	minor, err := strconv.Atoi(parts[1][:1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: malformed toolkit release %q", corpuserrors.ErrToolchain, raw)
	}

	return Version{Major: major, Minor: minor, Raw: raw}, nil
}

// Command is one external process invocation.
type Command struct {
	Path string
	Args []string

	// Env is added on top of the current process environment for this
	// command only.
	Env []string

	Dir string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner executes external commands. Builds go through a Runner so tests
// can substitute a fake compiler.
type Runner interface {
	// Run executes cmd and returns its combined stdout and stderr.
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd.CombinedOutput()
}

// NVCCPath returns the nvcc location under a CUDA installation.
func NVCCPath(cudaHome string) string {
	return filepath.Join(cudaHome, "bin", "nvcc")
}

// HIPCCPath returns the hipcc location under a ROCm installation.
func HIPCCPath(rocmHome string) string {
	return filepath.Join(rocmHome, "bin", "hipcc")
}

// DetectToolkit runs `nvcc -V` from cudaHome and parses the release.
func DetectToolkit(ctx context.Context, runner Runner, cudaHome string) (Version, error) {
	nvcc := NVCCPath(cudaHome)
	out, err := runner.Run(ctx, Command{Path: nvcc, Args: []string{"-V"}})
	if err != nil {
		return Version{}, fmt.Errorf("%w: failed to run %s -V: %w", corpuserrors.ErrToolchain, nvcc, err)
	}
	return ParseToolkitVersion(string(out))
}
