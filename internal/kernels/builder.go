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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/kernels/manifest"
	"github.com/sirseerhq/sirseer-corpus/internal/toolerror"
)

// outputTailLines bounds how much compiler output a CompileError message carries.
const outputTailLines = 20

// Options configures a Builder.
type Options struct {
	Platform  Platform
	SourceDir string

	// BuildDir defaults to <SourceDir>/build.
	BuildDir string

	CUDAHome string
	ROCmHome string

	// ArchList is passed as TORCH_CUDA_ARCH_LIST to every compiler
	// invocation. The empty default keeps the -gencode flags authoritative.
	ArchList string

	// Verbose echoes compiler output to Out.
	Verbose bool

	// Kernels defaults to the set resolved from SourceDir.
	Kernels      []Kernel
	IncludePaths []string

	// Out receives progress lines. Nil discards them.
	Out io.Writer

	// Runner defaults to ExecRunner.
	Runner Runner

	// Inspector classifies failures into hints. Defaults to the compiler
	// error inspector wrapped in an error chain inspector.
	Inspector toolerror.Inspector
}

// Module is a built kernel ready to be loaded.
type Module struct {
	Name string
	Path string
}

// Result is the outcome of building one kernel. Err is nil on success.
type Result struct {
	Kernel string
	Module Module
	Cached bool

	Err  error
	Hint string

	// Output is the compiler's combined output, if it ran.
	Output []byte
}

// OK reports whether the kernel is available.
func (r Result) OK() bool {
	return r.Err == nil
}

// CompileError reports a compiler invocation that failed.
type CompileError struct {
	Kernel string
	Output []byte
	Err    error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compiling %s: %v", e.Kernel, e.Err)
	if tail := outputTail(e.Output, outputTailLines); tail != "" {
		msg += "\n" + tail
	}
	return msg
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsCompilerMissing reports whether the compiler could not be started at all.
func (e *CompileError) IsCompilerMissing() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

// SourceError reports a kernel source that could not be read.
type SourceError struct {
	Kernel string
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading source %s of %s: %v", e.Path, e.Kernel, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsMissingHeader reports whether the source file does not exist.
func (e *SourceError) IsMissingHeader() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// Builder compiles a kernel set. It is not safe for concurrent use.
type Builder struct {
	opts      Options
	out       io.Writer
	runner    Runner
	inspector toolerror.Inspector
}

// NewBuilder validates opts and fills in defaults. When opts.Kernels is empty
// the kernel set is resolved from the source directory.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Platform == "" {
		opts.Platform = PlatformCUDA
	}
	if _, err := ParsePlatform(string(opts.Platform)); err != nil {
		return nil, err
	}
	if opts.SourceDir == "" {
		return nil, fmt.Errorf("%w: kernel source directory is not set", corpuserrors.ErrConfiguration)
	}
	if opts.BuildDir == "" {
		opts.BuildDir = filepath.Join(opts.SourceDir, "build")
	}

	if len(opts.Kernels) == 0 {
		set, err := ResolveKernels(opts.SourceDir)
		if err != nil {
			return nil, err
		}
		opts.Kernels = set.Kernels
		opts.IncludePaths = append(opts.IncludePaths, set.IncludePaths...)
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	inspector := opts.Inspector
	if inspector == nil {
		inspector = toolerror.NewErrorChainInspector(toolerror.NewInspector())
	}

	return &Builder{opts: opts, out: out, runner: runner, inspector: inspector}, nil
}

// BuildDir returns the directory artifacts are written to.
func (b *Builder) BuildDir() string {
	return b.opts.BuildDir
}

// Kernels returns the kernels this builder compiles.
func (b *Builder) Kernels() []Kernel {
	return b.opts.Kernels
}

// toolchain is everything about the compiler that affects its output.
type toolchain struct {
	compiler string
	toolkit  string
	flags    []string
	includes []string
}

// Build compiles every kernel and returns one Result per kernel in order.
//
// Failing to create the build directory or to detect the CUDA toolkit is
// returned as an error wrapping ErrToolchain. Per-kernel failures are
// reported in the results only. Cancellation stops the build between kernels.
func (b *Builder) Build(ctx context.Context) ([]Result, error) {
	buildDir := b.opts.BuildDir
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creation of the build directory %s failed: %w", corpuserrors.ErrToolchain, buildDir, err)
	}

	fmt.Fprintf(b.out, "Source path: %s\n", b.opts.SourceDir)
	fmt.Fprintf(b.out, "Build path: %s\n", buildDir)

	tc, err := b.detect(ctx)
	if err != nil {
		return nil, err
	}

	manifestPath := manifest.Path(buildDir)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(b.out, "Ignoring build manifest: %v\n", err)
		}
		m = manifest.New(string(b.opts.Platform), tc.toolkit)
	}
	m.Platform = string(b.opts.Platform)
	m.Toolkit = tc.toolkit

	results := make([]Result, 0, len(b.opts.Kernels))
	for _, k := range b.opts.Kernels {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("build interrupted: %w", err)
		}

		res := b.buildKernel(ctx, tc, m, k)
		changed := res.OK() && !res.Cached
		if !res.OK() {
			// A stale artifact must not satisfy Verify after a failed rebuild.
			changed = m.Delete(k.Name)
			fmt.Fprintf(b.out, "Compilation of %s failed\n", k.Name)
		}
		if changed {
			if err := m.Save(manifestPath); err != nil {
				fmt.Fprintf(b.out, "Warning: failed to update build manifest: %v\n", err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

func (b *Builder) detect(ctx context.Context) (toolchain, error) {
	tc := toolchain{
		includes: append(IncludePaths(b.opts.Platform, b.opts.SourceDir), b.opts.IncludePaths...),
	}

	if b.opts.Platform == PlatformROCm {
		tc.compiler = HIPCCPath(b.opts.ROCmHome)
		tc.flags = CompilerFlags(PlatformROCm, nil)
		return tc, nil
	}

	fmt.Fprintln(b.out, "Getting CUDA version...")
	v, err := DetectToolkit(ctx, b.runner, b.opts.CUDAHome)
	if err != nil {
		return tc, err
	}
	fmt.Fprintf(b.out, "CUDA version: %s\n", v)

	tc.compiler = NVCCPath(b.opts.CUDAHome)
	tc.toolkit = v.Raw
	tc.flags = CompilerFlags(PlatformCUDA, ArchFlags(v))
	return tc, nil
}

func (b *Builder) buildKernel(ctx context.Context, tc toolchain, m *manifest.Manifest, k Kernel) Result {
	artifact := filepath.Join(b.opts.BuildDir, k.Name+".so")

	fp, err := b.fingerprint(tc, k)
	if err != nil {
		return b.failed(k, err, nil)
	}

	if e, ok := m.Lookup(k.Name); ok && e.Fingerprint == fp && e.Artifact == artifact && fileExists(artifact) {
		fmt.Fprintf(b.out, "Using cached %s\n", k.Name)
		return Result{Kernel: k.Name, Module: Module{Name: k.Name, Path: artifact}, Cached: true}
	}

	fmt.Fprintf(b.out, "Compiling %s\n", k.Name)
	cmd := Command{
		Path: tc.compiler,
		Args: compileArgs(b.opts.Platform, tc, k.Sources, artifact),
		Env:  []string{"TORCH_CUDA_ARCH_LIST=" + b.opts.ArchList},
		Dir:  b.opts.BuildDir,
	}
	if b.opts.Verbose {
		fmt.Fprintln(b.out, cmd)
	}

	out, err := b.runner.Run(ctx, cmd)
	if b.opts.Verbose && len(out) > 0 {
		_, _ = b.out.Write(out)
	}
	if err != nil {
		return b.failed(k, &CompileError{Kernel: k.Name, Output: out, Err: err}, out)
	}
	if !fileExists(artifact) {
		err := errors.New("compiler exited cleanly but produced no artifact")
		return b.failed(k, &CompileError{Kernel: k.Name, Output: out, Err: err}, out)
	}

	m.Put(k.Name, manifest.Entry{
		Artifact:    artifact,
		Fingerprint: fp,
		Sources:     k.Sources,
		BuiltAt:     time.Now().UTC(),
	})

	return Result{Kernel: k.Name, Module: Module{Name: k.Name, Path: artifact}, Output: out}
}

func (b *Builder) failed(k Kernel, err error, out []byte) Result {
	return Result{
		Kernel: k.Name,
		Err:    err,
		Hint:   toolerror.Hint(b.inspector, err),
		Output: out,
	}
}

// fingerprint hashes everything that determines an artifact: the platform,
// the compiler and its release, flags, include paths, the arch list and the
// bytes of every source.
func (b *Builder) fingerprint(tc toolchain, k Kernel) (string, error) {
	h := sha256.New()
	field := func(s string) {
		_, _ = io.WriteString(h, s)
		_, _ = h.Write([]byte{0})
	}

	field(string(b.opts.Platform))
	field(tc.compiler)
	field(tc.toolkit)
	field(strings.Join(tc.flags, " "))
	field(strings.Join(tc.includes, string(filepath.ListSeparator)))
	field(b.opts.ArchList)

	for _, src := range k.Sources {
		data, err := os.ReadFile(src)
		if err != nil {
			return "", &SourceError{Kernel: k.Name, Path: src, Err: err}
		}
		field(src)
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func compileArgs(p Platform, tc toolchain, sources []string, artifact string) []string {
	var args []string
	if p == PlatformROCm {
		args = []string{"-shared", "-fPIC"}
	} else {
		args = []string{"-shared", "-Xcompiler", "-fPIC", "-Xcompiler", "-O3"}
	}
	args = append(args, tc.flags...)
	for _, inc := range tc.includes {
		args = append(args, "-I"+inc)
	}
	args = append(args, sources...)
	return append(args, "-o", artifact)
}

func outputTail(out []byte, n int) string {
	s := strings.TrimRight(string(out), "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
