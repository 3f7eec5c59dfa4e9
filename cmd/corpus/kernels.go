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

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/sirseer-corpus/internal/config"
	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/kernels"
)

// newRunner creates the process runner used for compiler invocations.
// Tests replace it with a fake compiler.
var newRunner = func() kernels.Runner { return kernels.ExecRunner{} }

// kernelFlags holds the flags shared by the kernels subcommands. Only flags
// the user actually set override the loaded configuration.
type kernelFlags struct {
	configPath string
	sourceDir  string
	buildDir   string
	platform   string
	cudaHome   string
	archList   string
}

func (f *kernelFlags) bindCommon(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to config file (default: .sirseer-corpus.yaml or ~/.sirseer/corpus.yaml)")
	fs.StringVar(&f.buildDir, "build-dir", "", "Directory holding compiled kernels (default: <source-dir>/build)")
}

func (f *kernelFlags) bindBuild(fs *pflag.FlagSet) {
	f.bindCommon(fs)
	fs.StringVar(&f.sourceDir, "source-dir", "", "Directory containing the kernel sources")
	fs.StringVar(&f.platform, "platform", "", "Target platform: cuda or rocm")
	fs.StringVar(&f.cudaHome, "cuda-home", "", "CUDA installation directory (overrides CUDA_HOME)")
	fs.StringVar(&f.archList, "arch-list", "", "Value passed to the compiler as TORCH_CUDA_ARCH_LIST")
}

// load reads the configuration and applies the flags that were set.
func (f *kernelFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corpuserrors.ErrConfiguration, err)
	}

	if fs.Changed("source-dir") {
		cfg.Kernels.SourceDir = f.sourceDir
	}
	if fs.Changed("build-dir") {
		cfg.Kernels.BuildDir = f.buildDir
	}
	if fs.Changed("platform") {
		cfg.Kernels.Platform = strings.ToLower(strings.TrimSpace(f.platform))
	}
	if fs.Changed("cuda-home") {
		cfg.Kernels.CUDAHome = f.cudaHome
	}
	if fs.Changed("arch-list") {
		cfg.Kernels.ArchList = f.archList
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", corpuserrors.ErrConfiguration, err)
	}
	return cfg, nil
}

func newKernelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kernels",
		Short: "Build and verify the fused GPU kernels",
	}

	cmd.AddCommand(newKernelsBuildCommand())
	cmd.AddCommand(newKernelsVerifyCommand())

	return cmd
}

func newKernelsBuildCommand() *cobra.Command {
	var flags kernelFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the fused kernels into loadable modules",
		Long: `Compile the fused softmax and rotary embedding kernels.

Each kernel is compiled into <build-dir>/<name>.so. Kernels whose sources,
flags and toolkit are unchanged since the last build are reused. A
kernels.jsonc file in the source directory replaces the default kernel list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runKernelsBuild(cmd.Context(), cmd.OutOrStdout(), cfg.Kernels)
		},
	}
	flags.bindBuild(cmd.Flags())

	return cmd
}

func newKernelsVerifyCommand() *cobra.Command {
	var flags kernelFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every fused kernel has been built",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runKernelsVerify(cmd.OutOrStdout(), cfg.Kernels)
		},
	}
	flags.bindCommon(cmd.Flags())

	return cmd
}

// runKernelsBuild executes the kernels build command
func runKernelsBuild(ctx context.Context, out io.Writer, kc config.KernelsConfig) error {
	platform, err := kernels.ParsePlatform(kc.Platform)
	if err != nil {
		return err
	}
	if kc.SourceDir == "" {
		return fmt.Errorf("%w: kernel source directory is not set (use --source-dir or kernels.source_dir)",
			corpuserrors.ErrConfiguration)
	}

	builder, err := kernels.NewBuilder(kernels.Options{
		Platform:  platform,
		SourceDir: kc.SourceDir,
		BuildDir:  kc.EffectiveBuildDir(),
		CUDAHome:  kc.CUDAHome,
		ROCmHome:  kc.ROCmHome,
		ArchList:  kc.ArchList,
		Verbose:   kc.Verbose,
		Out:       out,
		Runner:    newRunner(),
	})
	if err != nil {
		return err
	}

	results, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nKernel build summary:")
	failed := 0
	for _, r := range results {
		switch {
		case !r.OK():
			failed++
			fmt.Fprintf(out, "- %s: FAILED: %s\n", r.Kernel, firstLine(r.Err.Error()))
			if r.Hint != "" {
				fmt.Fprintf(out, "  hint: %s\n", r.Hint)
			}
		case r.Cached:
			fmt.Fprintf(out, "- %s: cached (%s)\n", r.Kernel, r.Module.Path)
		default:
			fmt.Fprintf(out, "- %s: built (%s)\n", r.Kernel, r.Module.Path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d kernels failed to build", corpuserrors.ErrToolchain, failed, len(results))
	}
	return nil
}

// runKernelsVerify executes the kernels verify command
func runKernelsVerify(out io.Writer, kc config.KernelsConfig) error {
	if kc.SourceDir == "" && kc.BuildDir == "" {
		return fmt.Errorf("%w: build directory is not set (use --build-dir or kernels.build_dir)",
			corpuserrors.ErrConfiguration)
	}

	names := kernels.ExpectedModules(kernels.DefaultKernels(kc.SourceDir))
	if kc.SourceDir != "" {
		set, err := kernels.ResolveKernels(kc.SourceDir)
		if err != nil {
			return err
		}
		names = kernels.ExpectedModules(set.Kernels)
	}

	modules, err := kernels.Verify(kc.EffectiveBuildDir(), names)
	for _, m := range modules {
		fmt.Fprintf(out, "- %s: %s\n", m.Name, m.Path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "All %d fused kernels are built\n", len(modules))
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
