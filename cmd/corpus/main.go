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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code. All
// output, including the error line, goes to out.
func run(ctx context.Context, args []string, out io.Writer) int {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return mapErrorToExitCode(err)
	}
	return 0
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sirseer-corpus",
		Short: "Prepare text corpora and fused kernels for model training",
		Long: `SirSeer Corpus converts directories of plain text into NDJSON training
corpora, one {"text": ...} record per non-empty line, and builds the fused
GPU kernels the training job depends on.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newKernelsCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, corpuserrors.ErrToolchain) ||
		errors.Is(err, corpuserrors.ErrKernelMissing) {
		return 2 // Kernel build/verification errors
	}

	return 1 // Configuration and general errors
}
