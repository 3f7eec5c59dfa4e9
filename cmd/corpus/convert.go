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

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-corpus/internal/config"
	"github.com/sirseerhq/sirseer-corpus/internal/convert"
	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/metadata"
)

func newConvertCommand() *cobra.Command {
	var (
		inputDir   string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a directory of text files into an NDJSON corpus",
		Long: `Convert every file under a directory into an NDJSON corpus.

Each non-empty line, with surrounding whitespace removed, becomes one
{"text": ...} record. Files that cannot be read as UTF-8 text are reported
and skipped. Progress, the preview count and the optional run report are
configured through .sirseer-corpus.yaml or SIRSEER_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd.OutOrStdout(), inputDir, outputFile)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory containing the text files to convert")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Path of the NDJSON file to write")
	_ = cmd.MarkFlagRequired("input-dir")
	_ = cmd.MarkFlagRequired("output-file")

	return cmd
}

// runConvert executes the convert command
func runConvert(ctx context.Context, out io.Writer, inputDir, outputFile string) error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("%w: %v", corpuserrors.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", corpuserrors.ErrConfiguration, err)
	}

	conv := convert.New(convert.Options{
		InputDir:         inputDir,
		OutputFile:       outputFile,
		ProgressInterval: cfg.Convert.ProgressInterval,
		PreviewCount:     cfg.Convert.PreviewCount,
		Out:              out,
	})

	result, err := conv.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Convert.ReportDir != "" {
		path, err := metadata.SaveReport(result.Report(version), cfg.Convert.ReportDir)
		if err != nil {
			fmt.Fprintf(out, "Warning: failed to save run report: %v\n", err)
		} else {
			fmt.Fprintf(out, "Run report saved to: %s\n", path)
		}
	}

	return nil
}
