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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-corpus/internal/config"
	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/metadata"
)

func newReportCommand() *cobra.Command {
	var reportDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the most recent conversion run report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), reportDir)
		},
	}

	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory holding run reports (default: convert.report_dir)")

	return cmd
}

// runReport executes the report command
func runReport(out io.Writer, reportDir string) error {
	if reportDir == "" {
		cfg, err := config.LoadConfig("")
		if err != nil {
			return fmt.Errorf("%w: %v", corpuserrors.ErrConfiguration, err)
		}
		reportDir = cfg.Convert.ReportDir
	}
	if reportDir == "" {
		return fmt.Errorf("%w: report directory is not set (use --report-dir or convert.report_dir)",
			corpuserrors.ErrConfiguration)
	}

	report, err := metadata.LoadLatestReport(reportDir)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("no run reports found in %s", reportDir)
	}
	return metadata.WriteReportToWriter(report, out)
}
