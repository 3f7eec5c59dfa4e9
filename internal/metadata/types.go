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

package metadata

import (
	"time"
)

// RunReport is the persisted record of one conversion run.
type RunReport struct {
	// ToolVersion is the version of the binary that produced the run.
	ToolVersion string `json:"tool_version"`

	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	Parameters RunParams  `json:"parameters"`
	Results    RunResults `json:"results"`

	// Failures lists every candidate that was skipped, in walk order.
	Failures []FileFailure `json:"failures,omitempty"`
}

// RunParams captures the inputs of a conversion run.
type RunParams struct {
	InputDir   string `json:"input_dir"`
	OutputFile string `json:"output_file"`
}

// RunResults captures the outcome of a conversion run.
type RunResults struct {
	FilesAttempted int       `json:"files_attempted"`
	FilesProcessed int       `json:"files_processed"`
	FilesFailed    int       `json:"files_failed"`
	LinesWritten   int       `json:"lines_written"`
	Duration       string    `json:"duration"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// FileFailure names a skipped candidate and why it was skipped.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Stats is a point-in-time copy of the run counters.
type Stats struct {
	FilesAttempted int
	FilesProcessed int
	FilesFailed    int
	LinesWritten   int
}
