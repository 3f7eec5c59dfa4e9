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

package manifest

import (
	"time"
)

// CurrentVersion is the current manifest schema version.
// Increment this when making breaking changes to the Manifest structure.
const CurrentVersion = 1

// FileName is the manifest's file name inside a build directory.
const FileName = "manifest.json"

// Manifest records what the last builds in a build directory produced.
type Manifest struct {
	// Version indicates the schema version of this manifest.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the manifest content (excluding this field).
	Checksum string `json:"checksum"`

	// Platform is the backend the artifacts were compiled for ("cuda" or "rocm").
	Platform string `json:"platform"`

	// Toolkit is the toolkit release that produced the artifacts, if known.
	Toolkit string `json:"toolkit,omitempty"`

	// Entries maps kernel module names to their build records.
	Entries map[string]Entry `json:"entries"`
}

// Entry is the build record for one kernel module.
type Entry struct {
	// Artifact is the path of the compiled shared object.
	Artifact string `json:"artifact"`

	// Fingerprint is the SHA256 over compiler identity, flags and source bytes.
	// A changed fingerprint means the artifact is stale.
	Fingerprint string `json:"fingerprint"`

	// Sources lists the inputs the artifact was compiled from.
	Sources []string `json:"sources"`

	// BuiltAt records when the artifact was produced.
	BuiltAt time.Time `json:"built_at"`
}
