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

// Package manifest persists the kernel build cache.
//
// A manifest lives in the build directory and records, per kernel, the
// artifact that was produced and the fingerprint of the inputs it was built
// from. The builder consults it to skip recompiling unchanged kernels and
// the verifier consults it to confirm every expected module was built.
//
// Manifests carry a schema version and a SHA256 checksum over their content,
// and every write is atomic so a crash mid-build never leaves a half-written
// file behind.
//
// Example usage:
//
//	m, err := manifest.Load(manifest.Path(buildDir))
//	if err != nil {
//	    m = manifest.New("cuda", "12.4")
//	}
//	m.Put("scaled_masked_softmax_cuda", manifest.Entry{Artifact: so, Fingerprint: fp})
//	err = m.Save(manifest.Path(buildDir))
package manifest
