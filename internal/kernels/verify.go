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
	"fmt"
	"strings"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/kernels/manifest"
)

// Verify checks that every named module was built into buildDir. It returns
// the modules found, and an error wrapping ErrKernelMissing that lists the
// missing ones if any are absent.
func Verify(buildDir string, names []string) ([]Module, error) {
	m, err := manifest.Load(manifest.Path(buildDir))
	if err != nil {
		return nil, fmt.Errorf("%w: fused kernels are not built in %s (%v); run 'sirseer-corpus kernels build'",
			corpuserrors.ErrKernelMissing, buildDir, err)
	}

	var (
		found   []Module
		missing []string
	)
	for _, name := range names {
		e, ok := m.Lookup(name)
		if !ok || !fileExists(e.Artifact) {
			missing = append(missing, name)
			continue
		}
		found = append(found, Module{Name: name, Path: e.Artifact})
	}

	if len(missing) > 0 {
		return found, fmt.Errorf("%w: %s; run 'sirseer-corpus kernels build'",
			corpuserrors.ErrKernelMissing, strings.Join(missing, ", "))
	}
	return found, nil
}
