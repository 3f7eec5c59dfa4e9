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

package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

// Discover walks root recursively and returns every entry below it, in
// lexical order per directory. The root itself is not included.
//
// It fails with ErrConfiguration when root does not exist, is not a
// directory, or contains no entries. Subdirectories that cannot be listed are
// still returned as candidates; their contents are simply not visited.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: input directory does not exist: %s", corpuserrors.ErrConfiguration, root)
		}
		return nil, fmt.Errorf("%w: cannot access input directory %s: %v", corpuserrors.ErrConfiguration, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path is not a directory: %s", corpuserrors.ErrConfiguration, root)
	}

	var candidates []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subdirectory: already recorded on the first visit.
			return nil
		}
		if path == root {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: failed to walk %s: %v", corpuserrors.ErrConfiguration, root, walkErr)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no files found in %s", corpuserrors.ErrConfiguration, root)
	}

	return candidates, nil
}
