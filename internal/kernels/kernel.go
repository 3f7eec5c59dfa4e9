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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

// KernelSetFile is the optional file in a source directory that replaces the
// default kernel list.
const KernelSetFile = "kernels.jsonc"

// Kernel is one loadable module and the sources it is compiled from.
type Kernel struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

// KernelSet is the list of kernels to build plus any extra include paths.
type KernelSet struct {
	Kernels      []Kernel `json:"kernels"`
	IncludePaths []string `json:"include_paths"`
}

// DefaultKernels returns the fused softmax and rotary embedding kernels.
func DefaultKernels(sourceDir string) []Kernel {
	src := func(name string) string { return filepath.Join(sourceDir, name) }
	return []Kernel{
		{
			Name:    "scaled_upper_triang_masked_softmax_cuda",
			Sources: []string{src("scaled_upper_triang_masked_softmax.cpp"), src("scaled_upper_triang_masked_softmax_cuda.cu")},
		},
		{
			Name:    "scaled_masked_softmax_cuda",
			Sources: []string{src("scaled_masked_softmax.cpp"), src("scaled_masked_softmax_cuda.cu")},
		},
		{
			Name:    "fused_rotary_positional_embedding",
			Sources: []string{src("fused_rotary_positional_embedding.cpp"), src("fused_rotary_positional_embedding_cuda.cu")},
		},
	}
}

// LoadKernelSet reads a JSONC kernel set. Comments and trailing commas are
// allowed. Relative sources and include paths resolve against the file's
// directory.
func LoadKernelSet(path string) (*KernelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel set %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid kernel set %s: %v", corpuserrors.ErrConfiguration, path, err)
	}

	var set KernelSet
	if err := json.Unmarshal(std, &set); err != nil {
		return nil, fmt.Errorf("%w: invalid kernel set %s: %v", corpuserrors.ErrConfiguration, path, err)
	}

	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid kernel set %s: %v", corpuserrors.ErrConfiguration, path, err)
	}

	base := filepath.Dir(path)
	for i := range set.Kernels {
		for j, s := range set.Kernels[i].Sources {
			set.Kernels[i].Sources[j] = resolve(base, s)
		}
	}
	for i, p := range set.IncludePaths {
		set.IncludePaths[i] = resolve(base, p)
	}

	return &set, nil
}

// ResolveKernels returns the kernel set for a source directory: the
// contents of its kernels.jsonc when present, the defaults otherwise.
func ResolveKernels(sourceDir string) (*KernelSet, error) {
	set, err := LoadKernelSet(filepath.Join(sourceDir, KernelSetFile))
	if err == nil {
		return set, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &KernelSet{Kernels: DefaultKernels(sourceDir)}, nil
	}
	return nil, err
}

// ExpectedModules returns the module names a kernel list produces.
func ExpectedModules(kernels []Kernel) []string {
	names := make([]string, len(kernels))
	for i, k := range kernels {
		names[i] = k.Name
	}
	return names
}

func (s *KernelSet) validate() error {
	if len(s.Kernels) == 0 {
		return errors.New("no kernels listed")
	}

	seen := make(map[string]bool, len(s.Kernels))
	for i, k := range s.Kernels {
		switch {
		case k.Name == "":
			return fmt.Errorf("kernel %d has no name", i)
		case strings.ContainsAny(k.Name, `/\`) || k.Name == "." || k.Name == "..":
			return fmt.Errorf("kernel name %q is not a plain file name", k.Name)
		case seen[k.Name]:
			return fmt.Errorf("kernel %q listed twice", k.Name)
		case len(k.Sources) == 0:
			return fmt.Errorf("kernel %q has no sources", k.Name)
		}
		seen[k.Name] = true
	}
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
