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
	"path/filepath"
	"strings"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

// Platform is the GPU backend kernels are compiled for.
type Platform string

const (
	PlatformCUDA Platform = "cuda"
	PlatformROCm Platform = "rocm"
)

// ParsePlatform accepts "cuda" or "rocm" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformCUDA, PlatformROCm:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown kernel platform %q (want cuda or rocm)", corpuserrors.ErrConfiguration, s)
	}
}

// ArchFlags returns the -gencode pairs for the architectures the toolkit
// release can target beyond the sm_70 baseline.
func ArchFlags(v Version) []string {
	var flags []string
	add := func(sm string) {
		flags = append(flags, "-gencode", fmt.Sprintf("arch=compute_%s,code=sm_%s", sm, sm))
	}

	if v.Major >= 11 {
		add("80")
		if v.Minor >= 1 {
			add("86")
		}
		if v.Minor >= 4 {
			add("87")
		}
		if v.Minor >= 8 {
			add("89")
		}
	}
	if v.Major >= 12 {
		add("90")
	}
	return flags
}

// CompilerFlags returns the device compiler flags for a platform. archFlags
// comes from ArchFlags and is empty on ROCm.
func CompilerFlags(p Platform, archFlags []string) []string {
	var flags []string
	switch p {
	case PlatformROCm:
		flags = []string{
			"-O3",
			"-D__HIP_NO_HALF_OPERATORS__=1",
			"-D__HIP_NO_HALF_CONVERSIONS__=1",
		}
	default:
		flags = []string{
			"-O3",
			"-gencode", "arch=compute_70,code=sm_70",
			"--use_fast_math",
			"-U__CUDA_NO_HALF_OPERATORS__",
			"-U__CUDA_NO_HALF_CONVERSIONS__",
			"--expt-relaxed-constexpr",
			"--expt-extended-lambda",
		}
	}
	return append(flags, archFlags...)
}

// IncludePaths returns the platform's implicit include directories. ROCm
// builds need the kernel source directory itself on the include path.
func IncludePaths(p Platform, sourceDir string) []string {
	if p != PlatformROCm {
		return nil
	}
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		abs = sourceDir
	}
	return []string{abs}
}
