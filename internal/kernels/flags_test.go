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
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
)

func TestArchFlags(t *testing.T) {
	gencode := func(sms ...string) []string {
		var flags []string
		for _, sm := range sms {
			flags = append(flags, "-gencode", "arch=compute_"+sm+",code=sm_"+sm)
		}
		return flags
	}

	tests := []struct {
		version Version
		want    []string
	}{
		{Version{Major: 10, Minor: 2}, nil},
		{Version{Major: 11, Minor: 0}, gencode("80")},
		{Version{Major: 11, Minor: 1}, gencode("80", "86")},
		{Version{Major: 11, Minor: 4}, gencode("80", "86", "87")},
		{Version{Major: 11, Minor: 8}, gencode("80", "86", "87", "89")},
		{Version{Major: 12, Minor: 0}, gencode("80", "90")},
		{Version{Major: 12, Minor: 4}, gencode("80", "86", "87", "90")},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ArchFlags(tt.version)); diff != "" {
				t.Errorf("ArchFlags(%v) mismatch (-want +got):\n%s", tt.version, diff)
			}
		})
	}
}

func TestCompilerFlags(t *testing.T) {
	arch := []string{"-gencode", "arch=compute_80,code=sm_80"}

	tests := []struct {
		name     string
		platform Platform
		arch     []string
		want     []string
	}{
		{
			name:     "cuda",
			platform: PlatformCUDA,
			arch:     arch,
			want: []string{
				"-O3", "-gencode", "arch=compute_70,code=sm_70", "--use_fast_math",
				"-U__CUDA_NO_HALF_OPERATORS__", "-U__CUDA_NO_HALF_CONVERSIONS__",
				"--expt-relaxed-constexpr", "--expt-extended-lambda",
				"-gencode", "arch=compute_80,code=sm_80",
			},
		},
		{
			name:     "rocm",
			platform: PlatformROCm,
			want: []string{
				"-O3", "-D__HIP_NO_HALF_OPERATORS__=1", "-D__HIP_NO_HALF_CONVERSIONS__=1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, CompilerFlags(tt.platform, tt.arch)); diff != "" {
				t.Errorf("CompilerFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIncludePaths(t *testing.T) {
	if got := IncludePaths(PlatformCUDA, "src"); got != nil {
		t.Errorf("IncludePaths(cuda) = %v, want none", got)
	}

	got := IncludePaths(PlatformROCm, "src")
	if len(got) != 1 || !filepath.IsAbs(got[0]) || filepath.Base(got[0]) != "src" {
		t.Errorf("IncludePaths(rocm) = %v, want the absolute source dir", got)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"cuda", PlatformCUDA, false},
		{"ROCm", PlatformROCm, false},
		{" cuda ", PlatformCUDA, false},
		{"metal", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				if !errors.Is(err, corpuserrors.ErrConfiguration) {
					t.Errorf("ParsePlatform(%q) error = %v, want ErrConfiguration", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePlatform(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}
