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

// Package config types define the configuration structures used throughout
// sirseer-corpus. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

// Supported kernel build platforms.
const (
	PlatformCUDA = "cuda"
	PlatformROCm = "rocm"
)

// Config represents the complete configuration for sirseer-corpus.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Kernels KernelsConfig `yaml:"kernels"`
}

// ConvertConfig controls the reporting side of corpus conversion. The input
// directory and output file are never configured here; they are always
// given on the command line.
type ConvertConfig struct {
	// ProgressInterval prints a progress line after every N processed files.
	ProgressInterval int `yaml:"progress_interval"`

	// PreviewCount is how many output records are echoed after the run.
	PreviewCount int `yaml:"preview_count"`

	// ReportDir, when set, receives a JSON report for every run.
	ReportDir string `yaml:"report_dir"`
}

// KernelsConfig describes how the fused kernels are compiled.
type KernelsConfig struct {
	Platform  string `yaml:"platform"`
	SourceDir string `yaml:"source_dir"`

	// BuildDir defaults to <source_dir>/build when empty.
	BuildDir string `yaml:"build_dir"`

	CUDAHome string `yaml:"cuda_home"`
	ROCmHome string `yaml:"rocm_home"`

	// ArchList is handed to each compiler invocation as TORCH_CUDA_ARCH_LIST.
	// It never touches the environment of this process.
	ArchList string `yaml:"arch_list"`

	// Verbose streams compiler output while building.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases.
func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			ProgressInterval: 10,
			PreviewCount:     3,
		},
		Kernels: KernelsConfig{
			Platform: PlatformCUDA,
			CUDAHome: "/usr/local/cuda",
			ROCmHome: "/opt/rocm",
			Verbose:  true,
		},
	}
}
