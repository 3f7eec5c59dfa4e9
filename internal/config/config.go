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

// Package config provides configuration management for sirseer-corpus with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// Command-line flags are applied by the caller after LoadConfig returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-corpus.yaml (current directory)
//   - .sirseer-corpus.yml (current directory)
//   - ~/.sirseer/corpus.yaml
//   - ~/.sirseer/corpus.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides. Path expansion (~ and environment variables) is performed
// on directory paths.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := os.Getenv("HOME")
		defaultPaths := []string{
			".sirseer-corpus.yaml",
			".sirseer-corpus.yml",
			filepath.Join(home, ".sirseer", "corpus.yaml"),
			filepath.Join(home, ".sirseer", "corpus.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Convert.ReportDir = expandPath(cfg.Convert.ReportDir)
	cfg.Kernels.SourceDir = expandPath(cfg.Kernels.SourceDir)
	cfg.Kernels.BuildDir = expandPath(cfg.Kernels.BuildDir)
	cfg.Kernels.CUDAHome = expandPath(cfg.Kernels.CUDAHome)
	cfg.Kernels.ROCmHome = expandPath(cfg.Kernels.ROCmHome)
	cfg.Kernels.Platform = strings.ToLower(strings.TrimSpace(cfg.Kernels.Platform))

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// Conversion
	if interval := os.Getenv("SIRSEER_PROGRESS_INTERVAL"); interval != "" {
		if n, err := parsePositiveInt(interval); err == nil {
			cfg.Convert.ProgressInterval = n
		}
	}
	if count := os.Getenv("SIRSEER_PREVIEW_COUNT"); count != "" {
		if n, err := parseNonNegativeInt(count); err == nil {
			cfg.Convert.PreviewCount = n
		}
	}
	if dir := os.Getenv("SIRSEER_REPORT_DIR"); dir != "" {
		cfg.Convert.ReportDir = dir
	}

	// Toolkit locations use the names the CUDA and ROCm installers export.
	if home := os.Getenv("CUDA_HOME"); home != "" {
		cfg.Kernels.CUDAHome = home
	}
	if home := os.Getenv("ROCM_HOME"); home != "" {
		cfg.Kernels.ROCmHome = home
	}

	// Kernel build
	if platform := os.Getenv("SIRSEER_KERNEL_PLATFORM"); platform != "" {
		cfg.Kernels.Platform = platform
	}
	if dir := os.Getenv("SIRSEER_KERNEL_SOURCE_DIR"); dir != "" {
		cfg.Kernels.SourceDir = dir
	}
	if dir := os.Getenv("SIRSEER_KERNEL_BUILD_DIR"); dir != "" {
		cfg.Kernels.BuildDir = dir
	}
	if verbose := os.Getenv("SIRSEER_KERNEL_VERBOSE"); verbose != "" {
		cfg.Kernels.Verbose = parseBool(verbose)
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	i, err := parseNonNegativeInt(s)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseNonNegativeInt parses a string to an integer >= 0
func parseNonNegativeInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// EffectiveBuildDir returns the configured build directory, falling back to
// <source_dir>/build.
func (c *KernelsConfig) EffectiveBuildDir() string {
	if c.BuildDir != "" {
		return c.BuildDir
	}
	return filepath.Join(c.SourceDir, "build")
}

// Validate checks if the configuration contains valid values. This should be
// called after loading configuration and applying flags to catch invalid
// settings early.
func (c *Config) Validate() error {
	if c.Convert.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be positive, got: %d", c.Convert.ProgressInterval)
	}
	if c.Convert.PreviewCount < 0 {
		return fmt.Errorf("preview count must not be negative, got: %d", c.Convert.PreviewCount)
	}
	switch c.Kernels.Platform {
	case PlatformCUDA, PlatformROCm:
	default:
		return fmt.Errorf("unknown kernel platform %q (want %s or %s)", c.Kernels.Platform, PlatformCUDA, PlatformROCm)
	}
	return nil
}
