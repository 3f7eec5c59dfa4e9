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

// Package testutil holds helpers shared by package tests: building corpus
// trees and kernel sources on disk and asserting on NDJSON output.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates files under root from a map of slash-separated relative
// paths to contents. Parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// WriteBytes writes raw bytes to a file, for content that is not valid text.
func WriteBytes(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// CorpusDir returns a fresh temp directory populated with files.
func CorpusDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	WriteTree(t, dir, files)
	return dir
}

// KernelSourceDir returns a temp directory holding placeholder sources for
// the default fused kernels, ready for a kernel build.
func KernelSourceDir(t *testing.T) string {
	t.Helper()

	files := make(map[string]string)
	for _, base := range []string{
		"scaled_upper_triang_masked_softmax",
		"scaled_masked_softmax",
		"fused_rotary_positional_embedding",
	} {
		files[base+".cpp"] = "// host binding for " + base + "\n"
		files[base+"_cuda.cu"] = "// device code for " + base + "\n"
	}
	return CorpusDir(t, files)
}

// NVCCVersionOutput returns `nvcc -V` output for the given release, such as "12.4".
func NVCCVersionOutput(release string) string {
	return "nvcc: NVIDIA (R) Cuda compiler driver\n" +
		"Copyright (c) 2005-2024 NVIDIA Corporation\n" +
		"Built on Tue_Feb_27_16:19:38_PST_2024\n" +
		"Cuda compilation tools, release " + release + ", V" + release + ".99\n" +
		"Build cuda_" + release + ".r" + release + "/compiler.33961263_0\n"
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected file to not exist: %s", path)
	}
}

func AssertFileContains(t *testing.T, path, expected string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	if string(content) != expected {
		t.Errorf("File content mismatch\nGot:\n%s\nWant:\n%s", content, expected)
	}
}
