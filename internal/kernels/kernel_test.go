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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	corpuserrors "github.com/sirseerhq/sirseer-corpus/internal/errors"
	"github.com/sirseerhq/sirseer-corpus/internal/testutil"
)

func TestDefaultKernels(t *testing.T) {
	got := DefaultKernels("src")
	want := []Kernel{
		{
			Name: "scaled_upper_triang_masked_softmax_cuda",
			Sources: []string{
				filepath.Join("src", "scaled_upper_triang_masked_softmax.cpp"),
				filepath.Join("src", "scaled_upper_triang_masked_softmax_cuda.cu"),
			},
		},
		{
			Name: "scaled_masked_softmax_cuda",
			Sources: []string{
				filepath.Join("src", "scaled_masked_softmax.cpp"),
				filepath.Join("src", "scaled_masked_softmax_cuda.cu"),
			},
		},
		{
			Name: "fused_rotary_positional_embedding",
			Sources: []string{
				filepath.Join("src", "fused_rotary_positional_embedding.cpp"),
				filepath.Join("src", "fused_rotary_positional_embedding_cuda.cu"),
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultKernels() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{
		"scaled_upper_triang_masked_softmax_cuda",
		"scaled_masked_softmax_cuda",
		"fused_rotary_positional_embedding",
	}, ExpectedModules(got)); diff != "" {
		t.Errorf("ExpectedModules() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKernelSet(t *testing.T) {
	dir := testutil.CorpusDir(t, map[string]string{
		KernelSetFile: `{
	// only the masked softmax is needed on this cluster
	"kernels": [
		{"name": "scaled_masked_softmax_cuda", "sources": ["scaled_masked_softmax.cpp", "/abs/extra.cu",]},
	],
	"include_paths": ["include"],
}`,
	})

	set, err := LoadKernelSet(filepath.Join(dir, KernelSetFile))
	if err != nil {
		t.Fatalf("LoadKernelSet() error = %v", err)
	}

	want := &KernelSet{
		Kernels: []Kernel{{
			Name:    "scaled_masked_softmax_cuda",
			Sources: []string{filepath.Join(dir, "scaled_masked_softmax.cpp"), "/abs/extra.cu"},
		}},
		IncludePaths: []string{filepath.Join(dir, "include")},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Errorf("LoadKernelSet() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKernelSet_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"syntax error", `{"kernels": [`, "invalid kernel set"},
		{"empty list", `{"kernels": []}`, "no kernels listed"},
		{"missing name", `{"kernels": [{"sources": ["a.cu"]}]}`, "has no name"},
		{"path in name", `{"kernels": [{"name": "../evil", "sources": ["a.cu"]}]}`, "not a plain file name"},
		{"duplicate", `{"kernels": [{"name": "k", "sources": ["a.cu"]}, {"name": "k", "sources": ["b.cu"]}]}`, "listed twice"},
		{"no sources", `{"kernels": [{"name": "k"}]}`, "has no sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.CorpusDir(t, map[string]string{KernelSetFile: tt.content})

			_, err := LoadKernelSet(filepath.Join(dir, KernelSetFile))
			if !errors.Is(err, corpuserrors.ErrConfiguration) {
				t.Fatalf("LoadKernelSet() error = %v, want ErrConfiguration", err)
			}
			testutil.AssertErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestResolveKernels(t *testing.T) {
	t.Run("defaults without a kernel set file", func(t *testing.T) {
		dir := t.TempDir()
		set, err := ResolveKernels(dir)
		if err != nil {
			t.Fatalf("ResolveKernels() error = %v", err)
		}
		if diff := cmp.Diff(DefaultKernels(dir), set.Kernels); diff != "" {
			t.Errorf("ResolveKernels() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("kernel set file wins", func(t *testing.T) {
		dir := testutil.CorpusDir(t, map[string]string{
			KernelSetFile: `{"kernels": [{"name": "only", "sources": ["only.cu"]}]}`,
		})
		set, err := ResolveKernels(dir)
		if err != nil {
			t.Fatalf("ResolveKernels() error = %v", err)
		}
		if diff := cmp.Diff([]string{"only"}, ExpectedModules(set.Kernels)); diff != "" {
			t.Errorf("ResolveKernels() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("broken kernel set file is an error", func(t *testing.T) {
		dir := testutil.CorpusDir(t, map[string]string{KernelSetFile: "not json"})
		if _, err := ResolveKernels(dir); err == nil {
			t.Error("ResolveKernels() should fail on a broken kernel set")
		}
	})

	t.Run("unreadable kernel set file is an error", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, KernelSetFile), 0o755); err != nil {
			t.Fatal(err)
		}
		if _, err := ResolveKernels(dir); err == nil {
			t.Error("ResolveKernels() should fail when the kernel set is a directory")
		}
	})
}
