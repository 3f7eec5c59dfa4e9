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

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestTracker_Counters(t *testing.T) {
	tracker := New()
	tracker.SetCandidates(4)

	for i := 0; i < 3; i++ {
		tracker.RecordLine()
	}
	tracker.FileProcessed()
	tracker.FileFailed("corpus/image.png", errors.New("invalid UTF-8 on line 1"))
	tracker.FileProcessed()
	tracker.FileFailed("corpus/sub", errors.New("is a directory"))

	want := Stats{
		FilesAttempted: 4,
		FilesProcessed: 2,
		FilesFailed:    2,
		LinesWritten:   3,
	}
	if diff := cmp.Diff(want, tracker.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}

	wantFailures := []FileFailure{
		{Path: "corpus/image.png", Reason: "invalid UTF-8 on line 1"},
		{Path: "corpus/sub", Reason: "is a directory"},
	}
	if diff := cmp.Diff(wantFailures, tracker.Failures()); diff != "" {
		t.Errorf("Failures() mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_FailuresIsACopy(t *testing.T) {
	tracker := New()
	tracker.FileFailed("a", errors.New("boom"))

	failures := tracker.Failures()
	failures[0].Path = "mutated"

	if got := tracker.Failures()[0].Path; got != "a" {
		t.Errorf("tracker state changed through returned slice: %q", got)
	}
}

func TestTracker_GenerateReport(t *testing.T) {
	tracker := New()
	tracker.SetCandidates(2)
	tracker.RecordLine()
	tracker.RecordLine()
	tracker.FileProcessed()
	tracker.FileFailed("in/bad.bin", errors.New("invalid UTF-8 on line 1"))

	params := RunParams{InputDir: "in", OutputFile: "out/train.jsonl"}
	report := tracker.GenerateReport("v1.2.3", params)

	if report.ToolVersion != "v1.2.3" {
		t.Errorf("ToolVersion = %s, want v1.2.3", report.ToolVersion)
	}
	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
	}
	if report.RunID != tracker.RunID() {
		t.Errorf("RunID = %s, want tracker RunID %s", report.RunID, tracker.RunID())
	}
	if report.Parameters != params {
		t.Errorf("Parameters = %+v, want %+v", report.Parameters, params)
	}
	if report.Results.FilesProcessed != 1 || report.Results.FilesFailed != 1 || report.Results.LinesWritten != 2 {
		t.Errorf("Results = %+v, want 1 processed, 1 failed, 2 lines", report.Results)
	}
	if report.Results.CompletedAt.Before(report.Results.StartedAt) {
		t.Error("CompletedAt is before StartedAt")
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != "in/bad.bin" {
		t.Errorf("Failures = %+v, want in/bad.bin", report.Failures)
	}
}

func TestTracker_UniqueRunIDs(t *testing.T) {
	if New().RunID() == New().RunID() {
		t.Error("two trackers share a run ID")
	}
}

func TestSaveReport(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "reports")

	report := &RunReport{
		ToolVersion: "v1.2.3",
		RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		Parameters:  RunParams{InputDir: "in", OutputFile: "out.jsonl"},
		Results: RunResults{
			FilesAttempted: 3,
			FilesProcessed: 3,
			LinesWritten:   42,
			Duration:       "1.5s",
			StartedAt:      time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			CompletedAt:    time.Date(2023, 1, 1, 12, 0, 1, 500000000, time.UTC),
		},
	}

	path, err := SaveReport(report, tmpDir)
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	wantPath := filepath.Join(tmpDir, "convert-report-1672574400-0f8fad5b.json")
	if path != wantPath {
		t.Errorf("SaveReport path = %s, want %s", path, wantPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}

	var loaded RunReport
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	if diff := cmp.Diff(*report, loaded); diff != "" {
		t.Errorf("report round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to list report dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("report dir holds %d entries, want only the report", len(entries))
	}
}

func TestLoadLatestReport(t *testing.T) {
	tmpDir := t.TempDir()

	older := &RunReport{
		RunID: "11111111-0000-0000-0000-000000000000",
		Results: RunResults{
			StartedAt:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			CompletedAt: time.Date(2023, 1, 1, 0, 1, 0, 0, time.UTC),
		},
	}
	newer := &RunReport{
		RunID: "22222222-0000-0000-0000-000000000000",
		Results: RunResults{
			StartedAt:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			CompletedAt: time.Date(2023, 6, 1, 0, 1, 0, 0, time.UTC),
		},
	}

	// Save the newer one first so file order does not decide the result.
	for _, r := range []*RunReport{newer, older} {
		if _, err := SaveReport(r, tmpDir); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "convert-report-9999999999-broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write broken report: %v", err)
	}

	latest, err := LoadLatestReport(tmpDir)
	if err != nil {
		t.Fatalf("LoadLatestReport failed: %v", err)
	}
	if latest == nil {
		t.Fatal("LoadLatestReport returned nil")
	}
	if latest.RunID != newer.RunID {
		t.Errorf("latest RunID = %s, want %s", latest.RunID, newer.RunID)
	}
}

func TestLoadLatestReport_Empty(t *testing.T) {
	latest, err := LoadLatestReport(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLatestReport failed: %v", err)
	}
	if latest != nil {
		t.Errorf("LoadLatestReport = %+v, want nil", latest)
	}
}

func TestWriteReportToWriter(t *testing.T) {
	report := &RunReport{
		ToolVersion: "dev",
		RunID:       "abc",
		Failures:    []FileFailure{{Path: "x", Reason: "is a directory"}},
	}

	var buf bytes.Buffer
	if err := WriteReportToWriter(report, &buf); err != nil {
		t.Fatalf("WriteReportToWriter failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"tool_version": "dev"`, `"run_id": "abc"`, `"reason": "is a directory"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}
