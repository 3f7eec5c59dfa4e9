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

package testutil

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// ReadTexts parses an NDJSON output file and returns the "text" value of
// every line in order. Each line must be a JSON object with exactly one key,
// "text", holding a non-empty string.
func ReadTexts(t *testing.T, filePath string) []string {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var texts []string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("Line %d: invalid JSON: %v", lineNo, err)
		}
		if len(record) != 1 {
			t.Errorf("Line %d: expected exactly one key, got %d", lineNo, len(record))
		}

		text, ok := record["text"].(string)
		if !ok {
			t.Fatalf("Line %d: missing or non-string 'text' field", lineNo)
		}
		if strings.TrimSpace(text) != text || text == "" {
			t.Errorf("Line %d: text %q is not trimmed and non-empty", lineNo, text)
		}
		texts = append(texts, text)
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading file: %v", err)
	}

	return texts
}

// AssertNDJSONOutput checks that an output file holds exactly want lines.
func AssertNDJSONOutput(t *testing.T, filePath string, want int) {
	t.Helper()

	if got := len(ReadTexts(t, filePath)); got != want {
		t.Errorf("Expected %d records, got %d", want, got)
	}
}

func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}

func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error to contain %q, got: %v", expected, err)
	}
}
