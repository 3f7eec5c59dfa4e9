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

// Package output provides utilities for writing training records in NDJSON
// (Newline Delimited JSON) format. Every record is a JSON object with a single
// "text" key on its own line; the file as a whole is not one JSON document,
// but every line parses on its own.
//
// The primary type is Writer, which streams records to an io.Writer or file
// through a buffer, so memory use does not grow with the size of the corpus.
//
// Example usage:
//
//	w, err := output.NewFileWriter("corpus/train.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	for _, line := range lines {
//	    if err := w.Write(output.Record{Text: line}); err != nil {
//	        log.Printf("Failed to write record: %v", err)
//	    }
//	}
//
//	fmt.Printf("Wrote %d records\n", w.Count())
package output
