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

// Package corpus discovers the files of a text corpus and reads them line by
// line.
//
// Discovery is a single recursive walk whose result is captured up front:
// every entry below the root is a candidate, including directories and
// binary files. Nothing is filtered by extension. Candidates that cannot be
// read as UTF-8 text fail individually when opened.
//
// Reading is lazy. A LineReader yields one trimmed, non-empty line at a time
// and never holds more than the current line in memory. Before the first
// line is returned the whole file is checked once for UTF-8 validity, so a
// file that fails decoding contributes no lines at all.
package corpus
