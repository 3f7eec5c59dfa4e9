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

// Package main implements the sirseer-corpus command-line interface.
// This tool turns a directory of text files into an NDJSON training corpus
// and builds the fused GPU kernels the training job loads.
//
// The CLI supports:
//   - Converting every file under a directory into {"text": ...} records
//   - Building the fused softmax and rotary embedding kernels for CUDA or ROCm
//   - Verifying that every expected kernel module has been built
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	sirseer-corpus convert --input-dir <dir> --output-file <file>
//	sirseer-corpus kernels build [flags]
//	sirseer-corpus kernels verify [flags]
//
// Example:
//
//	sirseer-corpus convert --input-dir ./data/raw --output-file ./data/train.jsonl
//	CUDA_HOME=/usr/local/cuda-12.4 sirseer-corpus kernels build --source-dir megatron/fused_kernels
//
// Exit codes:
//   - 0: Success
//   - 1: Configuration or general error
//   - 2: Kernel toolchain failure or missing kernel modules
package main
