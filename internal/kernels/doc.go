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

// Package kernels compiles the fused attention kernels used by training
// into loadable shared objects and checks that they are present.
//
// A build detects the installed toolkit, derives compiler flags for the
// target platform, and compiles each kernel into <build_dir>/<name>.so. The
// inputs of every artifact are fingerprinted in a manifest so an unchanged
// kernel is never recompiled. Each kernel yields its own Result; one failed
// kernel does not stop the others.
//
// Example usage:
//
//	b, err := kernels.NewBuilder(kernels.Options{
//	    Platform:  kernels.PlatformCUDA,
//	    SourceDir: "megatron/fused_kernels",
//	    CUDAHome:  "/usr/local/cuda",
//	    Out:       os.Stdout,
//	})
//	results, err := b.Build(ctx)
package kernels
