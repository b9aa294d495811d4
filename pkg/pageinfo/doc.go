// Copyright 2024 The memscope Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pageinfo builds per-process physical memory snapshots from the
// Linux proc filesystem.
//
// Acquiring a Snapshot walks a fixed pipeline:
//
//	ReadRegions   /proc/<pid>/maps            -> []*MappedRegion
//	ReadPagemap   /proc/<pid>/pagemap         -> per-page PFN + pagemap flags
//	PlanFrameRanges                           -> []FrameRange, buffer size
//	NewFrameAttrReader /proc/kpagecount,kpageflags -> use counts + kernel flags
//	Finalize                                  -> merged, overlap-corrected Snapshot
//
// Acquire runs all five steps and returns the finished Snapshot. Callers
// that need to instrument or replace one stage can call the steps
// directly instead.
//
// A page's PFN is only meaningful while it is present in RAM; pages that
// are swapped out, unmapped, or in a shared zero mapping report a PFN of
// zero and carry no frame-level flags or use count.
package pageinfo
