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

// Package pagewire encodes and decodes pageinfo.Snapshot values as a
// resumable little-endian byte stream:
//
//	Snapshot := u64 body_length ; Body
//	Body     := Region*
//	Region   := u64 start ; u64 end ; u32 name_len ; name_len bytes ;
//	            pad to a 4-byte boundary ;
//	            u32 useCount[N] ; u32 combinedFlags[N]
//	            (N = (end-start)/pageSize)
//
// Serializer produces this stream incrementally from a Snapshot without
// requiring the whole thing to fit in memory at once as a single []byte;
// Reader consumes it from arbitrarily-sized, arbitrarily-fragmented
// chunks, as they arrive off a socket.
package pagewire
