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

// Command memscope-client is the reference consumer for the memscope
// wire protocol: it connects to a memscope -listen server, feeds
// whatever arrives off the socket straight into a pagewire.Reader, and
// prints a summary line for every completed Snapshot. It demonstrates
// that the wire protocol carries everything the local one-shot summary
// path computes, without needing any local /proc access of its own.
package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/memscope/memscope/pkg/pageinfo"
	"github.com/memscope/memscope/pkg/pagewire"
)

func exit(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "memscope-client: "+format+"\n", a...)
	os.Exit(1)
}

func main() {
	if len(os.Args) != 2 {
		exit("usage: memscope-client <host:port>")
	}

	conn, err := net.Dial("tcp", os.Args[1])
	if err != nil {
		exit("%v", err)
	}
	defer conn.Close()

	reader := pagewire.NewReader()
	buf := make([]byte, 64*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			snapshots, decodeErr := reader.Feed(buf[:n])
			if decodeErr != nil {
				exit("protocol error: %v", decodeErr)
			}
			for _, snap := range snapshots {
				printSummary(snap)
			}
		}
		if err != nil {
			if err == io.EOF {
				return
			}
			exit("read failed: %v", err)
		}
	}
}

// printSummary mirrors cmd/memscope's one-shot output. The wire protocol
// doesn't carry a pid field (only the region list), so unlike the local
// path this has nothing to label the snapshot with beyond its region
// count.
func printSummary(snap *pageinfo.Snapshot) {
	s := pageinfo.Summarize(snap)
	fmt.Printf("snapshot: vsz=%.2f MiB rss=%.2f MiB pss=%.2f MiB zero-use-count=%d (%d regions)\n",
		s.VirtualMiB, s.ResidentMiB, s.ProportionalMiB, s.ZeroUseCount, len(snap.Regions))
}
