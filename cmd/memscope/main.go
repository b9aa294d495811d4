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

package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/memscope/memscope/pkg/pageinfo"
	"github.com/memscope/memscope/pkg/pagewire"
	"github.com/memscope/memscope/pkg/pidfile"
	"github.com/memscope/memscope/pkg/pidmetrics"
	"github.com/memscope/memscope/pkg/proclist"
	"github.com/memscope/memscope/pkg/xlog"
)

const defaultListenAddr = ":5550"

func exit(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "memscope: "+format+"\n", a...)
	os.Exit(1)
}

func main() {
	optListen := flag.String("listen", "", "-listen=[ADDR] run a streaming server instead of printing a one-shot summary (an empty ADDR means "+defaultListenAddr+")")
	optMetricsAddr := flag.String("metrics-addr", "", "-metrics-addr=ADDR also serve Prometheus metrics for the target process")
	optPidfile := flag.String("pidfile", "", "-pidfile=PATH override the default single-instance guard path")
	flag.Parse()

	if flag.NArg() != 1 {
		exit("usage: memscope [-listen=[%s]] [-metrics-addr=ADDR] <pid|name>", defaultListenAddr)
	}

	pid, err := proclist.Resolve(flag.Arg(0))
	if err != nil {
		exit("%v", err)
	}

	if !flagWasSet("listen") {
		printSummary(pid)
		return
	}

	addr := *optListen
	if addr == "" {
		addr = defaultListenAddr
	}

	if *optPidfile != "" {
		pidfile.SetPath(*optPidfile)
	}
	if err := pidfile.Write(); err != nil {
		exit("refusing to start: another memscope server may already be running (%v)", err)
	}
	defer pidfile.Remove()

	if *optMetricsAddr != "" {
		serveMetrics(pid, *optMetricsAddr)
	}

	if err := serve(pid, addr); err != nil {
		exit("%v", err)
	}
}

func flagWasSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printSummary(pid int) {
	snap, err := pageinfo.Acquire(pid)
	if err != nil {
		exit("failed to acquire snapshot for pid %d: %v", pid, err)
	}
	// Acquire reports an unreadable pagemap only as an empty snapshot.
	pm, err := os.Open(fmt.Sprintf("/proc/%d/pagemap", pid))
	if err != nil {
		exit("cannot read pagemap for pid %d: %v", pid, err)
	}
	pm.Close()
	s := pageinfo.Summarize(snap)
	fmt.Printf("pid %d: vsz=%.2f MiB rss=%.2f MiB pss=%.2f MiB zero-use-count=%d\n",
		pid, s.VirtualMiB, s.ResidentMiB, s.ProportionalMiB, s.ZeroUseCount)
}

// lastSummary is shared between the server loop and the metrics
// collector so /metrics reports the same numbers the most recently
// streamed snapshot carried.
var lastSummary struct {
	value pageinfo.Summary
	ok    bool
}

func serveMetrics(pid int, addr string) {
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(pidmetrics.NewCollector(pid, func() (pageinfo.Summary, bool) {
		return lastSummary.value, lastSummary.ok
	}))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		xlog.Default().Errorf("metrics server exited: %v", http.ListenAndServe(addr, mux))
	}()
	xlog.Default().Infof("serving metrics on %s/metrics", addr)
}

// snapshotInterval paces the server loop's re-acquisition of a process's
// memory map. There is no protocol requirement to send snapshots faster
// than a consumer could plausibly want to redraw them.
const snapshotInterval = time.Second

// serve binds addr and accepts one connection at a time, per the
// protocol's single-active-connection design: Accept isn't called again
// until the current connection's handler returns, so a second client
// simply queues in the kernel backlog instead of being served
// concurrently.
func serve(pid int, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	xlog.Default().Infof("listening on %s for pid %d", addr, pid)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		handleConn(pid, conn)
	}
}

func handleConn(pid int, conn net.Conn) {
	defer conn.Close()
	xlog.Default().Infof("accepted connection from %s", conn.RemoteAddr())

	for {
		snap, err := pageinfo.Acquire(pid)
		if err != nil {
			xlog.Default().Errorf("failed to acquire snapshot for pid %d: %v", pid, err)
			return
		}
		lastSummary.value = pageinfo.Summarize(snap)
		lastSummary.ok = true

		ser := pagewire.NewSerializer(snap)
		for {
			chunk := ser.SerializeMore()
			if len(chunk) == 0 {
				break
			}
			if _, err := conn.Write(chunk); err != nil {
				xlog.Default().Warnf("write to %s failed: %v", conn.RemoteAddr(), err)
				return
			}
		}

		time.Sleep(snapshotInterval)
	}
}
