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

// Package pidmetrics exposes a process's most recently acquired
// pageinfo.Summary as Prometheus gauges.
package pidmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/memscope/memscope/pkg/pageinfo"
)

// Collector reports the summary statistics of the most recently acquired
// snapshot for one pid.
type Collector struct {
	pidLabel string
	latest   func() (pageinfo.Summary, bool)

	vsz     *prometheus.Desc
	rss     *prometheus.Desc
	pss     *prometheus.Desc
	zeroUse *prometheus.Desc
}

// NewCollector builds a Collector for pid. latest is called on every
// scrape; it should return the last summary computed for pid and
// ok=false until the first one is ready.
func NewCollector(pid int, latest func() (pageinfo.Summary, bool)) *Collector {
	labels := []string{"pid"}
	return &Collector{
		pidLabel: strconv.Itoa(pid),
		latest:   latest,
		vsz:      prometheus.NewDesc("memscope_virtual_mib", "Virtual size of the process, in MiB.", labels, nil),
		rss:      prometheus.NewDesc("memscope_resident_mib", "Resident size of the process, in MiB.", labels, nil),
		pss:      prometheus.NewDesc("memscope_proportional_mib", "Proportional set size of the process, in MiB.", labels, nil),
		zeroUse:  prometheus.NewDesc("memscope_zero_use_count_pages", "Resident pages with a zero system-wide use count.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.vsz
	ch <- c.rss
	ch <- c.pss
	ch <- c.zeroUse
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	summary, ok := c.latest()
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.vsz, prometheus.GaugeValue, summary.VirtualMiB, c.pidLabel)
	ch <- prometheus.MustNewConstMetric(c.rss, prometheus.GaugeValue, summary.ResidentMiB, c.pidLabel)
	ch <- prometheus.MustNewConstMetric(c.pss, prometheus.GaugeValue, summary.ProportionalMiB, c.pidLabel)
	ch <- prometheus.MustNewConstMetric(c.zeroUse, prometheus.GaugeValue, float64(summary.ZeroUseCount), c.pidLabel)
}
