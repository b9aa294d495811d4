package pidmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/memscope/memscope/pkg/pageinfo"
)

func TestCollectorBeforeFirstSnapshot(t *testing.T) {
	c := NewCollector(1, func() (pageinfo.Summary, bool) { return pageinfo.Summary{}, false })

	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)

	var count int
	for range ch {
		count++
	}
	if count != 0 {
		t.Errorf("expected no metrics before the first snapshot, got %d", count)
	}
}

func TestCollectorReportsSummary(t *testing.T) {
	summary := pageinfo.Summary{VirtualMiB: 12, ResidentMiB: 6, ProportionalMiB: 3, ZeroUseCount: 2}
	c := NewCollector(99, func() (pageinfo.Summary, bool) { return summary, true })

	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)

	var metrics []prometheus.Metric
	for m := range ch {
		metrics = append(metrics, m)
	}
	if len(metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(metrics))
	}

	var pb dto.Metric
	if err := metrics[0].Write(&pb); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if pb.GetGauge().GetValue() != summary.VirtualMiB {
		t.Errorf("first metric = %v, want VirtualMiB %v", pb.GetGauge().GetValue(), summary.VirtualMiB)
	}
	if len(pb.Label) != 1 || pb.Label[0].GetValue() != "99" {
		t.Errorf("expected pid label \"99\", got %+v", pb.Label)
	}
}
