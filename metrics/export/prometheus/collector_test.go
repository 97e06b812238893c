package prometheus

import (
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/metrics/export/internaldefs"
)

func TestCollectorRegistersAndGathers(t *testing.T) {
	reg := promclient.NewRegistry()
	collector := NewCollector(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters: map[authkit.MetricID]uint64{
				authkit.MetricTokenValid:   11,
				authkit.MetricTokenExpired: 2,
			},
			Histograms: map[authkit.MetricID][]uint64{
				authkit.MetricValidateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
			HistogramSums: map[authkit.MetricID]time.Duration{
				authkit.MetricValidateLatency: 250 * time.Millisecond,
			},
		},
		dropped: 3,
	})
	if err := reg.Register(collector); err != nil {
		t.Fatalf("register: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]float64{}
	var histogramCount uint64
	var histogramSum float64
	var histogramBuckets int
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				byName[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				histogramCount = m.GetHistogram().GetSampleCount()
				histogramSum = m.GetHistogram().GetSampleSum()
				histogramBuckets = len(m.GetHistogram().GetBucket())
			}
		}
	}

	if byName["authkit_token_valid_total"] != 11 || byName["authkit_token_expired_total"] != 2 {
		t.Fatalf("unexpected token counters: %v", byName)
	}
	if byName[auditDroppedName] != 3 {
		t.Fatalf("expected audit dropped 3, got %v", byName[auditDroppedName])
	}
	if histogramCount != 36 {
		t.Fatalf("expected 36 samples, got %d", histogramCount)
	}
	if histogramSum != 0.25 {
		t.Fatalf("expected sum 0.25s, got %v", histogramSum)
	}
	if histogramBuckets != len(internaldefs.HistogramBounds)-1 {
		t.Fatalf("expected %d finite buckets, got %d", len(internaldefs.HistogramBounds)-1, histogramBuckets)
	}
}

func TestCollectorSkipsMissingHistogram(t *testing.T) {
	collector := NewCollector(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters:   map[authkit.MetricID]uint64{authkit.MetricLoginSuccess: 1},
			Histograms: map[authkit.MetricID][]uint64{},
		},
	})

	// Every counter plus the audit counter; no histogram without latency enabled.
	want := len(internaldefs.CounterDefs) + 1
	if got := testutil.CollectAndCount(collector); got != want {
		t.Fatalf("expected %d metrics, got %d", want, got)
	}
}

func TestCollectorLintClean(t *testing.T) {
	collector := NewCollector(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters: map[authkit.MetricID]uint64{},
		},
	})
	problems, err := testutil.CollectAndLint(collector)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("lint problems: %+v", problems)
	}
}
