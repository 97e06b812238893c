package prometheus

import (
	"net/http"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/MrEthical07/authkit"
)

type metricsSource interface {
	MetricsSnapshot() authkit.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter serves authkit metrics from a private registry holding a
// single [Collector].
type PrometheusExporter struct {
	source   metricsSource
	registry *promclient.Registry
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [authkit.Engine].
func NewPrometheusExporter(engine *authkit.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from any
// value exposing a metrics snapshot and the audit drop count.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	registry := promclient.NewRegistry()
	registry.MustRegister(NewCollector(source))
	return &PrometheusExporter{source: source, registry: registry}
}

// Registry returns the exporter's registry so callers can add their own
// collectors next to the authkit series.
func (p *PrometheusExporter) Registry() *promclient.Registry {
	return p.registry
}

// Handler returns an http.Handler that serves the registry with content
// negotiation.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Render gathers the registry and encodes it in text exposition format. It
// returns "" when metrics are disabled on the source.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && p.source.AuditDropped() == 0 {
		return ""
	}

	families, err := p.registry.Gather()
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return ""
		}
	}
	return b.String()
}
