package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() authkit.MetricsSnapshot
	AuditDropped() uint64
}

// outcome binds one engine counter to an attribute value on a shared
// instrument.
type outcome struct {
	id    authkit.MetricID
	value string
}

type family struct {
	name     string
	help     string
	key      string
	outcomes []outcome
}

// families groups engine counters that describe the same operation. Each
// family is one instrument; the counter becomes an attribute value.
var families = []family{
	{
		name: "authkit_password_verifications_total",
		help: "Stored-hash verifications by outcome.",
		key:  "outcome",
		outcomes: []outcome{
			{authkit.MetricVerifyMatch, "match"},
			{authkit.MetricVerifyMismatch, "mismatch"},
			{authkit.MetricVerifyFormatError, "format_error"},
		},
	},
	{
		name: "authkit_password_rehash_total",
		help: "Below-baseline hashes seen at login and upgrades stored.",
		key:  "stage",
		outcomes: []outcome{
			{authkit.MetricRehashNeeded, "needed"},
			{authkit.MetricRehashStored, "stored"},
		},
	},
	{
		name: "authkit_registrations_total",
		help: "Registration attempts by outcome.",
		key:  "outcome",
		outcomes: []outcome{
			{authkit.MetricRegisterSuccess, "success"},
			{authkit.MetricRegisterDuplicate, "duplicate"},
		},
	},
	{
		name: "authkit_logins_total",
		help: "Login attempts by outcome.",
		key:  "outcome",
		outcomes: []outcome{
			{authkit.MetricLoginSuccess, "success"},
			{authkit.MetricLoginFailure, "failure"},
		},
	},
	{
		name: "authkit_token_validations_total",
		help: "Bearer token validations by outcome.",
		key:  "outcome",
		outcomes: []outcome{
			{authkit.MetricTokenValid, "valid"},
			{authkit.MetricTokenMalformed, "malformed"},
			{authkit.MetricTokenBadSignature, "bad_signature"},
			{authkit.MetricTokenExpired, "expired"},
			{authkit.MetricTokenNotYetValid, "not_yet_valid"},
		},
	},
}

type observedFamily struct {
	instrument metric.Int64ObservableCounter
	ids        []authkit.MetricID
	attrs      []metric.ObserveOption
}

type observedLatency struct {
	id      authkit.MetricID
	buckets metric.Int64ObservableGauge
	bounds  []metric.ObserveOption
	count   metric.Int64ObservableCounter
	sum     metric.Float64ObservableCounter
}

// OTelExporter observes engine metrics on every collection cycle of the
// supplied meter.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	families     []observedFamily
	hashes       metric.Int64ObservableCounter
	argon2Attr   metric.ObserveOption
	fallbackAttr metric.ObserveOption
	issued       metric.Int64ObservableCounter
	latency      []observedLatency
	auditDropped metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, engine *authkit.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:       source,
		argon2Attr:   withAttr("algorithm", "argon2id"),
		fallbackAttr: withAttr("algorithm", "pbkdf2-sha512"),
	}
	var observables []metric.Observable

	for _, f := range families {
		ins, err := meter.Int64ObservableCounter(f.name, metric.WithDescription(f.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", f.name, err)
		}
		of := observedFamily{instrument: ins}
		for _, o := range f.outcomes {
			of.ids = append(of.ids, o.id)
			of.attrs = append(of.attrs, withAttr(f.key, o.value))
		}
		exporter.families = append(exporter.families, of)
		observables = append(observables, ins)
	}

	var err error
	if exporter.hashes, err = meter.Int64ObservableCounter(
		"authkit_password_hashes_total",
		metric.WithDescription("Password hashes produced, by algorithm."),
	); err != nil {
		return nil, fmt.Errorf("create hash counter: %w", err)
	}
	if exporter.issued, err = meter.Int64ObservableCounter(
		"authkit_token_issued_total",
		metric.WithDescription("Signed bearer tokens."),
	); err != nil {
		return nil, fmt.Errorf("create issued counter: %w", err)
	}
	if exporter.auditDropped, err = meter.Int64ObservableCounter(
		"authkit_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	); err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	observables = append(observables, exporter.hashes, exporter.issued, exporter.auditDropped)

	for _, def := range internaldefs.HistogramDefs {
		l, err := newObservedLatency(meter, def)
		if err != nil {
			return nil, err
		}
		exporter.latency = append(exporter.latency, l)
		observables = append(observables, l.buckets, l.count, l.sum)
	}

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	exporter.registration = registration
	return exporter, nil
}

func newObservedLatency(meter metric.Meter, def internaldefs.HistogramDef) (observedLatency, error) {
	l := observedLatency{id: def.ID}

	var err error
	if l.buckets, err = meter.Int64ObservableGauge(
		def.Name+"_bucket",
		metric.WithDescription("Cumulative sample count at or below the le bound."),
	); err != nil {
		return l, fmt.Errorf("create histogram bucket gauge %s: %w", def.Name, err)
	}
	if l.count, err = meter.Int64ObservableCounter(
		def.Name+"_count",
		metric.WithDescription(def.Help),
	); err != nil {
		return l, fmt.Errorf("create histogram count %s: %w", def.Name, err)
	}
	if l.sum, err = meter.Float64ObservableCounter(
		def.Name+"_sum",
		metric.WithDescription(def.Help),
		metric.WithUnit("s"),
	); err != nil {
		return l, fmt.Errorf("create histogram sum %s: %w", def.Name, err)
	}
	for _, le := range internaldefs.HistogramBounds {
		l.bounds = append(l.bounds, withAttr("le", le))
	}
	return l, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for _, f := range e.families {
		for i, id := range f.ids {
			observer.ObserveInt64(f.instrument, int64(snapshot.Counters[id]), f.attrs[i])
		}
	}

	created := snapshot.Counters[authkit.MetricHashCreated]
	fallback := snapshot.Counters[authkit.MetricHashFallback]
	// Counters are read one by one, so fallback can briefly lead created.
	primary := uint64(0)
	if created > fallback {
		primary = created - fallback
	}
	observer.ObserveInt64(e.hashes, int64(primary), e.argon2Attr)
	observer.ObserveInt64(e.hashes, int64(fallback), e.fallbackAttr)
	observer.ObserveInt64(e.issued, int64(snapshot.Counters[authkit.MetricTokenIssued]))

	for _, l := range e.latency {
		raw, ok := snapshot.Histograms[l.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, v := range cumulative {
			observer.ObserveInt64(l.buckets, int64(v), l.bounds[i])
		}
		observer.ObserveInt64(l.count, int64(cumulative[len(cumulative)-1]))
		observer.ObserveFloat64(l.sum, snapshot.HistogramSums[l.id].Seconds())
	}

	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

func withAttr(key, value string) metric.ObserveOption {
	return metric.WithAttributeSet(attribute.NewSet(attribute.String(key, value)))
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
