package authkit

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/authkit/credstore"
	internalaudit "github.com/MrEthical07/authkit/internal/audit"
	internalmetrics "github.com/MrEthical07/authkit/internal/metrics"
)

// UserRecord is the persisted credential row: id, normalised identifier and
// the stored hash exactly as produced by the password hasher.
type UserRecord = credstore.UserRecord

// UserStore is the persistence boundary used by the Engine. Implementations
// must return [credstore.ErrDuplicate] from Create for an existing identifier
// and [credstore.ErrNotFound] from lookups of unknown users.
type UserStore interface {
	Create(ctx context.Context, identifier, passwordHash string) (UserRecord, error)
	GetByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// AuthResult is the authenticated identity extracted from a valid token.
type AuthResult struct {
	UserID    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
	// Claims holds the custom claims, nil when the token has none.
	Claims map[string]any
}

// LoginResult is returned by a successful [Engine.Login].
type LoginResult struct {
	UserID      string
	AccessToken string
	ExpiresIn   time.Duration
	// Rehashed reports that the stored hash was upgraded during this login.
	Rehashed bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricHashCreated counts stored hashes produced by Register and rehashing.
	MetricHashCreated = MetricID(internalmetrics.MetricHashCreated)
	// MetricHashFallback counts hashes produced with PBKDF2 instead of Argon2id.
	MetricHashFallback = MetricID(internalmetrics.MetricHashFallback)
	MetricVerifyMatch  = MetricID(internalmetrics.MetricVerifyMatch)
	// MetricVerifyMismatch counts well-formed hashes that did not match.
	MetricVerifyMismatch = MetricID(internalmetrics.MetricVerifyMismatch)
	// MetricVerifyFormatError counts stored hashes that could not be decoded.
	MetricVerifyFormatError = MetricID(internalmetrics.MetricVerifyFormatError)
	MetricRehashNeeded      = MetricID(internalmetrics.MetricRehashNeeded)
	MetricRehashStored      = MetricID(internalmetrics.MetricRehashStored)
	MetricRegisterSuccess   = MetricID(internalmetrics.MetricRegisterSuccess)
	MetricRegisterDuplicate = MetricID(internalmetrics.MetricRegisterDuplicate)
	MetricLoginSuccess      = MetricID(internalmetrics.MetricLoginSuccess)
	MetricLoginFailure      = MetricID(internalmetrics.MetricLoginFailure)
	MetricTokenIssued       = MetricID(internalmetrics.MetricTokenIssued)
	MetricTokenValid        = MetricID(internalmetrics.MetricTokenValid)
	MetricTokenMalformed    = MetricID(internalmetrics.MetricTokenMalformed)
	// MetricTokenBadSignature includes tokens signed with a foreign key or algorithm.
	MetricTokenBadSignature = MetricID(internalmetrics.MetricTokenBadSignature)
	MetricTokenExpired      = MetricID(internalmetrics.MetricTokenExpired)
	MetricTokenNotYetValid  = MetricID(internalmetrics.MetricTokenNotYetValid)
	// MetricValidateLatency is the only histogram.
	MetricValidateLatency = MetricID(internalmetrics.MetricValidateLatency)

	metricIDCount = internalmetrics.MetricIDCount
)

// HistogramBucketCount is the number of latency buckets in a snapshot
// histogram: ≤5ms, ≤10ms, ≤25ms, ≤50ms, ≤100ms, ≤250ms, ≤500ms and +Inf.
const HistogramBucketCount = internalmetrics.HistogramBucketCount

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
