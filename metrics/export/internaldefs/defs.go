package internaldefs

import (
	"github.com/MrEthical07/authkit"
)

// CounterDef defines a public type used by authkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricHashCreated, Name: "authkit_hash_created_total", Help: "Password hashes produced."},
	{ID: authkit.MetricHashFallback, Name: "authkit_hash_fallback_total", Help: "Password hashes produced with the PBKDF2 fallback."},
	{ID: authkit.MetricVerifyMatch, Name: "authkit_verify_match_total", Help: "Password verifications that matched."},
	{ID: authkit.MetricVerifyMismatch, Name: "authkit_verify_mismatch_total", Help: "Password verifications that did not match."},
	{ID: authkit.MetricVerifyFormatError, Name: "authkit_verify_format_error_total", Help: "Stored hashes that could not be decoded."},
	{ID: authkit.MetricRehashNeeded, Name: "authkit_rehash_needed_total", Help: "Logins whose stored hash was below the baseline."},
	{ID: authkit.MetricRehashStored, Name: "authkit_rehash_stored_total", Help: "Stored hashes upgraded during login."},
	{ID: authkit.MetricRegisterSuccess, Name: "authkit_register_success_total", Help: "Successful registrations."},
	{ID: authkit.MetricRegisterDuplicate, Name: "authkit_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Successful login attempts."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Failed login attempts."},
	{ID: authkit.MetricTokenIssued, Name: "authkit_token_issued_total", Help: "Signed bearer tokens."},
	{ID: authkit.MetricTokenValid, Name: "authkit_token_valid_total", Help: "Tokens accepted by Validate."},
	{ID: authkit.MetricTokenMalformed, Name: "authkit_token_malformed_total", Help: "Tokens rejected as malformed."},
	{ID: authkit.MetricTokenBadSignature, Name: "authkit_token_bad_signature_total", Help: "Tokens rejected for an invalid signature."},
	{ID: authkit.MetricTokenExpired, Name: "authkit_token_expired_total", Help: "Tokens rejected as expired."},
	{ID: authkit.MetricTokenNotYetValid, Name: "authkit_token_not_yet_valid_total", Help: "Tokens rejected as not yet valid."},
}

// HistogramDefs lists the exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricValidateLatency, Name: "authkit_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bounds in seconds, matching the engine buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed array. Missing buckets are zero.
func NormalizeBuckets(raw []uint64) [authkit.HistogramBucketCount]uint64 {
	var out [authkit.HistogramBucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [authkit.HistogramBucketCount]uint64) [authkit.HistogramBucketCount]uint64 {
	var out [authkit.HistogramBucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
