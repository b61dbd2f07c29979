package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events dropped under backpressure.
const AuditDroppedName = "gosession_audit_dropped_total"

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricAuthSuccess, Name: "gosession_auth_success_total", Help: "Successful authentications."},
	{ID: goSession.MetricAuthBadSession, Name: "gosession_auth_bad_session_total", Help: "Authentications rejected for a missing or stale token."},
	{ID: goSession.MetricAuthNotAuthenticated, Name: "gosession_auth_not_authenticated_total", Help: "Authentications rejected for an anonymous session."},
	{ID: goSession.MetricAuthInvalid, Name: "gosession_auth_invalid_total", Help: "Authentications rejected by the credential validator."},
	{ID: goSession.MetricAuthRateLimited, Name: "gosession_auth_rate_limited_total", Help: "Authentications rejected by the rate limiter."},
	{ID: goSession.MetricAuthFailure, Name: "gosession_auth_failure_total", Help: "Authentications failed by unexpected errors."},
	{ID: goSession.MetricSessionMinted, Name: "gosession_session_minted_total", Help: "Newly issued session tokens."},
	{ID: goSession.MetricSessionSaved, Name: "gosession_session_saved_total", Help: "Session writes."},
	{ID: goSession.MetricSessionCleared, Name: "gosession_session_cleared_total", Help: "Cleared sessions."},
	{ID: goSession.MetricSessionInvalidated, Name: "gosession_session_invalidated_total", Help: "Sessions cleared after failed validation."},
	{ID: goSession.MetricRateLimitChargeFailed, Name: "gosession_rate_limit_charge_failed_total", Help: "Failed attempts to charge the rate limiter."},
	{ID: goSession.MetricRedirect, Name: "gosession_redirect_total", Help: "Unauthenticated requests redirected."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricAuthLatency, Name: "gosession_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds; the last engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for gauge-per-bucket exporters.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
