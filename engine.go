package goSession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/internal/identity"
	"github.com/MrEthical07/goSession/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TokenGenerator issues new client tokens.
type TokenGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// Engine defines a public type used by goSession APIs.
//
// Engine instances are safe for concurrent use after [Builder.Build]. Per-request state
// lives in [Handle].
type Engine struct {
	config    Config
	store     *session.Store
	resolver  *identity.Resolver
	generator TokenGenerator
	limiter   *rateCoordinator
	validator Validator
	transport Transport
	policy    PolicyConfig
	logger    *zap.Logger
	tracer    trace.Tracer
	audit     *auditDispatcher
	metrics   *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close flushes queued audit events. It is safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
			Sums:       map[MetricID]time.Duration{},
		}
	}
	return e.metrics.Snapshot()
}

// RecordRedirect counts a redirect issued by framework glue.
func (e *Engine) RecordRedirect() {
	e.metricInc(MetricRedirect)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, r *http.Request, eventType string, success bool, reason string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		EventType: eventType,
		Success:   success,
		Reason:    reason,
	}
	if r != nil {
		event.IP = ClientAddress(r)
		if r.URL != nil {
			event.Path = r.URL.Path
		}
	}
	e.audit.Emit(ctx, event)
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate runs the per-request gate: rate-limit pre-check, token resolution,
// session load, optional validator. On success it returns the effective credentials.
// Every failure is an [*AuthError]; unexpected causes are logged and reported as
// [ReasonGeneric] without leaking details. When a limiter is configured every failed
// call except a blocked pre-check charges the client exactly once.
func (e *Engine) Authenticate(ctx context.Context, h *Handle) (*AuthResult, error) {
	if e == nil || h == nil {
		return nil, newAuthError(ReasonGeneric, errors.New("engine or handle not initialized"))
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "gosession.authenticate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	res, authErr := e.authenticate(ctx, h)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricAuthLatency, time.Since(start))
	}

	if authErr != nil {
		span.SetAttributes(
			attribute.Bool("gosession.authenticated", false),
			attribute.String("gosession.failure_reason", authErr.Reason.String()),
		)
		e.metricInc(failureMetric(authErr.Reason))
		e.logFailure(h.r, authErr)
		if authErr.Reason == ReasonGeneric {
			span.SetStatus(codes.Error, "authentication failed")
		}
		e.emitAudit(ctx, h.r, auditEventRejected, false, authErr.Reason.String())
		return nil, authErr
	}

	span.SetAttributes(attribute.Bool("gosession.authenticated", true))
	e.metricInc(MetricAuthSuccess)
	e.emitAudit(ctx, h.r, auditEventAuthenticated, true, "")
	return res, nil
}

func (e *Engine) authenticate(ctx context.Context, h *Handle) (*AuthResult, *AuthError) {
	var key string
	if e.limiter != nil {
		key = e.limiter.key(h.r)
		decision, err := e.limiter.checkBeforeAuth(ctx, key)
		if err != nil {
			return nil, e.chargeFailure(ctx, key, newAuthError(ReasonGeneric, err))
		}
		if !decision.Conformant {
			ae := newAuthError(ReasonRateLimited, nil)
			ae.RateLimit = &decision
			return nil, ae
		}
	}

	res, err := e.validate(ctx, h)
	if err == nil {
		return res, nil
	}

	ae, ok := AsAuthError(err)
	if !ok {
		ae = newAuthError(ReasonGeneric, err)
	}
	return nil, e.chargeFailure(ctx, key, ae)
}

func (e *Engine) validate(ctx context.Context, h *Handle) (*AuthResult, error) {
	id, ok := h.InternalID()
	if !ok {
		if err := h.SetSession(ctx, session.Anonymous()); err != nil {
			return nil, err
		}
		return nil, newAuthError(ReasonBadSession, nil)
	}

	sess, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		if err := h.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, newAuthError(ReasonBadSession, nil)
	}

	if !sess.Authenticated {
		return nil, newAuthError(ReasonNotAuthenticated, nil)
	}

	creds := sess.Credentials
	valid := creds != nil
	var cause error
	if valid && e.validator != nil {
		var replacement Credentials
		valid, replacement, cause = e.validator(ctx, h.r, creds)
		if cause != nil {
			valid = false
		}
		if valid && replacement != nil {
			creds = replacement
		}
	}

	if !valid {
		if e.config.Session.ClearInvalid {
			if err := h.Clear(ctx); err != nil {
				return nil, err
			}
			e.metricInc(MetricSessionInvalidated)
			e.emitAudit(ctx, h.r, auditEventInvalidated, true, ReasonInvalid.String())
		}
		return nil, newAuthError(ReasonInvalid, cause)
	}

	return &AuthResult{Credentials: creds, Artifacts: sess}, nil
}

// chargeFailure takes one unit from the client's bucket. A limiter error is logged
// and never replaces ae.
func (e *Engine) chargeFailure(ctx context.Context, key string, ae *AuthError) *AuthError {
	if e.limiter == nil {
		return ae
	}
	decision, err := e.limiter.consumeOnFailure(ctx, key)
	if err != nil {
		e.metricInc(MetricRateLimitChargeFailed)
		e.logger.Warn("rate limit charge failed", zap.Error(err), zap.String("bucket", e.limiter.bucket))
		return ae
	}
	ae.RateLimit = &decision
	return ae
}

func (e *Engine) logFailure(r *http.Request, ae *AuthError) {
	fields := []zap.Field{zap.String("reason", ae.Reason.String())}
	if r != nil && r.URL != nil {
		fields = append(fields, zap.String("path", r.URL.Path))
	}

	if ae.Reason == ReasonGeneric {
		fields = append(fields, zap.Error(ae.Cause()))
		e.logger.Error("authentication failed", fields...)
		return
	}
	if ae.Cause() != nil {
		fields = append(fields, zap.NamedError("cause", ae.Cause()))
	}
	e.logger.Debug("authentication rejected", fields...)
}
