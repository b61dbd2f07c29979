package goSession

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedEngine(t *testing.T, configure ...func(*Builder)) (*Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	configure = append([]func(*Builder){func(b *Builder) { b.WithLogger(zap.New(core)) }}, configure...)
	_, rdb := newTestRedis(t)
	return buildTestEngine(t, testConfig(), rdb, configure...), logs
}

func reasonField(entry observer.LoggedEntry) string {
	v, _ := entry.ContextMap()["reason"].(string)
	return v
}

func TestDomainFailuresLogAtDebug(t *testing.T) {
	engine, logs := observedEngine(t)

	_, ae, _ := authenticate(t, engine, newRequest())
	if ae == nil || ae.Reason != ReasonBadSession {
		t.Fatalf("expected bad session, got %v", ae)
	}

	rejected := logs.FilterMessage("authentication rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("expected one rejection entry, got %d", len(rejected))
	}
	if rejected[0].Level != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %v", rejected[0].Level)
	}
	if got := reasonField(rejected[0]); got != "bad_session" {
		t.Fatalf("expected reason bad_session, got %q", got)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Fatalf("domain failure must not log at error, got %d entries", n)
	}
}

func TestGenericFailureLogsAtError(t *testing.T) {
	mr, rdb := newTestRedis(t)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := buildTestEngine(t, testConfig(), rdb, func(b *Builder) {
		b.WithLogger(zap.New(core))
	})
	cookie := loggedInCookie(t, engine, Credentials{"user": "mia"})

	mr.SetError("server down")
	_, ae, _ := authenticate(t, engine, newRequest(cookie))
	if ae == nil || ae.Reason != ReasonGeneric {
		t.Fatalf("expected generic failure, got %v", ae)
	}

	failed := logs.FilterMessage("authentication failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected one failure entry, got %d", len(failed))
	}
	if failed[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %v", failed[0].Level)
	}
	if got := reasonField(failed[0]); got != "generic" {
		t.Fatalf("expected reason generic, got %q", got)
	}
	if _, ok := failed[0].ContextMap()["error"]; !ok {
		t.Fatal("expected the cause to be logged")
	}
	if ae.Error() == ae.Cause().Error() {
		t.Fatal("cause must not leak through Error()")
	}
}

func TestChargeFailureLogsAtWarn(t *testing.T) {
	stub := &stubLimiter{takeErr: errors.New("write failed")}
	engine, logs := observedEngine(t, func(b *Builder) {
		b.WithRateLimiter(stub, nil)
	})

	_, ae, _ := authenticate(t, engine, newRequest())
	if ae == nil || ae.Reason != ReasonBadSession {
		t.Fatalf("expected bad session, got %v", ae)
	}

	warned := logs.FilterMessage("rate limit charge failed").All()
	if len(warned) != 1 {
		t.Fatalf("expected one charge warning, got %d", len(warned))
	}
	if warned[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", warned[0].Level)
	}
	if got, _ := warned[0].ContextMap()["bucket"].(string); got != "session" {
		t.Fatalf("expected bucket session, got %q", got)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Fatalf("swallowed charge failure must not log at error, got %d entries", n)
	}
}
