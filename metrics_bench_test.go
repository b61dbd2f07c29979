package goSession

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricAuthSuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricAuthSuccess)
	}
}

var mixedAuthMetricIDs = [...]MetricID{
	MetricAuthSuccess,
	MetricAuthBadSession,
	MetricAuthNotAuthenticated,
	MetricAuthInvalid,
	MetricSessionMinted,
	MetricSessionSaved,
}

func BenchmarkMetricsIncMixedParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(mixedAuthMetricIDs[idx])
			idx++
			if idx == len(mixedAuthMetricIDs) {
				idx = 0
			}
		}
	})
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricAuthLatency, d)
		}
	})
}

func BenchmarkAuthenticateMemoryCache(b *testing.B) {
	engine, err := New().WithMetricsEnabled(true).Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	rec := httptest.NewRecorder()
	h := engine.NewHandle(rec, httptest.NewRequest("GET", "/", nil))
	if err := h.Set(ctx, Credentials{"user": "alice"}); err != nil {
		b.Fatalf("Set failed: %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		if _, err := engine.Authenticate(ctx, engine.NewHandle(nil, req)); err != nil {
			b.Fatalf("Authenticate failed: %v", err)
		}
	}
}
