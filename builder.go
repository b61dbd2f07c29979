package goSession

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goSession/internal/identity"
	"github.com/MrEthical07/goSession/internal/uid"
	"github.com/MrEthical07/goSession/ratelimit"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/transport"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/MrEthical07/goSession"

// Builder defines a public type used by goSession APIs.
//
// A Builder is single-use: the second call to [Builder.Build] fails.
type Builder struct {
	config Config

	cache     session.Cache
	transport Transport
	limiter   ratelimit.Client
	keyFunc   KeyFunc
	validator Validator
	generator TokenGenerator

	logger         *zap.Logger
	tracerProvider trace.TracerProvider
	auditSink      AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCache sets the session cache backend. Without one the engine keeps sessions in
// process memory.
func (b *Builder) WithCache(cache session.Cache) *Builder {
	b.cache = cache
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis stores sessions in Redis through [session.RedisCache].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	if client != nil {
		b.cache = session.NewRedisCache(client)
	}
	return b
}

// WithTransport replaces the default cookie transport.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithRateLimiter enables failure throttling. keyFn may be nil to key by client address.
func (b *Builder) WithRateLimiter(client ratelimit.Client, keyFn KeyFunc) *Builder {
	b.limiter = client
	b.keyFunc = keyFn
	return b
}

// WithValidator installs a per-request credential validator.
func (b *Builder) WithValidator(v Validator) *Builder {
	b.validator = v
	return b
}

// WithTokenGenerator replaces the built-in random token generator.
func (b *Builder) WithTokenGenerator(g TokenGenerator) *Builder {
	b.generator = g
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The default is the global one.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink enables audit dispatch to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authentication latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build validates the configuration and wires the engine. Configuration problems are
// returned wrapped in [ErrInvalidConfiguration].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	resolver, err := identity.New(identity.Config{
		Secret:     cfg.Binding.Secret,
		Algorithm:  cfg.Binding.Algorithm,
		Encoding:   cfg.Binding.Encoding,
		Attributes: cfg.Binding.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	generator := b.generator
	if generator == nil {
		g, err := uid.New(cfg.Session.TokenLength, cfg.Session.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		generator = g
	}

	tr := b.transport
	if tr == nil {
		sameSite, _ := parseSameSite(cfg.Cookie.SameSite)
		cookie, err := transport.NewCookie(transport.CookieConfig{
			Name:          cfg.Cookie.Name,
			Path:          cfg.Cookie.Path,
			Domain:        cfg.Cookie.Domain,
			Secure:        cfg.Cookie.Secure,
			HTTPOnly:      cfg.Cookie.HTTPOnly,
			SameSite:      sameSite,
			TTL:           cfg.Session.TTL,
			SessionCookie: cfg.Session.SessionCookie,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		tr = cookie
	}

	cache := b.cache
	if cache == nil {
		cache = session.NewMemoryCache()
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	e := &Engine{
		config: cfg,
		store: session.NewStore(cache, session.StoreConfig{
			Segment:       cfg.Session.Segment,
			TTL:           cfg.Session.TTL,
			SessionCookie: cfg.Session.SessionCookie,
		}),
		resolver:  resolver,
		generator: generator,
		limiter:   newRateCoordinator(b.limiter, cfg.RateLimit.Bucket, b.keyFunc),
		validator: b.validator,
		transport: tr,
		policy: PolicyConfig{
			RedirectTo:          cfg.Redirect.To,
			AppendNext:          cfg.Redirect.AppendNext,
			RedirectOnTry:       cfg.Redirect.OnTry,
			AddRateLimitHeaders: cfg.RateLimit.AddHeaders,
		},
		logger:  logger.Named("gosession"),
		tracer:  tp.Tracer(tracerName),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink, logger),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true
	return e, nil
}
