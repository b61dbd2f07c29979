package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type options struct {
	sessions    int
	concurrency int
	ops         int
	redisAddr   string
	secret      string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "gosession-loadtest",
		Short: "Seed sessions and measure authenticate throughput against Redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.sessions, "sessions", 10000, "number of sessions to seed")
	flags.IntVar(&opts.concurrency, "concurrency", 128, "number of concurrent workers")
	flags.IntVar(&opts.ops, "ops", 100000, "authenticate calls to issue")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	flags.StringVar(&opts.secret, "binding-secret", "", "enable HMAC binding with this secret")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.sessions <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		return errors.New("sessions, concurrency, and ops must be > 0")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, cleanup, err := openRedis(opts.redisAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := goSession.DefaultConfig()
	cfg.Cookie.Secure = false
	cfg.Binding.Secret = opts.secret
	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(client).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("seeding %d sessions...\n", opts.sessions)
	seedStart := time.Now()
	cookies, seedStats, err := seed(ctx, engine, opts.sessions, opts.concurrency)
	if err != nil {
		return err
	}
	fmt.Printf("seeded in %s\n", time.Since(seedStart).Round(time.Millisecond))

	authStats := runAuthenticatePhase(ctx, engine, cookies, opts.ops, opts.concurrency)

	fmt.Println("---- results ----")
	printStats("login", seedStats)
	printStats("authenticate", authStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: success=%d bad_session=%d failure=%d minted=%d\n",
		snap.Counters[goSession.MetricAuthSuccess],
		snap.Counters[goSession.MetricAuthBadSession],
		snap.Counters[goSession.MetricAuthFailure],
		snap.Counters[goSession.MetricSessionMinted],
	)
	return nil
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func newRequest(i int, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:40000", (i/250)%250, i%250)
	req.Header.Set("User-Agent", "gosession-loadtest")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func seed(ctx context.Context, engine *goSession.Engine, n, concurrency int) ([]*http.Cookie, phaseStats, error) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		errOnce   sync.Once
		firstErr  error
		cookies   = make([]*http.Cookie, n)
		latencies = make([]time.Duration, n)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= n {
					return
				}
				rec := httptest.NewRecorder()
				h := engine.NewHandle(rec, newRequest(i, nil))

				t0 := time.Now()
				err := h.Set(ctx, goSession.Credentials{"user": uuid.NewString()})
				latencies[i] = time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					errOnce.Do(func() { firstErr = err })
					continue
				}
				if c := rec.Result().Cookies(); len(c) > 0 {
					cookies[i] = c[len(c)-1]
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, phaseStats{}, fmt.Errorf("seed failed (%d failures): %w", failures, firstErr)
	}
	return cookies, computeStats(time.Since(start), latencies, failures), nil
}

func runAuthenticatePhase(ctx context.Context, engine *goSession.Engine, cookies []*http.Cookie, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, ops)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(cookies))
				h := engine.NewHandle(httptest.NewRecorder(), newRequest(idx, cookies[idx]))

				t0 := time.Now()
				_, err := engine.Authenticate(ctx, h)
				latencies[i] = time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
