package uid

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// MinLength is the smallest accepted entropy length in bytes.
	MinLength = 1
	// DefaultCapacity bounds the number of remembered tokens per generator.
	DefaultCapacity = 1 << 16
)

// ErrGenerationExhausted is returned when no unique token could be produced
// within the retry budget.
var ErrGenerationExhausted = errors.New("token generation exhausted")

// Option customizes a [Generator].
type Option func(*Generator)

// WithSource replaces crypto/rand as the entropy source.
func WithSource(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.source = r
		}
	}
}

// WithCapacity sets how many issued tokens are remembered. The oldest entry is
// forgotten once the capacity is reached.
func WithCapacity(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.capacity = n
		}
	}
}

// Generator produces random tokens and rejects values it has already issued.
type Generator struct {
	length     int
	maxRetries int
	source     io.Reader
	capacity   int

	mu     sync.Mutex
	issued map[string]struct{}
	order  []string
	next   int
}

// New creates a [Generator] drawing length bytes per token and retrying at most
// maxRetries times after the first attempt.
func New(length, maxRetries int, opts ...Option) (*Generator, error) {
	if length < MinLength {
		return nil, fmt.Errorf("uid: length must be >= %d", MinLength)
	}
	if maxRetries < 1 {
		return nil, errors.New("uid: maxRetries must be >= 1")
	}

	g := &Generator{
		length:     length,
		maxRetries: maxRetries,
		source:     rand.Reader,
		capacity:   DefaultCapacity,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.issued = make(map[string]struct{}, min(g.capacity, 1024))
	return g, nil
}

// Generate returns a token not previously returned by this generator. Collisions
// and entropy read errors both count as failed attempts; after maxRetries+1
// failed attempts it returns [ErrGenerationExhausted].
func (g *Generator) Generate(ctx context.Context) (string, error) {
	buf := make([]byte, g.length)
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if _, err := io.ReadFull(g.source, buf); err != nil {
			lastErr = err
			continue
		}

		token := base64.RawURLEncoding.EncodeToString(buf)
		if g.remember(token) {
			return token, nil
		}
		lastErr = errors.New("collision")
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationExhausted, lastErr)
	}
	return "", ErrGenerationExhausted
}

// Issued reports whether token was produced by this generator and is still remembered.
func (g *Generator) Issued(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.issued[token]
	return ok
}

func (g *Generator) remember(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.issued[token]; exists {
		return false
	}

	if len(g.order) < g.capacity {
		g.order = append(g.order, token)
	} else {
		delete(g.issued, g.order[g.next])
		g.order[g.next] = token
		g.next = (g.next + 1) % g.capacity
	}
	g.issued[token] = struct{}{}
	return true
}
