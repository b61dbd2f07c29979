package identity

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Attribute(path string) (string, bool) {
	v, ok := m[path]
	return v, ok
}

const testSecret = "0123456789abcdef"

func newBound(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "sha1"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "base64"
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func TestResolveWithoutSecretIsIdentity(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)
	assert.False(t, r.Bound())
	assert.Equal(t, "abc", r.Resolve("abc", nil))
	assert.Equal(t, "", r.Resolve("", nil))
}

func TestResolveMatchesHMACOverTokenAndAttributes(t *testing.T) {
	r := newBound(t, Config{Attributes: []string{AttrRemoteAddress, "headers.user-agent"}})
	src := mapSource{AttrRemoteAddress: "10.0.0.1", "headers.user-agent": "curl/8"}

	mac := hmac.New(sha1.New, []byte(testSecret))
	mac.Write([]byte("tok"))
	mac.Write([]byte("10.0.0.1"))
	mac.Write([]byte("curl/8"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, r.Resolve("tok", src))
}

func TestResolveDiffersByAttributeValue(t *testing.T) {
	r := newBound(t, Config{Attributes: []string{AttrRemoteAddress}})

	a := r.Resolve("tok", mapSource{AttrRemoteAddress: "10.0.0.1"})
	b := r.Resolve("tok", mapSource{AttrRemoteAddress: "10.0.0.2"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, "tok", a)
}

func TestResolveSkipsMissingAttributes(t *testing.T) {
	r := newBound(t, Config{Attributes: []string{AttrRemoteAddress, "headers.x-custom"}})
	only := newBound(t, Config{Attributes: []string{AttrRemoteAddress}})

	src := mapSource{AttrRemoteAddress: "10.0.0.1"}
	assert.Equal(t, only.Resolve("tok", src), r.Resolve("tok", src))

	withEmpty := mapSource{AttrRemoteAddress: "10.0.0.1", "headers.x-custom": ""}
	assert.Equal(t, r.Resolve("tok", src), r.Resolve("tok", withEmpty))

	withValue := mapSource{AttrRemoteAddress: "10.0.0.1", "headers.x-custom": "v"}
	assert.NotEqual(t, r.Resolve("tok", src), r.Resolve("tok", withValue))
}

func TestResolveEncodings(t *testing.T) {
	for _, enc := range []string{"hex", "base64", "base64url", "latin1"} {
		t.Run(enc, func(t *testing.T) {
			r := newBound(t, Config{Encoding: enc})
			id := r.Resolve("tok", nil)
			assert.NotEmpty(t, id)
			assert.Equal(t, id, r.Resolve("tok", nil))
		})
	}
}

func TestResolveAlgorithms(t *testing.T) {
	for _, alg := range []string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512", "sha512-256", "sha3-256", "sha3-512", "blake2b-256", "blake2b-512"} {
		t.Run(alg, func(t *testing.T) {
			r := newBound(t, Config{Algorithm: alg, Encoding: "hex"})
			assert.NotEmpty(t, r.Resolve("tok", nil))
		})
	}
}

func TestNewFailsFast(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "short secret", cfg: Config{Secret: "short", Algorithm: "sha1", Encoding: "hex"}, want: ErrSecretTooShort},
		{name: "unknown algorithm", cfg: Config{Secret: testSecret, Algorithm: "whirlpool", Encoding: "hex"}, want: ErrUnsupportedAlgorithm},
		{name: "unknown encoding", cfg: Config{Secret: testSecret, Algorithm: "sha1", Encoding: "ascii85"}, want: ErrUnsupportedEncoding},
		{name: "bad attribute", cfg: Config{Secret: testSecret, Algorithm: "sha1", Encoding: "hex", Attributes: []string{"headers.a.b"}}, want: ErrInvalidAttribute},
		{name: "unknown namespace", cfg: Config{Secret: testSecret, Algorithm: "sha1", Encoding: "hex", Attributes: []string{"query.id"}}, want: ErrInvalidAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
