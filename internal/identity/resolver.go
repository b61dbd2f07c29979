package identity

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// MinSecretLength is the shortest accepted binding secret.
const MinSecretLength = 10

const (
	// AttrRemoteAddress is the attribute path of the client network address.
	AttrRemoteAddress = "info.remoteAddress"
	// HeaderPrefix prefixes attribute paths that read a request header.
	HeaderPrefix = "headers."
)

var (
	// ErrUnsupportedAlgorithm is returned for digest names this runtime cannot compute.
	ErrUnsupportedAlgorithm = errors.New("unsupported hmac algorithm")
	// ErrUnsupportedEncoding is returned for unknown output encodings.
	ErrUnsupportedEncoding = errors.New("unsupported hmac encoding")
	// ErrInvalidAttribute is returned for attribute paths outside the supported grammar.
	ErrInvalidAttribute = errors.New("invalid binding attribute")
	// ErrSecretTooShort is returned when a non-empty secret is shorter than MinSecretLength.
	ErrSecretTooShort = errors.New("binding secret too short")
)

var attributePattern = regexp.MustCompile(`^(info\.remoteAddress|headers\.[^.]+)$`)

var algorithms = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512-256": sha512.New512_256,
	"sha3-256":   sha3.New256,
	"sha3-512":   sha3.New512,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
}

var encoders = map[string]func([]byte) string{
	"hex":       hex.EncodeToString,
	"base64":    base64.StdEncoding.EncodeToString,
	"base64url": base64.RawURLEncoding.EncodeToString,
	"latin1":    latin1,
}

// AttributeSource looks up request attributes by dotted path.
type AttributeSource interface {
	Attribute(path string) (string, bool)
}

// Config describes how internal ids are derived.
type Config struct {
	Secret     string
	Algorithm  string
	Encoding   string
	Attributes []string
}

// Resolver maps tokens to internal ids. A zero-secret Resolver is the identity mapping.
type Resolver struct {
	secret     []byte
	newHash    func() hash.Hash
	encode     func([]byte) string
	attributes []string
}

// New validates cfg and returns a [Resolver]. Unsupported algorithms, encodings or
// attribute paths fail here rather than per request.
func New(cfg Config) (*Resolver, error) {
	if cfg.Secret == "" {
		return &Resolver{}, nil
	}
	if utf8.RuneCountInString(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrSecretTooShort, MinSecretLength)
	}

	newHash, ok := algorithms[strings.ToLower(cfg.Algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	encode, ok := encoders[strings.ToLower(cfg.Encoding)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, cfg.Encoding)
	}

	attrs := make([]string, 0, len(cfg.Attributes))
	for _, attr := range cfg.Attributes {
		if !ValidAttribute(attr) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAttribute, attr)
		}
		attrs = append(attrs, attr)
	}

	return &Resolver{
		secret:     []byte(cfg.Secret),
		newHash:    newHash,
		encode:     encode,
		attributes: attrs,
	}, nil
}

// ValidAttribute reports whether path is a supported attribute path.
func ValidAttribute(path string) bool {
	return attributePattern.MatchString(path)
}

// SupportedAlgorithm reports whether name is a known HMAC digest.
func SupportedAlgorithm(name string) bool {
	_, ok := algorithms[strings.ToLower(name)]
	return ok
}

// SupportedEncoding reports whether name is a known output encoding.
func SupportedEncoding(name string) bool {
	_, ok := encoders[strings.ToLower(name)]
	return ok
}

// Bound reports whether ids are HMAC-bound rather than equal to the token.
func (r *Resolver) Bound() bool {
	return r != nil && len(r.secret) > 0
}

// Resolve returns the internal id of token. Empty tokens resolve to "".
func (r *Resolver) Resolve(token string, src AttributeSource) string {
	if token == "" {
		return ""
	}
	if !r.Bound() {
		return token
	}

	mac := hmac.New(r.newHash, r.secret)
	mac.Write([]byte(token))
	for _, attr := range r.attributes {
		if src == nil {
			break
		}
		value, ok := src.Attribute(attr)
		if !ok {
			continue
		}
		mac.Write([]byte(value))
	}
	return r.encode(mac.Sum(nil))
}

func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
