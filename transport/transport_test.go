package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sessionjwt "github.com/MrEthical07/goSession/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSetAndRead(t *testing.T) {
	c, err := NewCookie(CookieConfig{Name: "sid", Secure: true, HTTPOnly: true, TTL: time.Minute})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, c.SetToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), "abc"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "sid", ck.Name)
	assert.Equal(t, "abc", ck.Value)
	assert.Equal(t, 60, ck.MaxAge)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.Secure)
	assert.True(t, ck.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	token, ok := c.Token(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}

func TestCookieSessionModeOmitsMaxAge(t *testing.T) {
	c, err := NewCookie(CookieConfig{Name: "sid", TTL: time.Minute, SessionCookie: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, c.SetToken(rec, nil, "abc"))
	ck := rec.Result().Cookies()[0]
	assert.Equal(t, 0, ck.MaxAge)
	assert.True(t, ck.Expires.IsZero())
}

func TestCookieClear(t *testing.T) {
	c, err := NewCookie(CookieConfig{Name: "sid"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, c.ClearToken(rec, nil))
	ck := rec.Result().Cookies()[0]
	assert.Equal(t, "sid", ck.Name)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestCookieMissingOrEmpty(t *testing.T) {
	c, err := NewCookie(CookieConfig{Name: "sid"})
	require.NoError(t, err)

	_, ok := c.Token(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: ""})
	_, ok = c.Token(req)
	assert.False(t, ok)
}

func TestCookieNameValidation(t *testing.T) {
	_, err := NewCookie(CookieConfig{})
	require.Error(t, err)
	_, err = NewCookie(CookieConfig{Name: "bad name"})
	require.Error(t, err)
}

func newHeaderTransport(t *testing.T) *Header {
	t.Helper()
	m, err := sessionjwt.NewManager(sessionjwt.Config{SigningMethod: sessionjwt.MethodHS256, PrivateKey: []byte("header-secret")})
	require.NoError(t, err)
	h, err := NewHeader(m)
	require.NoError(t, err)
	return h
}

func TestHeaderRoundTrip(t *testing.T) {
	h := newHeaderTransport(t)

	rec := httptest.NewRecorder()
	require.NoError(t, h.SetToken(rec, nil, "tok"))
	envelope := rec.Header().Get(DefaultResponseHeader)
	require.NotEmpty(t, envelope)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+envelope)
	token, ok := h.Token(req)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	require.NoError(t, h.ClearToken(rec, req))
	assert.Empty(t, rec.Header().Get(DefaultResponseHeader))
}

func TestHeaderRejectsInvalidEnvelope(t *testing.T) {
	h := newHeaderTransport(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	_, ok := h.Token(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = h.Token(req)
	assert.False(t, ok)
}
