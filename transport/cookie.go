package transport

import (
	"errors"
	"net/http"
	"time"
)

// CookieConfig configures a [Cookie] transport.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	// TTL sets Max-Age on issued cookies. Ignored when SessionCookie is set.
	TTL time.Duration
	// SessionCookie issues browser-session cookies without Max-Age.
	SessionCookie bool
}

// Cookie is a cookie-backed token transport.
type Cookie struct {
	cfg CookieConfig
}

// NewCookie validates cfg and returns a [Cookie].
func NewCookie(cfg CookieConfig) (*Cookie, error) {
	if cfg.Name == "" {
		return nil, errors.New("transport: cookie name required")
	}
	if !validCookieName(cfg.Name) {
		return nil, errors.New("transport: invalid cookie name")
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &Cookie{cfg: cfg}, nil
}

// Token returns the token carried by r.
func (c *Cookie) Token(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.cfg.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// SetToken issues token to the client.
func (c *Cookie) SetToken(w http.ResponseWriter, _ *http.Request, token string) error {
	ck := c.base()
	ck.Value = token
	if !c.cfg.SessionCookie && c.cfg.TTL > 0 {
		ck.MaxAge = int(c.cfg.TTL / time.Second)
		ck.Expires = time.Now().Add(c.cfg.TTL)
	}
	http.SetCookie(w, ck)
	return nil
}

// ClearToken instructs the client to drop the cookie.
func (c *Cookie) ClearToken(w http.ResponseWriter, _ *http.Request) error {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	http.SetCookie(w, ck)
	return nil
}

func (c *Cookie) base() *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.Name,
		Path:     c.cfg.Path,
		Domain:   c.cfg.Domain,
		Secure:   c.cfg.Secure,
		HttpOnly: c.cfg.HTTPOnly,
		SameSite: c.cfg.SameSite,
	}
}

func validCookieName(name string) bool {
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch <= ' ' || ch >= 0x7f {
			return false
		}
		switch ch {
		case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=', '{', '}':
			return false
		}
	}
	return true
}
