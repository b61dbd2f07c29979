package session

import "errors"

// ErrInvalidSession is returned when a record is not a well-formed session.
var ErrInvalidSession = errors.New("invalid session")

// Credentials is the opaque, object-shaped payload attached to an authenticated session.
type Credentials map[string]any

// Session is the stored authentication state of one internal id.
type Session struct {
	Authenticated bool        `json:"authenticated"`
	Credentials   Credentials `json:"credentials"`
}

// Anonymous returns an unauthenticated session.
func Anonymous() *Session {
	return &Session{}
}

// Validate reports whether s is well formed. An authenticated session must carry
// credentials.
func (s *Session) Validate() error {
	if s == nil {
		return ErrInvalidSession
	}
	if s.Authenticated && s.Credentials == nil {
		return errors.Join(ErrInvalidSession, errors.New("authenticated session requires credentials"))
	}
	return nil
}

// Clone returns a copy whose credential map can be modified independently.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Authenticated: s.Authenticated}
	if s.Credentials != nil {
		out.Credentials = make(Credentials, len(s.Credentials))
		for k, v := range s.Credentials {
			out.Credentials[k] = v
		}
	}
	return out
}
