package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const sessionFormatVersionCurrent = 1

// ErrCorruptRecord is returned when a stored blob cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt session record")

// Encode serializes s with a leading format version byte.
func Encode(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, sessionFormatVersionCurrent)
	out = append(out, body...)
	return out, nil
}

// Decode parses a blob produced by [Encode].
func Decode(data []byte) (*Session, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: short blob", ErrCorruptRecord)
	}
	if data[0] != sessionFormatVersionCurrent {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, data[0])
	}

	var s Session
	if err := json.Unmarshal(data[1:], &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &s, nil
}
