package idempotency

import (
	"fmt"
	"strings"
)

// maxKeyLength bounds client-supplied keys. The composite (principal, key) pair
// is a primary key, so unbounded input would let clients bloat the index.
const maxKeyLength = 50

// Key is a validated idempotency key. Any Key in circulation already satisfies
// the validation rules, so callers never need to re-check the raw string.
type Key struct {
	value string
}

// ParseKey is the only way to obtain a Key. It rejects empty or whitespace-only
// input, input longer than 50 characters, and anything outside ASCII
// alphanumerics and hyphen.
func ParseKey(raw string) (Key, error) {
	if strings.TrimSpace(raw) == "" {
		return Key{}, &ValidationError{Reason: "idempotency key must not be empty"}
	}
	if len(raw) > maxKeyLength {
		return Key{}, &ValidationError{Reason: fmt.Sprintf("idempotency key exceeds %d characters", maxKeyLength)}
	}
	for _, r := range raw {
		if !isAllowedKeyRune(r) {
			return Key{}, &ValidationError{Reason: fmt.Sprintf("idempotency key contains disallowed character %q", r)}
		}
	}
	return Key{value: raw}, nil
}

// String exposes the underlying value for storage and lookup.
func (k Key) String() string {
	return k.value
}

func isAllowedKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	default:
		return false
	}
}

// ValidationError reports a malformed idempotency key. Handlers map it to a
// client error; it is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
