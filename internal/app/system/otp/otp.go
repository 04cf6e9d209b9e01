// Package otp implements the one-time-code lifecycle: generation of
// login codes and pure validation of a submitted code against the stored
// code and expiry. It does no I/O; stores and handlers own persistence.
package otp

import (
	"crypto/rand"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// CodeLength is the length of the login code (6 digits).
	CodeLength = 6
	// Lifetime is how long a code is valid after generation. Fixed, not
	// configurable per call.
	Lifetime = 5 * time.Minute
)

// Reason classifies why verification failed. Empty on success.
type Reason string

const (
	ReasonMissing           Reason = "missing"
	ReasonMismatch          Reason = "mismatch"
	ReasonExpired           Reason = "expired"
	ReasonInvalidExpiration Reason = "invalid-expiration"
)

// Result is the outcome of a Verify call.
type Result struct {
	Valid  bool
	Reason Reason
}

// Verify checks a submitted code against the stored code and expiry.
//
// The comparison is an exact string compare with no normalization; the
// code is short-lived and single-use, so a constant-time compare buys
// nothing here, but callers adding long-lived secrets should not reuse
// this.
//
// expiresAt tolerates the representations the store may hand back for a
// date field: time.Time, *time.Time, primitive.DateTime, an RFC 3339
// string, or unix milliseconds. Anything else fails closed with
// ReasonInvalidExpiration.
func Verify(entered, stored string, expiresAt any, now time.Time) Result {
	if entered == "" || stored == "" {
		return Result{Reason: ReasonMissing}
	}
	if entered != stored {
		return Result{Reason: ReasonMismatch}
	}

	exp, ok := toInstant(expiresAt)
	if !ok {
		return Result{Reason: ReasonInvalidExpiration}
	}
	if now.After(exp) {
		return Result{Reason: ReasonExpired}
	}
	return Result{Valid: true}
}

// toInstant collapses the accepted expiry representations to one instant.
func toInstant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case primitive.DateTime:
		return t.Time(), true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case int64:
		return time.UnixMilli(t), true
	default:
		return time.Time{}, false
	}
}

// Generate returns a fresh 6-digit code and its expiry instant.
//
// The code is uniformly random in 100000–999999. Codes with a leading
// zero are deliberately not produced, matching what existing clients
// already accept. Panics if the system's cryptographic random number
// generator fails.
func Generate(now time.Time) (code string, expiresAt time.Time) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	code = fmt.Sprintf("%06d", (n%900000)+100000)
	return code, now.Add(Lifetime)
}
