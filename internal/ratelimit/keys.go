package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

// IdentityKind says what an identity string refers to.
type IdentityKind string

const (
	KindIP   IdentityKind = "ip"
	KindUser IdentityKind = "user"
)

// Identity is the key a limiter operates on: a client IP or a user id.
type Identity struct {
	Kind  IdentityKind
	Value string
}

func (i Identity) String() string {
	return string(i.Kind) + ":" + i.Value
}

// Window is a fixed time bucket a counter is bounded within.
type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
	WindowDay    Window = "day"
)

func (w Window) Duration() time.Duration {
	switch w {
	case WindowMinute:
		return time.Minute
	case WindowHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// Key namespaces shared between enforcement and the admin surface. The
// admin handlers read and delete the exact keys the limiter writes, so
// all key construction lives here.
const (
	banPrefix       = "rate:ban:"
	violationPrefix = "rate:viol:"
	requestPrefix   = "rate:req:"
	quotaPrefix     = "rl:op:"
)

// BanKey builds the key holding an active ban for an identity.
func BanKey(id Identity) string {
	return banPrefix + string(id.Kind) + ":" + id.Value
}

// ViolationKey builds the key counting recent violations for an identity.
func ViolationKey(id Identity) string {
	return violationPrefix + string(id.Kind) + ":" + id.Value
}

// RequestKey builds the bucketed key counting requests for an identity in
// the window containing now. The bucket number is baked into the key so a
// fresh window always starts from a fresh key.
func RequestKey(id Identity, w Window, now time.Time) string {
	bucket := now.Unix() / int64(w.Duration().Seconds())
	return fmt.Sprintf("%s%s:%s:%s:%d", requestPrefix, id.Kind, id.Value, w, bucket)
}

// QuotaMinuteKey builds the per-operation minute quota key for a user.
func QuotaMinuteKey(operation, userID string) string {
	return fmt.Sprintf("%s%s:user:%s:minute", quotaPrefix, operation, userID)
}

// QuotaDayKey builds the per-operation day quota key for a user. The UTC
// calendar date is part of the key, so daily quotas reset at UTC midnight.
func QuotaDayKey(operation, userID string, now time.Time) string {
	return fmt.Sprintf("%s%s:user:%s:day:%s", quotaPrefix, operation, userID, now.UTC().Format("20060102"))
}

// ParseLedgerKey recovers the identity from a ban or violation key. Used by
// the admin listings after a prefix scan.
func ParseLedgerKey(key string) (Identity, error) {
	rest := ""
	switch {
	case strings.HasPrefix(key, banPrefix):
		rest = strings.TrimPrefix(key, banPrefix)
	case strings.HasPrefix(key, violationPrefix):
		rest = strings.TrimPrefix(key, violationPrefix)
	default:
		return Identity{}, fmt.Errorf("not a ledger key: %q", key)
	}

	kind, value, ok := strings.Cut(rest, ":")
	if !ok || value == "" {
		return Identity{}, fmt.Errorf("malformed ledger key: %q", key)
	}

	switch IdentityKind(kind) {
	case KindIP, KindUser:
		return Identity{Kind: IdentityKind(kind), Value: value}, nil
	default:
		return Identity{}, fmt.Errorf("unknown identity kind %q in key %q", kind, key)
	}
}

// ParseKind validates a kind string from an administrative request path.
func ParseKind(s string) (IdentityKind, error) {
	switch IdentityKind(s) {
	case KindIP, KindUser:
		return IdentityKind(s), nil
	default:
		return "", fmt.Errorf("invalid identity kind %q (must be ip or user)", s)
	}
}
