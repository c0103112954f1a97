package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches JavaScript's Date.prototype.toISOString output.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t in UTC with millisecond precision and a Z suffix.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO accepts RFC 3339 timestamps with or without fractional seconds.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// EpochMillisToISO converts an epoch-milliseconds value (number or numeric
// string) to an ISO timestamp. Zero and unparseable values yield "".
func EpochMillisToISO(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return ""
		}
		ms = int64(f)
	}
	if ms == 0 {
		return ""
	}
	return FormatISO(time.UnixMilli(ms))
}

// ShortHash returns the first 16 hex characters of the SHA-256 of data.
func ShortHash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:16]
}
