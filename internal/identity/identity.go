// Package identity normalises the caller-supplied identifiers the relay keys state on.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"regexp"
)

var sessionKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// hashedKeyPrefix marks keys derived from ids outside sessionKeyPattern.
const hashedKeyPrefix = "sha256-"

// SessionKey maps a caller-supplied session id to the key session state is
// stored under. An empty id maps to fallback. Well-formed ids are used as is;
// any other id is replaced by a digest of its exact bytes, so distinct ids
// always get distinct keys and every key is safe to log or use as a file name.
// Callers are anonymous; the key only separates conversations, it does not
// authenticate them.
func SessionKey(id, fallback string) string {
	if id == "" {
		return fallback
	}
	if sessionKeyPattern.MatchString(id) {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return hashedKeyPrefix + hex.EncodeToString(sum[:])
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
