package handler

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// AdminKeyHeader carries the admin key.
const AdminKeyHeader = "api_key"

// AdminGate authenticates admin requests against a shared key. Keys are
// compared as SHA-256 digests in constant time.
type AdminGate struct {
	digest []byte
}

// NewAdminGate creates a gate for key. An empty key lets every request in.
func NewAdminGate(key string) *AdminGate {
	if key == "" {
		return &AdminGate{}
	}
	sum := sha256.Sum256([]byte(key))
	return &AdminGate{digest: sum[:]}
}

// Enabled reports whether a key is configured.
func (g *AdminGate) Enabled() bool {
	return g.digest != nil
}

// Allow reports whether r carries the admin key.
func (g *AdminGate) Allow(r *http.Request) bool {
	if !g.Enabled() {
		return true
	}
	got := sha256.Sum256([]byte(r.Header.Get(AdminKeyHeader)))
	return subtle.ConstantTimeCompare(got[:], g.digest) == 1
}

// Wrap rejects requests without the admin key with 401.
func (g *AdminGate) Wrap(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}
