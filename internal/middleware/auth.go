package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AdminKey guards admin routes with shared keys. keys is comma separated so an
// old and a new key can both be accepted while clients rotate. An empty list
// leaves the routes open.
func AdminKey(keys string, logger *zap.Logger) func(http.Handler) http.Handler {
	accepted := parseKeys(keys)

	return func(next http.Handler) http.Handler {
		if len(accepted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || matchesAny(accepted, presentedKey(r)) {
				next.ServeHTTP(w, r)
				return
			}
			logger.Warn("admin request rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", GetRequestID(r.Context())),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "Unauthorized"})
		})
	}
}

func parseKeys(keys string) [][]byte {
	var out [][]byte
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

// presentedKey reads X-API-Key, then a Bearer token.
func presentedKey(r *http.Request) []byte {
	if s := strings.TrimSpace(r.Header.Get("X-API-Key")); s != "" {
		return []byte(s)
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return []byte(strings.TrimSpace(token))
	}
	return nil
}

// matchesAny compares against every key so timing does not reveal which one
// matched.
func matchesAny(accepted [][]byte, got []byte) bool {
	if len(got) == 0 {
		return false
	}
	match := 0
	for _, k := range accepted {
		match |= subtle.ConstantTimeCompare(k, got)
	}
	return match == 1
}
