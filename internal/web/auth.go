package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const tokenCookie = "quire_token"

// NewToken returns a random URL-safe access token.
func NewToken() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func requestToken(r *http.Request) (tok string, fromQuery bool) {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v), false
		}
	}
	if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
		return q, true
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return strings.TrimSpace(c.Value), false
	}
	return "", false
}

// withAuth requires the configured token. A token passed as ?token= is moved into a cookie so
// the page's own requests (exports, websocket) carry it.
func (s *Server) withAuth(next http.Handler) http.Handler {
	want := []byte(s.cfg.Token)
	if len(want) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, fromQuery := requestToken(r)
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			writeError(w, http.StatusUnauthorized, errors.New("missing or invalid token"))
			return
		}
		if fromQuery {
			http.SetCookie(w, &http.Cookie{
				Name:     tokenCookie,
				Value:    got,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}
		next.ServeHTTP(w, r)
	})
}
