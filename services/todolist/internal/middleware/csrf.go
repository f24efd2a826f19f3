package middleware

import (
	"crypto/subtle"
	"net/http"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware проверяет CSRF-токен (double submit cookie) для state-changing методов
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		csrfCookie, err := r.Cookie(CSRFCookieName)
		if err != nil || csrfCookie.Value == "" {
			forbidden(w, "CSRF token missing in cookies")
			return
		}

		csrfHeader := r.Header.Get(CSRFHeaderName)
		if csrfHeader == "" {
			forbidden(w, "X-CSRF-Token header missing")
			return
		}

		if subtle.ConstantTimeCompare([]byte(csrfCookie.Value), []byte(csrfHeader)) != 1 {
			forbidden(w, "CSRF token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
