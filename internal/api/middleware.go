package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	clientCookie = "citycast_client"
	clientHeader = "X-Client-ID"
	clientMaxAge = 400 * 24 * time.Hour
)

type clientKey struct{}

// BearerAuth returns middleware that validates the Authorization: Bearer <token> header.
// Uses crypto/subtle.ConstantTimeCompare to prevent timing attacks.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			provided, ok := strings.CutPrefix(auth, "Bearer ")

			if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientID identifies the browser a request comes from. The id scopes the
// search history the way local storage is scoped to one browser. A valid
// X-Client-ID header wins over the cookie; a fresh UUID cookie is issued when
// neither is present.
func ClientID(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := validID(r.Header.Get(clientHeader))
			if id == "" {
				if c, err := r.Cookie(clientCookie); err == nil {
					id = validID(c.Value)
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     clientCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(clientMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, id)))
		})
	}
}

// ClientFromContext returns the id stored by ClientID, or "" outside it.
func ClientFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientKey{}).(string)
	return id
}

func validID(v string) string {
	u, err := uuid.Parse(v)
	if err != nil {
		return ""
	}
	return u.String()
}
