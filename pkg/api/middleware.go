package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimit rejects requests once the limiter is exhausted. Only the lookup
// routes go through it.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithField("path", r.URL.Path).Warn("lookup rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				sendError(w, http.StatusTooManyRequests, msgTooManyLookups)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type userKey struct{}

// requestUser returns the identity the auth middleware accepted, or "" when
// the server runs without authentication.
func requestUser(r *http.Request) string {
	user, _ := r.Context().Value(userKey{}).(string)
	return user
}

func withUser(r *http.Request, user string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, user))
}

// authenticate builds the sign-in gate. A configured identity header takes
// precedence over basic auth users. With neither configured, nil is returned
// and requests pass through.
func authenticate(opts Options) func(http.Handler) http.Handler {
	switch {
	case opts.IdentityHeader != "":
		return identityHeader(opts.IdentityHeader)
	case len(opts.Users) > 0:
		return basicAuth(opts.Users)
	default:
		return nil
	}
}

// identityHeader trusts a header set by an authenticating reverse proxy.
func identityHeader(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(header))
			if user == "" {
				log.WithField("path", r.URL.Path).Warnf("missing %s header", header)
				sendError(w, http.StatusUnauthorized, msgSignIn)
				return
			}
			next.ServeHTTP(w, withUser(r, user))
		})
	}
}

func basicAuth(users map[string]string) func(http.Handler) http.Handler {
	check := middleware.BasicAuth(authRealm, users)
	return func(next http.Handler) http.Handler {
		return check(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _, _ := r.BasicAuth()
			next.ServeHTTP(w, withUser(r, user))
		}))
	}
}
