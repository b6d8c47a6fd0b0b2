package middleware

import (
	"context"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

// RefreshedTokenHeader carries the replacement token when the engine
// rotated an expired one. Clients should replace their stored token with
// this value whenever the header is present.
const RefreshedTokenHeader = "X-Refreshed-Token"

type authResultContextKey struct{}

// AuthResultFromContext returns the authorization result Guard stored on
// the request context.
func AuthResultFromContext(ctx context.Context) (*goSession.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goSession.AuthResult)
	return res, ok
}

// Guard returns middleware that authorizes every request through engine.
// Requests without a usable bearer token, or whose session is revoked, get
// a 401. A store outage surfaces as 503 so callers can distinguish a clean
// deny from backend trouble.
func Guard(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := goSession.WithClientIP(r.Context(), clientIP(r))
			ctx = goSession.WithUserAgent(ctx, r.UserAgent())

			res, err := engine.Authorize(ctx, token)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !res.Valid {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if res.NewToken != "" {
				w.Header().Set(RefreshedTokenHeader, res.NewToken)
			}

			ctx = context.WithValue(ctx, authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
