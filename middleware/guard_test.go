package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

func newGuardedServer(t *testing.T, mutate func(cfg *goSession.Config)) (*goSession.Engine, http.Handler) {
	t.Helper()

	cfg := goSession.DefaultConfig()
	cfg.Token.PrivateKey = []byte("guard-test-secret-0123456789")
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := goSession.New().
		WithConfig(cfg).
		WithStore(session.NewMemoryStore()).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := AuthResultFromContext(r.Context())
		require.True(t, ok, "auth result missing from context")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.Principal.ID))
	}))
	return engine, handler
}

func TestGuardRejectsMissingHeader(t *testing.T) {
	_, handler := newGuardedServer(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardRejectsMalformedHeader(t *testing.T) {
	_, handler := newGuardedServer(t, nil)

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "token"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equalf(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestGuardAllowsValidToken(t *testing.T) {
	engine, handler := newGuardedServer(t, nil)

	result, err := engine.Login(context.Background(), goSession.Principal{ID: "u1"}, goSession.DeviceContext{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
	assert.Empty(t, rec.Header().Get(RefreshedTokenHeader))
}

func TestGuardRejectsRevokedSession(t *testing.T) {
	engine, handler := newGuardedServer(t, nil)

	result, err := engine.Login(context.Background(), goSession.Principal{ID: "u1"}, goSession.DeviceContext{})
	require.NoError(t, err)
	require.NoError(t, engine.Logout(context.Background(), result.SessionRef))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardSurfacesRotatedToken(t *testing.T) {
	engine, handler := newGuardedServer(t, func(cfg *goSession.Config) {
		cfg.Token.TTL = time.Second
		cfg.Session.Lifetime = time.Hour
	})

	result, err := engine.Login(context.Background(), goSession.Principal{ID: "u1"}, goSession.DeviceContext{})
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := rec.Header().Get(RefreshedTokenHeader)
	require.NotEmpty(t, refreshed, "expected rotated token header")
	assert.NotEqual(t, result.Token, refreshed)

	// The rotated token works on the next request without the header.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refreshed)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(RefreshedTokenHeader))
}

func TestGuardNilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
