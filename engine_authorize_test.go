package goSession

import (
	"context"
	"testing"
	"time"
)

func TestAuthorizeBadTokenNeverTouchesStore(t *testing.T) {
	engine, store := newCountedEngine(t, nil)
	ctx := context.Background()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		auth, err := engine.Authorize(ctx, tok)
		if err != nil {
			t.Fatalf("authorize returned error for %q: %v", tok, err)
		}
		if auth.Valid {
			t.Fatalf("expected invalid for %q", tok)
		}
		if auth.Reason != ReasonBadToken {
			t.Fatalf("expected %q, got %q", ReasonBadToken, auth.Reason)
		}
	}

	if got := store.gets.Load(); got != 0 {
		t.Fatalf("expected 0 store reads for bad tokens, got %d", got)
	}
}

func TestAuthorizeCacheShieldsStore(t *testing.T) {
	engine, store := newCountedEngine(t, func(cfg *Config) {
		cfg.Session.Sliding = false
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		auth, err := engine.Authorize(ctx, result.Token)
		if err != nil {
			t.Fatalf("authorize %d failed: %v", i, err)
		}
		if !auth.Valid {
			t.Fatalf("authorize %d invalid: %s", i, auth.Reason)
		}
	}

	// Login itself published the record, so within cache TTL every read
	// is served locally.
	if got := store.gets.Load(); got != 0 {
		t.Fatalf("expected 0 store reads within cache TTL, got %d", got)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricCacheHit] != 50 {
		t.Fatalf("expected 50 cache hits, got %d", snap.Counters[MetricCacheHit])
	}
	if snap.Counters[MetricCacheMiss] != 0 {
		t.Fatalf("expected 0 cache misses, got %d", snap.Counters[MetricCacheMiss])
	}
}

func TestAuthorizeCacheDisabledReadsStoreEveryTime(t *testing.T) {
	engine, store := newCountedEngine(t, func(cfg *Config) {
		cfg.Cache.Enabled = false
		cfg.Session.Sliding = false
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		auth, err := engine.Authorize(ctx, result.Token)
		if err != nil {
			t.Fatalf("authorize failed: %v", err)
		}
		if !auth.Valid {
			t.Fatalf("expected valid, got %s", auth.Reason)
		}
	}

	if got := store.gets.Load(); got != n {
		t.Fatalf("expected %d store reads with cache disabled, got %d", n, got)
	}
}

func TestAuthorizeTouchThrottledToOncePerWindow(t *testing.T) {
	engine, store := newCountedEngine(t, func(cfg *Config) {
		cfg.Throttle.Window = time.Minute
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	for i := 0; i < 30; i++ {
		if _, err := engine.Authorize(ctx, result.Token); err != nil {
			t.Fatalf("authorize failed: %v", err)
		}
	}

	if got := store.touches.Load(); got != 1 {
		t.Fatalf("expected exactly 1 touch per window, got %d", got)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTouchSuppressed] != 29 {
		t.Fatalf("expected 29 suppressed touches, got %d", snap.Counters[MetricTouchSuppressed])
	}
}

func TestAuthorizeRotatesExpiredTokenOverLiveSession(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.Token.TTL = time.Second
		cfg.Session.Lifetime = time.Hour
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1", Data: []byte("payload")}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	auth, err := engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if !auth.Valid {
		t.Fatalf("expected rotation to keep session valid, got %s", auth.Reason)
	}
	if auth.NewToken == "" {
		t.Fatal("expected a replacement token")
	}
	if auth.NewToken == result.Token {
		t.Fatal("replacement token must differ")
	}
	if string(auth.Principal.Data) != "payload" {
		t.Fatalf("principal payload lost across rotation: %q", auth.Principal.Data)
	}

	// The replacement verifies as current and does not rotate again.
	auth2, err := engine.Authorize(ctx, auth.NewToken)
	if err != nil {
		t.Fatalf("authorize with rotated token failed: %v", err)
	}
	if !auth2.Valid || auth2.NewToken != "" {
		t.Fatalf("rotated token should be plainly valid, got valid=%v newToken=%q", auth2.Valid, auth2.NewToken)
	}
}

func TestAuthorizeExpiredTokenOverRevokedSessionIsInvalid(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.Token.TTL = time.Second
		cfg.Session.Lifetime = time.Hour
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := engine.Logout(ctx, result.SessionRef); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	auth, err := engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if auth.Valid {
		t.Fatal("revoked session must not rotate")
	}
	if auth.Reason != ReasonSessionRevoked {
		t.Fatalf("expected %q, got %q", ReasonSessionRevoked, auth.Reason)
	}
	if auth.NewToken != "" {
		t.Fatal("no token may be minted for a revoked session")
	}
}

func TestRevocationVisibleImmediatelyOnRevokingProcess(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := engine.Logout(ctx, result.SessionRef); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	auth, err := engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if auth.Valid {
		t.Fatal("logout must evict the local cache entry")
	}
}

func TestRevocationConvergesAfterCacheTTL(t *testing.T) {
	engine, store := newCountedEngine(t, func(cfg *Config) {
		cfg.Cache.TTL = 50 * time.Millisecond
		cfg.Session.Sliding = false
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Delete behind the cache's back, as another process would.
	if err := store.Store.Delete(ctx, result.SessionRef); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	auth, err := engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if !auth.Valid {
		t.Fatal("expected stale-but-valid inside the cache window")
	}

	time.Sleep(80 * time.Millisecond)

	auth, err = engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if auth.Valid {
		t.Fatal("expected revocation to surface after cache TTL")
	}
	if auth.Reason != ReasonSessionRevoked {
		t.Fatalf("expected %q, got %q", ReasonSessionRevoked, auth.Reason)
	}
}

func TestAuthorizeDistinctSessionsAreIndependent(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	a, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login a failed: %v", err)
	}
	b, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login b failed: %v", err)
	}

	if err := engine.Logout(ctx, a.SessionRef); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	authA, err := engine.Authorize(ctx, a.Token)
	if err != nil {
		t.Fatalf("authorize a failed: %v", err)
	}
	if authA.Valid {
		t.Fatal("revoked session a must be invalid")
	}

	authB, err := engine.Authorize(ctx, b.Token)
	if err != nil {
		t.Fatalf("authorize b failed: %v", err)
	}
	if !authB.Valid {
		t.Fatalf("session b must survive a's logout, got %s", authB.Reason)
	}
}
