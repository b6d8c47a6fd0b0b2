package goSession

import (
	"context"
	"testing"
)

func BenchmarkAuthorizeCached(b *testing.B) {
	engine := newTestEngine(b, nil)

	result, err := engine.Login(context.Background(), Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		auth, err := engine.Authorize(context.Background(), result.Token)
		if err != nil {
			b.Fatalf("authorize failed: %v", err)
		}
		if !auth.Valid {
			b.Fatalf("unexpected invalid: %s", auth.Reason)
		}
	}
}

func BenchmarkAuthorizeColdStore(b *testing.B) {
	engine := newTestEngine(b, func(cfg *Config) {
		cfg.Cache.Enabled = false
		cfg.Session.Sliding = false
	})

	result, err := engine.Login(context.Background(), Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		auth, err := engine.Authorize(context.Background(), result.Token)
		if err != nil {
			b.Fatalf("authorize failed: %v", err)
		}
		if !auth.Valid {
			b.Fatalf("unexpected invalid: %s", auth.Reason)
		}
	}
}

func BenchmarkAuthorizeBadToken(b *testing.B) {
	engine := newTestEngine(b, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		auth, err := engine.Authorize(context.Background(), "not.a.token")
		if err != nil {
			b.Fatalf("authorize failed: %v", err)
		}
		if auth.Valid {
			b.Fatal("expected invalid")
		}
	}
}

func BenchmarkLoginLogout(b *testing.B) {
	engine := newTestEngine(b, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := engine.Login(context.Background(), Principal{ID: "u1"}, DeviceContext{})
		if err != nil {
			b.Fatalf("login failed: %v", err)
		}
		if err := engine.Logout(context.Background(), result.SessionRef); err != nil {
			b.Fatalf("logout failed: %v", err)
		}
	}
}
