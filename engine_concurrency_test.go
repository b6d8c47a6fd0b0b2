package goSession

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// Authorize racing Logout on the same session must always resolve to a
// clean outcome: valid, or invalid with the revoked reason. The cache is
// disabled so every read hits the store and the post-race state is
// deterministic.
func TestConcurrentAuthorizeAndLogoutSharedSession(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.Cache.Enabled = false
	})
	ctx := context.Background()

	result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n + 1)

	results := make(chan error, n+1)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			auth, err := engine.Authorize(ctx, result.Token)
			if err != nil {
				results <- fmt.Errorf("authorize error: %w", err)
				return
			}
			if !auth.Valid && auth.Reason != ReasonSessionRevoked {
				results <- fmt.Errorf("unexpected invalid reason %q", auth.Reason)
				return
			}
			results <- nil
		}()
	}
	go func() {
		defer wg.Done()
		results <- engine.Logout(ctx, result.SessionRef)
	}()
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("race produced unexpected outcome: %v", err)
		}
	}

	auth, err := engine.Authorize(ctx, result.Token)
	if err != nil {
		t.Fatalf("authorize after logout failed: %v", err)
	}
	if auth.Valid {
		t.Fatal("session must stay revoked once Logout returned")
	}
}

// LogoutAll racing Authorize across many sessions: the revoked owner's
// sessions end up invalid, another owner's session is untouched, and no
// interleaving surfaces as an error.
func TestConcurrentAuthorizeAndLogoutAllDistinctSessions(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.Cache.Enabled = false
	})
	ctx := context.Background()

	const sessions = 8
	tokens := make([]string, sessions)
	for i := range tokens {
		result, err := engine.Login(ctx, Principal{ID: "u1"}, DeviceContext{})
		if err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
		tokens[i] = result.Token
	}
	other, err := engine.Login(ctx, Principal{ID: "u2"}, DeviceContext{})
	if err != nil {
		t.Fatalf("login for second owner failed: %v", err)
	}

	const rounds = 4
	var wg sync.WaitGroup
	wg.Add(sessions*rounds + 1)

	results := make(chan error, sessions*rounds+1)
	for r := 0; r < rounds; r++ {
		for i := 0; i < sessions; i++ {
			token := tokens[i]
			go func() {
				defer wg.Done()
				auth, err := engine.Authorize(ctx, token)
				if err != nil {
					results <- fmt.Errorf("authorize error: %w", err)
					return
				}
				if !auth.Valid && auth.Reason != ReasonSessionRevoked {
					results <- fmt.Errorf("unexpected invalid reason %q", auth.Reason)
					return
				}
				results <- nil
			}()
		}
	}
	go func() {
		defer wg.Done()
		results <- engine.LogoutAll(ctx, "u1")
	}()
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("race produced unexpected outcome: %v", err)
		}
	}

	for i, token := range tokens {
		auth, err := engine.Authorize(ctx, token)
		if err != nil {
			t.Fatalf("authorize %d after logout all failed: %v", i, err)
		}
		if auth.Valid {
			t.Fatalf("session %d must stay revoked once LogoutAll returned", i)
		}
	}
	auth, err := engine.Authorize(ctx, other.Token)
	if err != nil {
		t.Fatalf("authorize for second owner failed: %v", err)
	}
	if !auth.Valid {
		t.Fatalf("second owner must be unaffected, got reason %q", auth.Reason)
	}
}
