package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production [Store] adapter. Records live under
// "<prefix>:s:<ref>" with a per-key TTL; the owner index is a SET under
// "<prefix>:o:<owner>".
//
// Delete intentionally leaves the owner-index member behind: index entries
// whose record is gone are pruned lazily by FindAllByOwner, which keeps the
// revocation path a single DEL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] with the given key prefix. An empty
// prefix defaults to "gs".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gs"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(sessionRef string) string {
	return s.prefix + ":s:" + sessionRef
}

func (s *RedisStore) ownerKey(ownerID string) string {
	return s.prefix + ":o:" + ownerID
}

// Set persists the blob and registers the reference in the owner index.
//
//	Performance: 3 Redis commands in one transaction (SET + SADD + EXPIRE).
func (s *RedisStore) Set(ctx context.Context, ownerID, sessionRef string, data []byte, ttl time.Duration) error {
	if sessionRef == "" {
		return errors.New("empty session ref")
	}

	ownerKey := s.ownerKey(ownerID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionRef), data, ttl)
		pipe.SAdd(ctx, ownerKey, sessionRef)
		// The index must outlive every member. Login and Touch both push
		// its deadline to now+lifetime, which is never earlier than any
		// member's own deadline, so the set dies only after its last
		// session does.
		pipe.Expire(ctx, ownerKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionRef string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(sessionRef)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionRef string) error {
	if err := s.redis.Del(ctx, s.key(sessionRef)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Touch extends the record and drags the owner index along with it. A
// session kept alive by sliding touches can outlive the lifetime granted at
// login, so extending only the record key would let the index expire first
// and make the live session invisible to FindAllByOwner and
// DeleteAllByOwner.
func (s *RedisStore) Touch(ctx context.Context, ownerID, sessionRef string, ttl time.Duration) error {
	ok, err := s.redis.Expire(ctx, s.key(sessionRef), ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := s.redis.Expire(ctx, s.ownerKey(ownerID), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FindAllByOwner loads every indexed blob for the owner. Index members
// whose record no longer exists are pruned (SREM) and excluded from the
// result — the passive half of the lazy-cleanup contract.
func (s *RedisStore) FindAllByOwner(ctx context.Context, ownerID string) ([][]byte, error) {
	refs, err := s.redis.SMembers(ctx, s.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = s.key(ref)
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	out := make([][]byte, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, refs[i])
			continue
		}
		out = append(out, []byte(raw))
	}

	if len(stale) > 0 {
		// Best effort: a failed prune only means the next list pays for
		// the same dead members again.
		_ = s.redis.SRem(ctx, s.ownerKey(ownerID), stale...).Err()
	}

	return out, nil
}

// DeleteAllByOwner removes the owner's sessions and the index in one
// transaction. New sessions created concurrently with the SMembers read may
// survive; that is the documented races-with-login window, not corruption.
func (s *RedisStore) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	ownerKey := s.ownerKey(ownerID)

	refs, err := s.redis.SMembers(ctx, ownerKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ref := range refs {
			pipe.Del(ctx, s.key(ref))
		}
		pipe.Del(ctx, ownerKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
