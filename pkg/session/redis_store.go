package session

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisSessionPrefix   = "session:"
	redisUserIndexPrefix = "usersessions:"

	// touchRetries bounds optimistic-lock retries when concurrent writers
	// race on the same session key.
	touchRetries = 5
)

// RedisStore implements Store on a Redis client. Sessions are stored as JSON
// blobs whose key TTL mirrors expires_at, so Redis reaps expired sessions
// natively. A per-user set indexes session ids for the by-user queries.
//
// Read-modify-write operations (Touch, MergeData) run under WATCH so that
// concurrent writers on the same id serialize; a lost race is retried.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store. See pkg/redis for
// establishing the client connection.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string    { return redisSessionPrefix + id }
func userIndexKey(uid string) string { return redisUserIndexPrefix + uid }

// Insert stores a new session record with a TTL matching its expiry. The
// TTL is computed against the caller's now so that simulated clocks work.
func (r *RedisStore) Insert(ctx context.Context, s *Session, now time.Time) error {
	if s == nil || s.ID == "" || s.UserID == "" {
		return ErrInvalidSession
	}
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return ErrInvalidSession
	}

	blob, err := json.Marshal(s)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), blob, ttl)
	pipe.SAdd(ctx, userIndexKey(s.UserID), s.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Get retrieves a session by identifier. Records reaped by Redis TTL are
// reported as not found.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	blob, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	var s Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return &s, nil
}

// Touch re-extends the expiry under an optimistic lock.
func (r *RedisStore) Touch(ctx context.Context, id string, now, expiresAt time.Time) (bool, error) {
	return r.updateLive(ctx, id, now, func(s *Session) {
		s.LastActivityAt = now
		s.ExpiresAt = expiresAt
	})
}

// MergeData merges kv into the data mapping under an optimistic lock.
func (r *RedisStore) MergeData(ctx context.Context, id string, kv map[string]any, now time.Time) (bool, error) {
	return r.updateLive(ctx, id, now, func(s *Session) {
		if s.Data == nil {
			s.Data = make(map[string]any, len(kv))
		}
		for k, v := range kv {
			s.Data[k] = v
		}
		s.LastActivityAt = now
	})
}

// updateLive applies mutate to a live session inside a WATCH transaction and
// rewrites the blob with a TTL matching the (possibly updated) expiry.
func (r *RedisStore) updateLive(ctx context.Context, id string, now time.Time, mutate func(*Session)) (bool, error) {
	key := sessionKey(id)
	updated := false

	txn := func(tx *redis.Tx) error {
		blob, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}

		var s Session
		if err := json.Unmarshal(blob, &s); err != nil {
			return err
		}
		if s.ExpiredAt(now) {
			return nil
		}

		mutate(&s)
		out, err := json.Marshal(&s)
		if err != nil {
			return err
		}
		ttl := s.ExpiresAt.Sub(now)
		if ttl <= 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, ttl)
			return nil
		})
		if err == nil {
			updated = true
		}
		return err
	}

	for range touchRetries {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // concurrent writer won the race, retry on fresh state
		}
		return false, errors.Join(ErrStorageUnavailable, err)
	}
	return false, errors.Join(ErrStorageUnavailable, redis.TxFailedErr)
}

// Delete removes a session and its user-index entry.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userIndexKey(s.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteExpired prunes user-index entries whose sessions Redis has already
// reaped via TTL. The returned count covers pruned index entries; expired
// blobs themselves never need an explicit sweep on this backend.
func (r *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var pruned int64
	iter := r.client.Scan(ctx, 0, redisUserIndexPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		ids, err := r.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return pruned, errors.Join(ErrStorageUnavailable, err)
		}
		for _, id := range ids {
			exists, err := r.client.Exists(ctx, sessionKey(id)).Result()
			if err != nil {
				return pruned, errors.Join(ErrStorageUnavailable, err)
			}
			if exists == 0 {
				if err := r.client.SRem(ctx, indexKey, id).Err(); err != nil {
					return pruned, errors.Join(ErrStorageUnavailable, err)
				}
				pruned++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, errors.Join(ErrStorageUnavailable, err)
	}
	return pruned, nil
}

// ActiveByUser returns the user's unexpired sessions, newest first.
func (r *RedisStore) ActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	sessions, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := sessions[:0]
	for _, s := range sessions {
		if !s.ExpiredAt(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListByUser returns the user's sessions still present in Redis, newest
// first. Sessions reaped by TTL are no longer listable.
func (r *RedisStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	ids, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	var out []Session
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteByUser removes all of the user's sessions and the index itself.
func (r *RedisStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ids, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}

	var deleted int64
	for _, id := range ids {
		n, err := r.client.Del(ctx, sessionKey(id)).Result()
		if err != nil {
			return deleted, errors.Join(ErrStorageUnavailable, err)
		}
		deleted += n
	}
	if err := r.client.Del(ctx, userIndexKey(userID)).Err(); err != nil {
		return deleted, errors.Join(ErrStorageUnavailable, err)
	}
	return deleted, nil
}

// CountActive counts live session blobs. Expired ones are already gone, so
// every present key counts.
func (r *RedisStore) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	iter := r.client.Scan(ctx, 0, redisSessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, errors.Join(ErrStorageUnavailable, err)
	}
	return n, nil
}
