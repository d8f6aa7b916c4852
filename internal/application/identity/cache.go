package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "identity:"

// CachedProvider memoizes resolved callers in Redis, keyed by a hash of the token.
// Entries never outlive the token itself.
type CachedProvider struct {
	Next Provider
	Rdb  *redis.Client
	TTL  time.Duration
	Now  func() time.Time
}

func (p *CachedProvider) Resolve(ctx context.Context, token string) (*Caller, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if p.Rdb == nil {
		return p.Next.Resolve(ctx, token)
	}

	key := cacheKey(token)
	if b, err := p.Rdb.Get(ctx, key).Bytes(); err == nil {
		var caller Caller
		if json.Unmarshal(b, &caller) == nil {
			return &caller, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("identity cache read failed")
	}

	caller, err := p.Next.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := p.TTL
	if !caller.ExpiresAt.IsZero() {
		if left := caller.ExpiresAt.Sub(p.now()); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		b, _ := json.Marshal(caller)
		if err := p.Rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("identity cache write failed")
		}
	}
	return caller, nil
}

func (p *CachedProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
