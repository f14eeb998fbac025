package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RevocationStore wraps Redis for the logout deny-list.
// Keys are token digests so raw credentials never sit in Redis.
type RevocationStore struct {
	rdb *redis.Client
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

// Revoke deny-lists token for ttl. A zero ttl keeps the entry forever; a
// negative one is a no-op since the verifier already rejects the token.
func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedPrefix+digest(token), 1, ttl).Err()
}

// IsRevoked reports whether token has been deny-listed.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.rdb.Get(ctx, revokedPrefix+digest(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
