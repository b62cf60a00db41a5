package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sess:"

var ErrNotFound = errors.New("session not found")

// Store maps opaque bearer tokens to user ids in Redis, with a sliding TTL.
type Store struct {
	rdc *redis.Client
	ttl time.Duration
}

func NewStore(rdc *redis.Client, ttl time.Duration) *Store {
	return &Store{rdc: rdc, ttl: ttl}
}

func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.rdc.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup resolves a token and refreshes its TTL.
func (s *Store) Lookup(ctx context.Context, token string) (int64, error) {
	val, err := s.rdc.GetEx(ctx, keyPrefix+token, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *Store) Destroy(ctx context.Context, token string) error {
	return s.rdc.Del(ctx, keyPrefix+token).Err()
}
