// Package codes stores signup confirmation codes. Codes are short-lived,
// bcrypt-hashed and keyed by user ID in Redis, so issuing a new code for a
// user implicitly invalidates the previous one and a verified code cannot
// be replayed.
package codes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"titlehub/internal/apperror"
)

const codeLength = 6

type Store interface {
	// Issue generates a fresh code for the user, overwriting any
	// outstanding one, and returns the plaintext for delivery.
	Issue(ctx context.Context, userID string) (string, error)
	// Verify checks the code and consumes it on success. Mismatched,
	// expired and never-issued codes all fail with apperror.Unauthorized.
	Verify(ctx context.Context, userID, code string) error
}

type redisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		client:    client,
		keyPrefix: "titlehub:confirmation",
		ttl:       ttl,
	}
}

func (s *redisStore) Issue(ctx context.Context, userID string) (string, error) {
	code, err := generateNumericCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), hash, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}
	return code, nil
}

func (s *redisStore) Verify(ctx context.Context, userID, code string) error {
	key := s.key(userID)
	hash, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperror.Unauthorized("confirmation code is invalid or expired")
	}
	if err != nil {
		return fmt.Errorf("load confirmation code: %w", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
		return apperror.Unauthorized("confirmation code is invalid or expired")
	}
	// single use
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume confirmation code: %w", err)
	}
	return nil
}

func (s *redisStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, userID)
}

func generateNumericCode(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
