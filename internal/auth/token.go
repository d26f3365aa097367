package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

// Tokens issues and verifies HS256 admin tokens. Tokens revoked before they
// expire are remembered until their expiry.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	revoked map[string]time.Time
	mutex   sync.Mutex
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue returns a signed token for user valid for the configured ttl.
func (t *Tokens) Issue(user string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// VerifyToken returns the user a valid, unrevoked token was issued to.
func (t *Tokens) VerifyToken(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.revoked[claims.ID]; ok {
		return "", ErrRevokedToken
	}
	return claims.Subject, nil
}

// Revoke invalidates a token before its expiry.
func (t *Tokens) Revoke(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// Expire forgets revoked tokens that have expired anyway and returns how
// many are still remembered.
func (t *Tokens) Expire() uint {
	var count uint
	now := t.now()
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for id, expiry := range t.revoked {
		count++
		if now.After(expiry) {
			delete(t.revoked, id)
			count--
		}
	}
	return count
}

// ExpiryRunner calls Expire every interval until ctx is done.
func (t *Tokens) ExpiryRunner(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Expire()
		}
	}
}
