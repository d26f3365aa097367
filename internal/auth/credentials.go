// Package auth checks the admin credential and issues the JWTs that guard the
// admin API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the admin password used when none is configured.
const DefaultPassword = "admin123"

// Credentials is the single admin account of the site.
type Credentials struct {
	username string
	hash     []byte
}

// NewCredentials builds the admin credential from a bcrypt hash or, when no
// hash is given, from a plain password hashed here. With neither,
// DefaultPassword is used.
func NewCredentials(username, passwordHash, password string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("credentials: empty username")
	}

	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("credentials: bad password hash: %w", err)
		}
		return &Credentials{username: username, hash: []byte(passwordHash)}, nil
	}

	if password == "" {
		password = DefaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	return &Credentials{username: username, hash: hash}, nil
}

func (c *Credentials) Username() string {
	return c.username
}

func (c *Credentials) Verify(username string, password []byte) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, password) == nil
	return userOK && passOK
}

// HashPassword returns the bcrypt hash to put in auth.password_hash.
func HashPassword(password []byte) (string, error) {
	if len(password) == 0 {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
