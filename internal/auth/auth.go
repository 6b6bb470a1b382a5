// Package auth hashes passwords and keeps login sessions.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 6

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports core.ErrInvalidCredentials when password does not match hash.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return core.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

type Session struct {
	UserID    int64
	CreatedAt time.Time
}

// Sessions maps opaque tokens to logged-in users.
type Sessions struct {
	store *cache.LRUCache[Session]
}

func NewSessions(store *cache.LRUCache[Session]) *Sessions {
	return &Sessions{store: store}
}

// Create starts a session for userID and returns its token.
func (s *Sessions) Create(userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	s.store.Set(token, Session{UserID: userID, CreatedAt: time.Now()})
	return token, nil
}

func (s *Sessions) Lookup(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	return s.store.Get(token)
}

func (s *Sessions) Revoke(token string) {
	s.store.Delete(token)
}

// RevokeUser ends every session of userID.
func (s *Sessions) RevokeUser(userID int64) int {
	return s.store.DeleteFunc(func(sess Session) bool { return sess.UserID == userID })
}
