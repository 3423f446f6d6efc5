package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
)

// Errors
var (
	ErrTokenRequired = errors.New("admin token required")
	ErrInvalidToken  = errors.New("invalid admin token")
)

// Config holds configuration for the auth service
type Config struct {
	// TokenHash is the bcrypt hash of the admin token. Empty disables the check.
	TokenHash string
	// CacheDuration is how long a verified token skips the bcrypt comparison
	CacheDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		CacheDuration: 10 * time.Minute,
	}
}

// Service checks the shared admin token that guards write routes
type Service struct {
	hash  []byte
	clock clock.Clock

	mu            sync.RWMutex
	verified      map[string]time.Time // sha256(token) -> expiry
	cacheDuration time.Duration
}

// New creates a new auth Service. A malformed hash is rejected.
func New(cfg Config, clock clock.Clock) (*Service, error) {
	if cfg.CacheDuration == 0 {
		cfg.CacheDuration = DefaultConfig().CacheDuration
	}
	s := &Service{
		clock:         clock,
		verified:      make(map[string]time.Time),
		cacheDuration: cfg.CacheDuration,
	}
	if cfg.TokenHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.TokenHash)); err != nil {
			return nil, fmt.Errorf("invalid admin token hash: %w", err)
		}
		s.hash = []byte(cfg.TokenHash)
	}
	return s, nil
}

// Enabled reports whether admin routes require a token
func (s *Service) Enabled() bool {
	return len(s.hash) > 0
}

// Verify checks token against the configured hash
func (s *Service) Verify(token string) error {
	if !s.Enabled() {
		return nil
	}
	if token == "" {
		return ErrTokenRequired
	}

	key := fingerprint(token)
	now := s.clock.Now()

	s.mu.RLock()
	expiry, ok := s.verified[key]
	s.mu.RUnlock()
	if ok && now.Before(expiry) {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(token)); err != nil {
		return ErrInvalidToken
	}

	s.mu.Lock()
	s.verified[key] = now.Add(s.cacheDuration)
	s.mu.Unlock()
	return nil
}

// CleanExpired drops verified tokens whose cache entry has expired (call periodically)
func (s *Service) CleanExpired() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, expiry := range s.verified {
		if !now.Before(expiry) {
			delete(s.verified, key)
			removed++
		}
	}
	return removed
}

// HashToken returns the bcrypt hash to configure for token
func HashToken(token string, cost int) (string, error) {
	if token == "" {
		return "", ErrTokenRequired
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken returns a new random admin token
func GenerateToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return "plt_" + base64.RawURLEncoding.EncodeToString(b)
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
