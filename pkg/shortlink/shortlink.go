// Package shortlink maps short ids to display tokens.
//
// Ids are derived from the token itself, so shortening the same token twice
// yields the same id and never overwrites a different token.
package shortlink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/signboard/pkg/cache"
)

// IDLength is the number of hex characters in a short id.
const IDLength = 10

// ErrNotFound is returned by Resolve for an unknown id.
var ErrNotFound = errors.New("short link not found")

var idPattern = regexp.MustCompile(`^[0-9a-f]{10}$`)

// Store persists short links in a cache backend.
type Store struct {
	cache cache.Cache
	keys  cache.Keyer
	ttl   time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithKeyer sets the key builder. Defaults to cache.NewDefaultKeyer().
func WithKeyer(k cache.Keyer) Option {
	return func(s *Store) { s.keys = k }
}

// WithTTL sets how long links are kept. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// NewStore creates a store over c.
func NewStore(c cache.Cache, opts ...Option) *Store {
	s := &Store{cache: c, keys: cache.NewDefaultKeyer()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the short id of token.
func ID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// ValidID reports whether id has the shape of a short id.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Shorten stores token and returns its id.
func (s *Store) Shorten(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("shorten: empty token")
	}
	id := ID(token)
	err := cache.RetryWithBackoff(ctx, func() error {
		return s.cache.Set(ctx, s.keys.LinkKey(id), []byte(token), s.ttl)
	})
	if err != nil {
		return "", fmt.Errorf("store link %s: %w", id, err)
	}
	return id, nil
}

// Resolve returns the token stored under id.
func (s *Store) Resolve(ctx context.Context, id string) (string, error) {
	if !ValidID(id) {
		return "", ErrNotFound
	}
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = s.cache.Get(ctx, s.keys.LinkKey(id))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("resolve link %s: %w", id, err)
	}
	if !hit {
		return "", ErrNotFound
	}
	return string(data), nil
}
