// Package auth guards the coercion service with bearer API keys. Only
// bcrypt hashes of the keys are configured; the keys themselves are handed
// to clients once, when generated.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey = errors.New("invalid API key")
	ErrMissingKey = errors.New("missing API key")
)

// KeyStore validates API keys against bcrypt hashes. Keys that verified once
// are remembered by digest so that bcrypt runs once per key, not per request.
type KeyStore struct {
	hashes   [][]byte
	verified map[[sha256.Size]byte]struct{}
	mu       sync.RWMutex
}

// NewKeyStore builds a store from bcrypt hashes
func NewKeyStore(hashes []string) (*KeyStore, error) {
	ks := &KeyStore{verified: make(map[[sha256.Size]byte]struct{})}
	for i, h := range hashes {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("api key hash %d: %w", i, err)
		}
		ks.hashes = append(ks.hashes, []byte(h))
	}
	return ks, nil
}

// Len returns the number of configured keys
func (ks *KeyStore) Len() int {
	return len(ks.hashes)
}

// Validate checks an API key
func (ks *KeyStore) Validate(key string) error {
	if key == "" {
		return ErrMissingKey
	}
	digest := sha256.Sum256([]byte(key))

	ks.mu.RLock()
	_, ok := ks.verified[digest]
	ks.mu.RUnlock()
	if ok {
		return nil
	}

	for _, h := range ks.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(key)) == nil {
			ks.mu.Lock()
			ks.verified[digest] = struct{}{}
			ks.mu.Unlock()
			return nil
		}
	}
	return ErrInvalidKey
}

// Middleware rejects requests without a valid "Authorization: Bearer <key>"
// header. Paths in open pass through.
func (ks *KeyStore) Middleware(open ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range open {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}
			key, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || ks.Validate(key) != nil {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GenerateAPIKey returns a new random key and its bcrypt hash
func GenerateAPIKey() (key, hash string, err error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate API key: %w", err)
	}
	key = base64.URLEncoding.EncodeToString(keyBytes)

	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return key, string(h), nil
}
