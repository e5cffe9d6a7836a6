package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T, keys ...string) *KeyStore {
	t.Helper()
	var hashes []string
	for _, k := range keys {
		h, err := bcrypt.GenerateFromPassword([]byte(k), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hashes = append(hashes, string(h))
	}
	ks, err := NewKeyStore(hashes)
	if err != nil {
		t.Fatalf("NewKeyStore: %v", err)
	}
	return ks
}

func TestValidate(t *testing.T) {
	ks := newStore(t, "alpha", "beta")

	if err := ks.Validate("beta"); err != nil {
		t.Errorf("beta: %v", err)
	}
	// second call is served from the verified set
	if err := ks.Validate("beta"); err != nil {
		t.Errorf("beta again: %v", err)
	}
	if err := ks.Validate("gamma"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("gamma: expected ErrInvalidKey, got %v", err)
	}
	if err := ks.Validate(""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("empty: expected ErrMissingKey, got %v", err)
	}
}

func TestNewKeyStoreRejectsPlainKeys(t *testing.T) {
	if _, err := NewKeyStore([]string{"not-a-hash"}); err == nil {
		t.Error("expected error for a key that is not a bcrypt hash")
	}
}

func TestMiddleware(t *testing.T) {
	ks := newStore(t, "alpha")
	handler := ks.Middleware("/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"open path", "/health", "", http.StatusOK},
		{"missing header", "/coerce", "", http.StatusUnauthorized},
		{"wrong scheme", "/coerce", "Basic alpha", http.StatusUnauthorized},
		{"wrong key", "/coerce", "Bearer beta", http.StatusUnauthorized},
		{"valid key", "/coerce", "Bearer alpha", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key, hash, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	ks, err := NewKeyStore([]string{hash})
	if err != nil {
		t.Fatalf("NewKeyStore: %v", err)
	}
	if err := ks.Validate(key); err != nil {
		t.Errorf("generated key does not validate: %v", err)
	}
	if len(key) != 44 {
		t.Errorf("key length %d, want 44", len(key))
	}
}
