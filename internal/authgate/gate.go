// Package authgate implements the shared-secret login: one secret (the
// couple's special date) unlocks the whole application. There are no
// per-user identities downstream, only an unlocked state represented
// by a short-lived session token.
package authgate

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"
)

// ErrWrongSecret is returned when the entered secret does not match.
var ErrWrongSecret = errors.New("incorrect secret")

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// NewVerifier derives a storable verifier for the secret:
// base64(salt).base64(argon2id(secret, salt)).
func NewVerifier(secret string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(salt) + "." + base64.RawStdEncoding.EncodeToString(key), nil
}

// VerifySecret checks the secret against a verifier produced by
// NewVerifier.
func VerifySecret(secret, verifier string) bool {
	saltPart, keyPart, ok := strings.Cut(verifier, ".")
	if !ok {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(keyPart)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Options configures the gate. Exactly one of Secret or SecretVerifier
// should be set; SecretVerifier wins when both are.
type Options struct {
	// Secret is the plain shared secret, typically the couple's special
	// date kept in config.
	Secret string

	// SecretVerifier is the argon2id verifier form, for deployments
	// that prefer not to keep the plain secret around.
	SecretVerifier string

	// SessionKey signs session tokens (HS256).
	SessionKey []byte

	// SessionTTL bounds how long an unlock lasts.
	SessionTTL time.Duration
}

// Gate holds the unlocked state.
type Gate struct {
	opts Options

	mu    sync.Mutex
	token string
}

func New(opts Options) *Gate {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	return &Gate{opts: opts}
}

// Unlock verifies the entered secret and, on success, issues and
// stores a session token. On mismatch it returns ErrWrongSecret and
// the gate stays locked.
func (g *Gate) Unlock(secret string) (string, error) {
	if !g.matches(secret) {
		return "", ErrWrongSecret
	}
	token, err := issueToken(g.opts.SessionKey, g.opts.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	return token, nil
}

func (g *Gate) matches(secret string) bool {
	if g.opts.SecretVerifier != "" {
		return VerifySecret(secret, g.opts.SecretVerifier)
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(g.opts.Secret)) == 1
}

// Token returns the current session token, or "" while locked or
// after the session expired.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" || !tokenValid(g.token, g.opts.SessionKey) {
		return ""
	}
	return g.token
}

// Unlocked reports whether a valid session exists.
func (g *Gate) Unlocked() bool {
	return g.Token() != ""
}

// Lock discards the session.
func (g *Gate) Lock() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}
