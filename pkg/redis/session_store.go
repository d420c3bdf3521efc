package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "operator_session:"

var (
	// ErrSessionNotFound is returned for unknown, expired or revoked sessions
	ErrSessionNotFound = errors.New("session not found")
	errSealedTooShort  = errors.New("sealed session too short")
)

// SessionData holds what the server remembers about a signed-in operator
type SessionData struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore keeps operator sessions in redis sealed with AES-256-GCM.
// The session id is the additional data, so a sealed value copied under
// another id does not open.
type SessionStore struct {
	aead cipher.AEAD
}

var (
	setSessionValue = Set
	getSessionValue = Get
	delSessionValue = Del
	readNonce       = rand.Read
)

// NewSessionStore takes the 32 byte key as 64 hex characters
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SessionStore{aead: aead}, nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	plain, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := s.seal(sessionID, plain)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKeyPrefix+sessionID, sealed, expiration)
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (*SessionData, error) {
	sealed, err := getSessionValue(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	plain, err := s.open(sessionID, sealed)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	var data SessionData
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionKeyPrefix+sessionID)
}

// seal returns base64(nonce || ciphertext)
func (s *SessionStore) seal(sessionID string, plain []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := readNonce(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, plain, []byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *SessionStore) open(sessionID, sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, err
	}
	n := s.aead.NonceSize()
	if len(raw) < n+s.aead.Overhead() {
		return nil, errSealedTooShort
	}
	return s.aead.Open(nil, raw[:n], raw[n:], []byte(sessionID))
}
