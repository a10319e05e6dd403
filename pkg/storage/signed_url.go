package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner mints and checks expiring tokens that authorize downloading
// a single stored image. Tokens are handed out by authenticated endpoints and
// redeemed on a tokenized file route, so reference images never need a
// publicly readable directory.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner builds a signer from the shared secret and token TTL.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token granting download access to filename until expiry.
func (s *DownloadSigner) Sign(filename string) (string, time.Time, error) {
	if filename == "" {
		return "", time.Time{}, fmt.Errorf("filename required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(filename))
	token := fmt.Sprintf("%d.%s.%s", expiresAt.Unix(), encoded, s.signature(expiresAt.Unix(), encoded))
	return token, expiresAt, nil
}

// Verify checks the token's signature and expiry and returns the filename it
// grants access to.
func (s *DownloadSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}

	expUnix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid token timestamp")
	}
	if !hmac.Equal([]byte(s.signature(expUnix, parts[1])), []byte(parts[2])) {
		return "", fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("token expired")
	}

	filename, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode filename: %w", err)
	}
	return string(filename), nil
}

func (s *DownloadSigner) signature(expUnix int64, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d|%s", expUnix, encodedName)
	return hex.EncodeToString(mac.Sum(nil))
}
