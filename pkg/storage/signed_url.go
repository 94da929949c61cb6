package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid file token")
	// ErrTokenExpired is returned once a token's expiry has passed.
	ErrTokenExpired = errors.New("file token expired")
)

// SignedURLSigner issues expiring HMAC tokens that grant read access to one submission file.
type SignedURLSigner struct {
	secret     []byte
	baseURL    string
	defaultTTL time.Duration
	maxTTL     time.Duration
	now        func() time.Time
}

// NewSignedURLSigner constructs a signer. baseURL is the public prefix the token is appended to.
func NewSignedURLSigner(secret, baseURL string, defaultTTL, maxTTL time.Duration) *SignedURLSigner {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	if maxTTL <= 0 {
		maxTTL = 24 * time.Hour
	}
	if defaultTTL > maxTTL {
		defaultTTL = maxTTL
	}
	return &SignedURLSigner{
		secret:     []byte(secret),
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultTTL: defaultTTL,
		maxTTL:     maxTTL,
		now:        time.Now,
	}
}

// EffectiveTTL resolves a requested lifetime: zero means the default, anything above the cap is clamped.
func (s *SignedURLSigner) EffectiveTTL(requested time.Duration) time.Duration {
	if requested <= 0 {
		return s.defaultTTL
	}
	if requested > s.maxTTL {
		return s.maxTTL
	}
	return requested
}

// Sign returns a token for relPath owned by submissionID.
func (s *SignedURLSigner) Sign(submissionID, relPath string, ttl time.Duration) (string, time.Time, error) {
	if submissionID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("submission id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.EffectiveTTL(ttl)).UTC()
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	signature := s.sign(submissionID, exp, encodedPath)
	return strings.Join([]string{submissionID, exp, encodedPath, signature}, "."), expiresAt, nil
}

// URL signs relPath and returns the full download URL.
func (s *SignedURLSigner) URL(submissionID, relPath string, ttl time.Duration) (string, time.Time, error) {
	token, expiresAt, err := s.Sign(submissionID, relPath, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.baseURL + "/" + url.PathEscape(token), expiresAt, nil
}

// Verify checks the token signature and expiry and returns what it grants.
func (s *SignedURLSigner) Verify(token string) (submissionID, relPath string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", ErrInvalidToken
	}
	submissionID, exp, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(submissionID, exp, encodedPath)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", "", ErrTokenExpired
	}
	return submissionID, string(rawPath), nil
}

func (s *SignedURLSigner) sign(submissionID, exp, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(submissionID + "|" + exp + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
