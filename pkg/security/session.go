package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session token")

// Session is a freshly signed bearer token
type Session struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

// SessionIssuer signs and parses HS256 bearer tokens. A parsed token is only
// half of the check: the caller still has to find its hash in the token
// table.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

func (s *SessionIssuer) Issue(userID uint) (*Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token, %w", err)
	}

	return &Session{
		Token:     signed,
		Hash:      HashToken(signed),
		ExpiresAt: exp,
	}, nil
}

// Parse checks the signature, algorithm and expiry of raw and returns the
// user ID it was issued for
func (s *SessionIssuer) Parse(raw string) (uint, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidSession
	}

	return uint(id), nil
}

// HashToken is the form a bearer token is stored in
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
