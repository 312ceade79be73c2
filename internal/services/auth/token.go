package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized - not a worker token")
	ErrNoSecret     = errors.New("token secret is not configured")
)

const (
	issuer          = "readrepeat"
	workerPrefix    = "worker:"
	workerScope     = "jobs"
	defaultTokenTTL = 30 * 24 * time.Hour
)

// Claims are the claims carried by a worker token
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// WorkerName returns the worker name encoded in the subject
func (c *Claims) WorkerName() string {
	return strings.TrimPrefix(c.Subject, workerPrefix)
}

// Service mints and validates HS256 worker tokens
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. A zero ttl falls back to 30 days.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// Mint issues a token for the named worker
func (s *Service) Mint(workerName string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSecret
	}
	workerName = strings.TrimSpace(workerName)
	if workerName == "" {
		return "", fmt.Errorf("worker name is required")
	}

	now := s.now()
	claims := &Claims{
		Scope: workerScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   workerPrefix + workerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, expiry and scope of a worker token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != workerScope || !strings.HasPrefix(claims.Subject, workerPrefix) || claims.WorkerName() == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
