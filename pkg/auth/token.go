package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Service issues and verifies signed session tokens. The clock is explicit
// so expiry can be tested without sleeping.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func New(cfg *Config) *Service {
	tokenTTL := cfg.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = time.Hour
	}

	return &Service{
		secret:   []byte(cfg.Secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func NewWithClock(cfg *Config, now func() time.Time) *Service {
	service := New(cfg)
	service.now = now

	return service
}

func (s *Service) IssueToken(userID int) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *Service) VerifyToken(tokenString string) (int, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
