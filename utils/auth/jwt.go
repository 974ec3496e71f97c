package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an access token stays valid (8 days)
const DefaultTokenTTL = 8 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// JWTManager issues and resolves HS256 access tokens whose subject is the user id
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	if config.Expiry <= 0 {
		config.Expiry = DefaultTokenTTL
	}
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// Expiry returns the default token lifetime
func (j *JWTManager) Expiry() time.Duration {
	return j.config.Expiry
}

// IssueToken signs a token for subjectID. A non-positive ttl uses the configured default.
func (j *JWTManager) IssueToken(subjectID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = j.config.Expiry
	}
	now := j.now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(subjectID), 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    j.config.Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.Secret))
}

// ResolveToken verifies tokenString and returns the subject user id
func (j *JWTManager) ResolveToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
