package jwtauth

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired signals that a token failed verification only because its
	// expiry passed. Callers map it to the expired-token error.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers every other verification failure.
	ErrInvalid = errors.New("invalid token")
)

// Service signs and verifies the two token kinds. Access tokens carry the user
// id in the subject; refresh tokens carry the id of the stored token record.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type accessClaims struct {
	jwtlib.RegisteredClaims
}

type refreshClaims struct {
	JWTID int64 `json:"jwtId"`
	jwtlib.RegisteredClaims
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// SignAccess issues a short-lived access token for the user.
func (s *Service) SignAccess(userID int64) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// SignRefresh issues a refresh token referencing the stored token record.
func (s *Service) SignRefresh(tokenID int64) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		JWTID: tokenID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseAccess verifies an access token and returns the user id.
func (s *Service) ParseAccess(token string) (int64, error) {
	claims := &accessClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, s.keyFunc)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalid
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return userID, nil
}

// ParseRefresh verifies a refresh token and returns the stored record id.
// Expiry is reported distinctly so callers can surface the expired-token error.
func (s *Service) ParseRefresh(token string) (int64, error) {
	claims := &refreshClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if !parsed.Valid {
		return 0, ErrInvalid
	}
	return claims.JWTID, nil
}

func (s *Service) keyFunc(t *jwtlib.Token) (any, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, ErrInvalid
	}
	return s.secret, nil
}
