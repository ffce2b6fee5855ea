package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"

	jwtClaimRole = "role"
)

type AuthService interface {
	// Login checks the admin password and issues a signed token.
	Login(ctx context.Context, password string) (string, time.Time, error)
	// ParseToken validates a token and returns its role claim.
	ParseToken(tokenString string) (string, error)
}

type authService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(passwordHash string, jwtSecret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if password == "" || len(s.passwordHash) == 0 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("ошибка проверки пароля: %w", err)
	}

	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		jwtClaimRole: RoleAdmin,
		"exp":        expires.Unix(),
		"iat":        now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

func (s *authService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrAuthenticationFailed
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrAuthenticationFailed
	}
	role, _ := claims[jwtClaimRole].(string)
	if role == "" {
		return "", ErrAuthenticationFailed
	}
	return role, nil
}
