package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "fairway"

// Session is an issued admin token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      string    `json:"user"`
}

// AuthService checks admin credentials and issues signed session tokens
type AuthService struct {
	user         string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	log          *zap.Logger
	now          Clock
}

// NewAuthService creates a new AuthService. passwordHash is a bcrypt hash.
func NewAuthService(user, passwordHash, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		user:         user,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		log:          log,
		now:          utcNow,
	}
}

// Enabled reports whether logins can succeed.
func (s *AuthService) Enabled() bool {
	return len(s.secret) > 0 && len(s.passwordHash) > 0
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", invalid("비밀번호를 입력해주세요.")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// Login verifies the admin credentials and returns a signed token.
func (s *AuthService) Login(user, password string) (*Session, error) {
	if !s.Enabled() {
		return nil, notConfigured("관리자 로그인이 설정되지 않았습니다.")
	}
	if user != s.user || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.log.Warn("admin login rejected", zap.String("user", user))
		return nil, &Error{Kind: ErrUnauthorized, Message: "아이디 또는 비밀번호가 올바르지 않습니다."}
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	s.log.Info("admin logged in", zap.String("user", user))
	return &Session{Token: signed, ExpiresAt: exp, User: user}, nil
}

// Verify parses a token and returns its subject.
func (s *AuthService) Verify(token string) (string, error) {
	if !s.Enabled() {
		return "", notConfigured("관리자 로그인이 설정되지 않았습니다.")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		msg := "유효하지 않은 토큰입니다."
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "토큰이 만료되었습니다."
		}
		return "", &Error{Kind: ErrUnauthorized, Message: msg}
	}
	if claims.Subject != s.user {
		return "", &Error{Kind: ErrUnauthorized, Message: "유효하지 않은 토큰입니다."}
	}
	return claims.Subject, nil
}
