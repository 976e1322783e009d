// Package auth handles email/password login and JWT issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/navidved/bulletin/internal/member"
	"github.com/rs/zerolog/log"
)

// ErrInvalidCredentials is returned when the email/password pair does not match a member.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Authenticator verifies member credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*member.Member, error)
}

// Service issues bearer tokens for members.
type Service struct {
	members Authenticator
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewService creates a new auth Service.
func NewService(members Authenticator, secret string, ttl time.Duration) *Service {
	return &Service{members: members, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login checks the credentials and returns a signed JWT whose subject is the member email.
func (s *Service) Login(ctx context.Context, email, password string) (string, *member.Member, error) {
	m, err := s.members.Authenticate(ctx, email, password)
	if errors.Is(err, member.ErrNotFound) {
		log.Debug().Str("email", email).Msg("login rejected")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("authenticate: %w", err)
	}

	token, err := s.issueToken(m)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, m, nil
}

// issueToken creates a signed JWT for the given member.
func (s *Service) issueToken(m *member.Member) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      m.Email,
		"nickName": m.NickName,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
