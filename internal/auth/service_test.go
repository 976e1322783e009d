package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/navidved/bulletin/internal/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (*member.Member, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, email, password string) (*member.Member, error) {
	return m.AuthenticateFunc(ctx, email, password)
}

func TestLoginIssuesToken(t *testing.T) {
	members := &MockAuthenticator{
		AuthenticateFunc: func(_ context.Context, email, _ string) (*member.Member, error) {
			return &member.Member{Email: email, NickName: "kim"}, nil
		},
	}
	svc := NewService(members, "secret", time.Hour)

	token, m, err := svc.Login(context.Background(), "kim@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", m.Email)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "kim@example.com", claims["sub"])
	assert.Equal(t, "kim", claims["nickName"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	members := &MockAuthenticator{
		AuthenticateFunc: func(context.Context, string, string) (*member.Member, error) {
			return nil, member.ErrNotFound
		},
	}
	_, _, err := NewService(members, "secret", time.Hour).Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStoreFailure(t *testing.T) {
	boom := errors.New("db down")
	members := &MockAuthenticator{
		AuthenticateFunc: func(context.Context, string, string) (*member.Member, error) {
			return nil, boom
		},
	}
	_, _, err := NewService(members, "secret", time.Hour).Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
