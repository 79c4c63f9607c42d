package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.user.Register(ctx, &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	// 密码只存散列
	assert.NotEqual(t, "secret123", user.Password)

	loggedIn, err := env.user.Login(ctx, &LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.user.Register(ctx, &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = env.user.Register(ctx, &RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.user.Register(ctx, &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = env.user.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = env.user.Login(ctx, &LoginRequest{Username: "nobody", Password: "secret123"})
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}
