package service

import (
	"context"
	"testing"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()

	alice, err := env.users.CreateUser(ctx, &models.User{Name: " Alice ", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)

	_, err = env.users.CreateUser(ctx, &models.User{Name: "Impostor", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.users.CreateUser(ctx, &models.User{Name: "Bad", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.CreateUser(ctx, &models.User{Name: "", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	bob, err := env.users.CreateUser(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	newName := "Robert"
	updated, err := env.users.UpdateUser(ctx, bob.ID, &newName, nil)
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "bob@example.com", updated.Email)

	taken := "alice@example.com"
	_, err = env.users.UpdateUser(ctx, bob.ID, nil, &taken)
	assert.ErrorIs(t, err, domain.ErrConflict)

	invalid := "robert"
	_, err = env.users.UpdateUser(ctx, bob.ID, nil, &invalid)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.UpdateUser(ctx, 404, &newName, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := env.users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, env.users.DeleteUser(ctx, bob.ID))
	_, err = env.users.GetUser(ctx, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser_StillOwnsItems(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	owner := env.user(t, "owner")
	env.item(t, owner, "Lamp", true)

	err := env.users.DeleteUser(context.Background(), owner.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
