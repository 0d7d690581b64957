package sqlstore

import (
	"context"
	"testing"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStorage(t *testing.T) {
	ctx := context.Background()
	bc := setupTestDB(t).NewContext(ctx)
	defer bc.Close()

	u := &models.User{Username: "testuser", Email: "test@example.com", PasswordHash: "hash"}

	t.Run("Create user", func(t *testing.T) {
		require.NoError(t, bc.Users().Create(ctx, u))
		assert.NotZero(t, u.ID)
		assert.False(t, u.DateCreated.IsZero())
	})

	t.Run("Duplicate username", func(t *testing.T) {
		dup := &models.User{Username: "testuser", Email: "other@example.com", PasswordHash: "hash"}
		err := bc.Users().Create(ctx, dup)
		assert.ErrorIs(t, err, storage.ErrConstraintViolation)
	})

	t.Run("Invalid email", func(t *testing.T) {
		err := bc.Users().Create(ctx, &models.User{Username: "another", Email: "nope"})
		assert.ErrorIs(t, err, storage.ErrConstraintViolation)
	})

	t.Run("Get by id and username", func(t *testing.T) {
		byID, err := bc.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "testuser", byID.Username)
		assert.Equal(t, "hash", byID.PasswordHash)

		byName, err := bc.Users().GetByUsername(ctx, "testuser")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)

		_, err = bc.Users().GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Update keeps password when empty", func(t *testing.T) {
		err := bc.Users().Update(ctx, &models.User{ID: u.ID, Username: "renamed", Email: "new@example.com"})
		require.NoError(t, err)

		stored, err := bc.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", stored.Username)
		assert.Equal(t, "new@example.com", stored.Email)
		assert.Equal(t, "hash", stored.PasswordHash)
	})

	t.Run("Delete user", func(t *testing.T) {
		require.NoError(t, bc.Users().Delete(ctx, u.ID))

		_, err := bc.Users().GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = bc.Users().Delete(ctx, u.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
