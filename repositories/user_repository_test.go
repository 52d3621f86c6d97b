package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/database/dbtest"
	"prompteria-api/models"
	"prompteria-api/repositories"
)

func TestCreateWithUniqueName_AppendsSuffixOnCollision(t *testing.T) {
	h, _ := dbtest.OpenHandle(t)
	repo := repositories.NewUserRepository(h)
	ctx := context.Background()

	names := make([]string, 0, 3)
	for _, email := range []string{"ann@a.com", "ann@b.com", "ann@c.com"} {
		user, created, err := repo.CreateWithUniqueName(ctx, &models.User{ID: email, Email: email}, "ann")
		require.NoError(t, err)
		require.True(t, created)
		names = append(names, user.Name)
	}

	assert.Equal(t, []string{"ann", "ann1", "ann2"}, names)
}

func TestCreateWithUniqueName_ExistingEmailReturnsExisting(t *testing.T) {
	h, db := dbtest.OpenHandle(t)
	repo := repositories.NewUserRepository(h)
	seedUser(t, db, "u1")

	user, created, err := repo.CreateWithUniqueName(context.Background(),
		&models.User{ID: "other", Email: "u1@example.com"}, "someone")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "u1", user.ID)
}

func TestFindUser(t *testing.T) {
	h, db := dbtest.OpenHandle(t)
	repo := repositories.NewUserRepository(h)
	ctx := context.Background()
	seedUser(t, db, "u1")

	user, err := repo.FindByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	user, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "name-u1", user.Name)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
