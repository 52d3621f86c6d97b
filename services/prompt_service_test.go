package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/cache"
	"prompteria-api/logger"
	"prompteria-api/metrics"
	"prompteria-api/models"
	"prompteria-api/services"
)

func TestPromptService_CreateNormalizesTags(t *testing.T) {
	prompts, _, db := setupStore(t)
	seedUser(t, db, "u1")
	listCache := newCountingCache()
	svc := services.NewPromptService(prompts, listCache, logger.NewNop())

	resp, err := svc.Create(context.Background(), "u1", models.PromptRequest{
		Prompt: "  Summarise this thread  ",
		Tag:    []string{"#writing", " tone "},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Summarise this thread", resp.Prompt)
	assert.Equal(t, []string{"writing", "tone"}, resp.Tag)
	assert.Empty(t, resp.Likes)
	assert.Zero(t, resp.Views)
	require.NotNil(t, resp.Creator)
	assert.Equal(t, "u1", resp.Creator.ID)
	assert.Equal(t, 1, listCache.Invalidations())
}

func TestPromptService_CreateValidation(t *testing.T) {
	prompts, _, _ := setupStore(t)
	svc := services.NewPromptService(prompts, cache.NopListCache{}, logger.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "", models.PromptRequest{Prompt: "x", Tag: []string{"a"}})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.Create(ctx, "u1", models.PromptRequest{Prompt: "  ", Tag: []string{"a"}})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", models.PromptRequest{Prompt: "x"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", models.PromptRequest{Prompt: "x", Tag: []string{"a", "#"}})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestPromptService_UpdateAndDeleteRequireCreator(t *testing.T) {
	prompts, _, db := setupStore(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "other")
	seedPrompt(t, db, "p1", "owner", baseTime, "old")
	svc := services.NewPromptService(prompts, cache.NopListCache{}, logger.NewNop())
	ctx := context.Background()
	req := models.PromptRequest{Prompt: "new", Tag: []string{"fresh"}}

	_, err := svc.Update(ctx, "p1", "other", req)
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "p1", "other"), services.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "p1", ""), services.ErrUnauthorized)

	updated, err := svc.Update(ctx, "p1", "owner", req)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Prompt)
	assert.Equal(t, []string{"fresh"}, updated.Tag)
	assert.Equal(t, "owner", updated.Creator.ID)

	require.NoError(t, svc.Delete(ctx, "p1", "owner"))
	_, err = svc.Get(ctx, "p1")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "p1", "owner"), services.ErrNotFound)
}

func TestUserService_Profile(t *testing.T) {
	prompts, users, db := setupStore(t)
	seedUser(t, db, "u1")
	seedPrompt(t, db, "p1", "u1", baseTime)
	lists := services.NewListService(prompts, cache.NopListCache{}, metrics.New(), logger.NewNop())
	svc := services.NewUserService(users, lists)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "name-u1", profile.User.Name)
	require.Len(t, profile.Prompts, 1)
	assert.Equal(t, "p1", profile.Prompts[0].ID)
	assert.Equal(t, int64(1), profile.Pagination.Total)

	_, err = svc.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualError(t, err, "User not found")

	_, err = svc.Profile(ctx, "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}
