package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prompteria-api/database/dbtest"
	"prompteria-api/models"
	"prompteria-api/repositories"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("dial tcp: connection refused")

func setupStore(t *testing.T) (*repositories.PromptRepository, *repositories.UserRepository, *gorm.DB) {
	t.Helper()

	h, db := dbtest.OpenHandle(t)
	return repositories.NewPromptRepository(h), repositories.NewUserRepository(h), db
}

func seedUser(t *testing.T, db *gorm.DB, id string) models.User {
	t.Helper()

	user := models.User{ID: id, Name: "name-" + id, Email: id + "@example.com", Image: "https://img/" + id}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPrompt(t *testing.T, db *gorm.DB, id, creatorID string, createdAt time.Time, tags ...string) {
	t.Helper()

	prompt := models.Prompt{ID: id, CreatorID: creatorID, Body: "body " + id, CreatedAt: createdAt}
	for i, tag := range tags {
		prompt.Tags = append(prompt.Tags, models.PromptTag{Position: i, Tag: tag})
	}
	require.NoError(t, db.Omit("Creator").Create(&prompt).Error)
}

// countingCache is an in-memory generational ListCache that records
// invalidations.
type countingCache struct {
	mu            sync.Mutex
	gen           int64
	entries       map[string]any
	invalidations int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string]any{}}
}

func (c *countingCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *countingCache) Get(_ context.Context, gen int64, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[fmt.Sprintf("%d:%s", gen, key)]
	if !ok {
		return false, nil
	}
	*dst.(*models.PromptPage) = *v.(*models.PromptPage)
	return true, nil
}

func (c *countingCache) Set(_ context.Context, gen int64, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fmt.Sprintf("%d:%s", gen, key)] = value
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.invalidations++
	return nil
}

func (c *countingCache) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

// failingStore fails every call as if the store were unreachable.
type failingStore struct{}

func (failingStore) ToggleLike(context.Context, string, string) (bool, []string, error) {
	return false, nil, errStoreDown
}

func (failingStore) IncrementViews(context.Context, string) (int, error) {
	return 0, errStoreDown
}

func (failingStore) List(context.Context, repositories.ListFilter, int, int) ([]models.Prompt, int64, error) {
	return nil, 0, errStoreDown
}

func (failingStore) Get(context.Context, string) (*models.Prompt, error) {
	return nil, errStoreDown
}

func (failingStore) Create(context.Context, *models.Prompt) error {
	return errStoreDown
}

func (failingStore) Update(context.Context, string, string, []string) error {
	return errStoreDown
}

func (failingStore) Delete(context.Context, string) error {
	return errStoreDown
}
