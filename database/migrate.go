package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prompteria-api/logger"
	"prompteria-api/models"
)

func Migrate(db *gorm.DB) error {
	// The unique index on prompt_likes(prompt_id, user_id) is what keeps the
	// liked-by set free of duplicates; it is declared on models.PromptLike.
	err := db.AutoMigrate(
		&models.User{},
		&models.Prompt{},
		&models.PromptTag{},
		&models.PromptLike{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// SeedData populates an empty database with a couple of users and prompts for development.
func SeedData(ctx context.Context, db *gorm.DB, log logger.Logger) error {
	var userCount int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if userCount > 0 {
		log.Debug("Database already has data, skipping seed")
		return nil
	}

	testUsers := []models.User{
		{ID: uuid.New().String(), Name: "johndoe", Email: "john@example.com"},
		{ID: uuid.New().String(), Name: "janesmith", Email: "jane@example.com"},
	}

	for _, user := range testUsers {
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			log.Warn("Could not create seed user", logger.String("name", user.Name), logger.Error(err))
		}
	}

	seedPrompts := []struct {
		creator string
		body    string
		tags    []string
	}{
		{testUsers[0].ID, "Explain a concept as if I were five years old.", []string{"learning", "eli5"}},
		{testUsers[1].ID, "Rewrite this paragraph in a more formal tone.", []string{"writing", "tone"}},
		{testUsers[1].ID, "Suggest three names for a hiking blog.", []string{"naming", "ideas"}},
	}

	now := time.Now()
	for i, sp := range seedPrompts {
		prompt := models.Prompt{
			ID:        uuid.New().String(),
			CreatorID: sp.creator,
			Body:      sp.body,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		for pos, tag := range sp.tags {
			prompt.Tags = append(prompt.Tags, models.PromptTag{Position: pos, Tag: tag})
		}
		if err := db.WithContext(ctx).Create(&prompt).Error; err != nil {
			log.Warn("Could not create seed prompt", logger.Error(err))
		}
	}

	log.Info("Database seeded with test data")
	return nil
}
