package services

import (
	"context"

	"prompteria-api/models"
	"prompteria-api/repositories"
)

// PromptStore is the prompt persistence used by the services.
// *repositories.PromptRepository implements it.
type PromptStore interface {
	ToggleLike(ctx context.Context, promptID, userID string) (bool, []string, error)
	IncrementViews(ctx context.Context, promptID string) (int, error)
	List(ctx context.Context, filter repositories.ListFilter, offset, limit int) ([]models.Prompt, int64, error)
	Get(ctx context.Context, promptID string) (*models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	Update(ctx context.Context, promptID, body string, tags []string) error
	Delete(ctx context.Context, promptID string) error
}

// UserStore is the account persistence used by the services.
// *repositories.UserRepository implements it.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithUniqueName(ctx context.Context, user *models.User, baseName string) (*models.User, bool, error)
}
