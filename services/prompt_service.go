package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"prompteria-api/cache"
	"prompteria-api/logger"
	"prompteria-api/models"
	"prompteria-api/utils"
)

// PromptService handles creating, reading, editing and deleting prompts.
// Edits and deletes are restricted to the prompt's creator.
type PromptService struct {
	prompts PromptStore
	cache   cache.ListCache
	log     logger.Logger
}

func NewPromptService(prompts PromptStore, listCache cache.ListCache, log logger.Logger) *PromptService {
	return &PromptService{
		prompts: prompts,
		cache:   listCache,
		log:     log,
	}
}

func (s *PromptService) Create(ctx context.Context, userID string, req models.PromptRequest) (*models.PromptResponse, error) {
	if userID == "" {
		return nil, newError(ErrUnauthorized, "Unauthorized")
	}
	body, tags, err := validatePrompt(req)
	if err != nil {
		return nil, err
	}

	prompt := &models.Prompt{
		ID:        uuid.New().String(),
		CreatorID: userID,
		Body:      body,
	}
	for i, tag := range tags {
		prompt.Tags = append(prompt.Tags, models.PromptTag{Position: i, Tag: tag})
	}

	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, storeError(err, "Prompt not found")
	}
	invalidateLists(ctx, s.cache, s.log)

	s.log.Info("Prompt created",
		logger.String("prompt_id", prompt.ID),
		logger.String("creator_id", userID),
	)

	return s.Get(ctx, prompt.ID)
}

func (s *PromptService) Get(ctx context.Context, promptID string) (*models.PromptResponse, error) {
	if strings.TrimSpace(promptID) == "" {
		return nil, newError(ErrInvalidInput, "Missing prompt id")
	}

	prompt, err := s.prompts.Get(ctx, promptID)
	if err != nil {
		return nil, storeError(err, "Prompt not found")
	}

	resp := prompt.ToResponse()
	return &resp, nil
}

// Update replaces the body and tags. The creator never changes.
func (s *PromptService) Update(ctx context.Context, promptID, userID string, req models.PromptRequest) (*models.PromptResponse, error) {
	if err := s.authorize(ctx, promptID, userID); err != nil {
		return nil, err
	}
	body, tags, err := validatePrompt(req)
	if err != nil {
		return nil, err
	}

	if err := s.prompts.Update(ctx, promptID, body, tags); err != nil {
		return nil, storeError(err, "Prompt not found")
	}
	invalidateLists(ctx, s.cache, s.log)

	return s.Get(ctx, promptID)
}

func (s *PromptService) Delete(ctx context.Context, promptID, userID string) error {
	if err := s.authorize(ctx, promptID, userID); err != nil {
		return err
	}

	if err := s.prompts.Delete(ctx, promptID); err != nil {
		return storeError(err, "Prompt not found")
	}
	invalidateLists(ctx, s.cache, s.log)

	s.log.Info("Prompt deleted",
		logger.String("prompt_id", promptID),
		logger.String("user_id", userID),
	)
	return nil
}

func (s *PromptService) authorize(ctx context.Context, promptID, userID string) error {
	if userID == "" {
		return newError(ErrUnauthorized, "Unauthorized")
	}
	if strings.TrimSpace(promptID) == "" {
		return newError(ErrInvalidInput, "Missing prompt id")
	}

	prompt, err := s.prompts.Get(ctx, promptID)
	if err != nil {
		return storeError(err, "Prompt not found")
	}
	if prompt.CreatorID != userID {
		return newError(ErrForbidden, "Only the creator can modify this prompt")
	}
	return nil
}

func validatePrompt(req models.PromptRequest) (string, []string, error) {
	body := strings.TrimSpace(req.Prompt)
	if body == "" {
		return "", nil, newError(ErrInvalidInput, "Prompt is required")
	}

	tags, ok := utils.NormalizeTags(req.Tag)
	if !ok {
		return "", nil, newError(ErrInvalidInput, "At least one non-empty tag is required")
	}
	return body, tags, nil
}
