package services

import (
	"context"
	"strings"

	"prompteria-api/cache"
	"prompteria-api/logger"
	"prompteria-api/metrics"
	"prompteria-api/models"
)

type LikeService struct {
	prompts PromptStore
	cache   cache.ListCache
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewLikeService(prompts PromptStore, listCache cache.ListCache, m *metrics.Metrics, log logger.Logger) *LikeService {
	return &LikeService{
		prompts: prompts,
		cache:   listCache,
		metrics: m,
		log:     log,
	}
}

// Toggle flips userID's like on a prompt and returns the canonical liker
// set after the change.
func (s *LikeService) Toggle(ctx context.Context, promptID, userID string) (*models.LikeResponse, error) {
	if userID == "" {
		return nil, newError(ErrUnauthorized, "Unauthorized")
	}
	if strings.TrimSpace(promptID) == "" {
		return nil, newError(ErrInvalidInput, "Missing prompt id")
	}

	liked, likers, err := s.prompts.ToggleLike(ctx, promptID, userID)
	if err != nil {
		return nil, storeError(err, "Prompt not found")
	}

	s.metrics.RecordLike(liked)
	invalidateLists(ctx, s.cache, s.log)

	s.log.Debug("Like toggled",
		logger.String("prompt_id", promptID),
		logger.String("user_id", userID),
		logger.Bool("liked", liked),
	)

	return &models.LikeResponse{
		Likes:      likers,
		LikesCount: len(likers),
		HasLiked:   liked,
	}, nil
}

// invalidateLists bumps the list cache generation. A failure only costs
// staleness up to the cache TTL, so it is logged and not returned.
func invalidateLists(ctx context.Context, listCache cache.ListCache, log logger.Logger) {
	if err := listCache.Invalidate(ctx); err != nil {
		log.Warn("Failed to invalidate list cache", logger.Error(err))
	}
}
