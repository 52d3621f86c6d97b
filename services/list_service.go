package services

import (
	"context"
	"fmt"
	"math"

	"prompteria-api/cache"
	"prompteria-api/logger"
	"prompteria-api/metrics"
	"prompteria-api/models"
	"prompteria-api/repositories"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// NormalizePage floors page at DefaultPage. Zero means "not supplied".
func NormalizePage(page int) int {
	return max(page, DefaultPage)
}

// NormalizeLimit floors limit at DefaultLimit. Callers may ask for larger
// pages but never smaller ones.
func NormalizeLimit(limit int) int {
	return max(limit, DefaultLimit)
}

// ListService serves paginated prompt listings through the list cache.
type ListService struct {
	prompts PromptStore
	cache   cache.ListCache
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewListService(prompts PromptStore, listCache cache.ListCache, m *metrics.Metrics, log logger.Logger) *ListService {
	return &ListService{
		prompts: prompts,
		cache:   listCache,
		metrics: m,
		log:     log,
	}
}

// List returns one page of prompts matching filter, newest first.
func (s *ListService) List(ctx context.Context, filter repositories.ListFilter, page, limit int) (*models.PromptPage, error) {
	page = NormalizePage(page)
	limit = NormalizeLimit(limit)

	key := cacheKey(filter, page, limit)
	gen, cacheable := s.generation(ctx)
	if cacheable {
		var cached models.PromptPage
		hit, err := s.cache.Get(ctx, gen, key, &cached)
		if err != nil {
			s.log.Warn("List cache read failed", logger.String("key", key), logger.Error(err))
		}
		s.metrics.RecordListCache(hit)
		if hit {
			return &cached, nil
		}
	} else {
		s.metrics.RecordListCache(false)
	}

	prompts, total, err := s.prompts.List(ctx, filter, pageOffset(page, limit), limit)
	if err != nil {
		return nil, storeError(err, "No prompts found")
	}

	result := &models.PromptPage{
		Prompts: make([]models.PromptResponse, 0, len(prompts)),
		Pagination: models.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages(total, limit),
		},
	}
	for i := range prompts {
		result.Prompts = append(result.Prompts, prompts[i].ToResponse())
	}

	if cacheable {
		if err := s.cache.Set(ctx, gen, key, result); err != nil {
			s.log.Warn("List cache write failed", logger.String("key", key), logger.Error(err))
		}
	}

	return result, nil
}

// generation reports the cache generation to read and fill under. The cache
// is skipped for this request when it cannot be determined.
func (s *ListService) generation(ctx context.Context) (int64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("List cache generation unavailable", logger.Error(err))
		return 0, false
	}
	return gen, true
}

// pageOffset is the row offset of page. Offsets that do not fit in an int
// are clamped to math.MaxInt, which lies past any stored result set.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func totalPages(total int64, limit int) int {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

func cacheKey(filter repositories.ListFilter, page, limit int) string {
	return fmt.Sprintf("c=%q:l=%q:t=%q:s=%q:p=%d:n=%d",
		filter.CreatorID, filter.LikedBy, filter.Tag, filter.Search, page, limit)
}
