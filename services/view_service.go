package services

import (
	"context"
	"strings"

	"prompteria-api/metrics"
)

// ViewService counts prompt views. Views are not deduplicated.
type ViewService struct {
	prompts PromptStore
	metrics *metrics.Metrics
}

func NewViewService(prompts PromptStore, m *metrics.Metrics) *ViewService {
	return &ViewService{prompts: prompts, metrics: m}
}

// Record increments the view counter and returns the new count.
func (s *ViewService) Record(ctx context.Context, promptID string) (int, error) {
	if strings.TrimSpace(promptID) == "" {
		return 0, newError(ErrInvalidInput, "Missing prompt id")
	}

	views, err := s.prompts.IncrementViews(ctx, promptID)
	if err != nil {
		return 0, storeError(err, "Prompt not found")
	}

	s.metrics.RecordView()
	return views, nil
}
