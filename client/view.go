package client

import (
	"context"
	"sync"
)

// ViewAPI is the server call a ViewTracker issues.
type ViewAPI interface {
	RecordView(ctx context.Context, promptID string) (int, error)
}

// ViewTracker records a prompt view at most once per mount. The latch is set
// only after the server accepted the view, so a failed attempt can be
// retried by a later Track call.
type ViewTracker struct {
	api      ViewAPI
	promptID string

	mu       sync.Mutex
	recorded bool
	inFlight bool
	views    int
}

func NewViewTracker(api ViewAPI, promptID string, views int) *ViewTracker {
	return &ViewTracker{api: api, promptID: promptID, views: views}
}

// Track records the view unless it was already recorded or is in progress.
// It returns the view count to display.
func (t *ViewTracker) Track(ctx context.Context) (int, error) {
	t.mu.Lock()
	if t.recorded || t.inFlight {
		views := t.views
		t.mu.Unlock()
		return views, nil
	}
	t.inFlight = true
	t.mu.Unlock()

	views, err := t.api.RecordView(ctx, t.promptID)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false
	if err != nil {
		return t.views, err
	}
	t.recorded = true
	t.views = views
	return views, nil
}

func (t *ViewTracker) Views() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.views
}

func (t *ViewTracker) Recorded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recorded
}
