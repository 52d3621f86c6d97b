package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"prompteria-api/models"
)

// DefaultPageSize matches the server's minimum page size.
const DefaultPageSize = 12

// PageFunc fetches one page of a listing.
type PageFunc func(ctx context.Context, page, limit int) (*models.PromptPage, error)

// Deleter removes a prompt on the server.
type Deleter interface {
	DeletePrompt(ctx context.Context, promptID string) error
}

// Feed mirrors a paginated listing that grows with LoadMore.
type Feed struct {
	fetch   PageFunc
	deleter Deleter
	limit   int

	mu         sync.Mutex
	items      []models.PromptResponse
	loaded     int
	total      int64
	totalPages int
	err        error
}

func NewFeed(fetch PageFunc, deleter Deleter, limit int) *Feed {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Feed{fetch: fetch, deleter: deleter, limit: limit}
}

func (f *Feed) Items() []models.PromptResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

func (f *Feed) Total() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// HasMore reports whether another page is available.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded == 0 || f.loaded < f.totalPages
}

// Err is the inline error from the last list fetch or delete, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// LoadMore fetches the next page and appends it. Items already present are
// skipped so inserts between page loads do not duplicate entries.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loaded > 0 && f.loaded >= f.totalPages {
		f.mu.Unlock()
		return nil
	}
	next := f.loaded + 1
	f.mu.Unlock()

	page, err := f.fetch(ctx, next, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.err = fmt.Errorf("load page %d: %w", next, err)
		return f.err
	}
	if next != f.loaded+1 {
		return nil
	}

	for _, item := range page.Prompts {
		if !f.contains(item.ID) {
			f.items = append(f.items, item)
		}
	}
	f.loaded = next
	f.total = page.Pagination.Total
	f.totalPages = page.Pagination.TotalPages
	f.err = nil
	return nil
}

// Refresh refetches every page loaded so far and replaces the items.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	pages := max(f.loaded, 1)
	f.mu.Unlock()

	var items []models.PromptResponse
	var last *models.PromptPage
	fetched := 0
	for p := 1; p <= pages; p++ {
		page, err := f.fetch(ctx, p, f.limit)
		if err != nil {
			f.mu.Lock()
			f.err = fmt.Errorf("refresh page %d: %w", p, err)
			f.mu.Unlock()
			return err
		}
		items = append(items, page.Prompts...)
		last = page
		fetched = p
		if p >= page.Pagination.TotalPages {
			break
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.loaded = fetched
	f.total = last.Pagination.Total
	f.totalPages = last.Pagination.TotalPages
	f.err = nil
	return nil
}

// Delete removes the prompt from the visible list immediately. If the
// server rejects the delete the whole list is refetched, since page offsets
// may already be stale, and the failure is kept as the inline error.
func (f *Feed) Delete(ctx context.Context, promptID string) error {
	f.mu.Lock()
	snapshot := slices.Clone(f.items)
	f.items = slices.DeleteFunc(f.items, func(item models.PromptResponse) bool {
		return item.ID == promptID
	})
	removed := len(snapshot) - len(f.items)
	f.total -= int64(removed)
	f.mu.Unlock()

	err := f.deleter.DeletePrompt(ctx, promptID)
	if err == nil {
		return nil
	}

	deleteErr := fmt.Errorf("delete prompt: %w", err)
	if refreshErr := f.Refresh(ctx); refreshErr != nil {
		f.mu.Lock()
		f.items = snapshot
		f.total += int64(removed)
		f.mu.Unlock()
	}

	f.mu.Lock()
	f.err = deleteErr
	f.mu.Unlock()
	return deleteErr
}

// ApplyLike writes a reconciled like state into the matching item.
func (f *Feed) ApplyLike(promptID string, state LikeState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID == promptID {
			f.items[i].Likes = slices.Clone(state.Likes)
			return
		}
	}
}

// contains must be called with mu held.
func (f *Feed) contains(id string) bool {
	return slices.ContainsFunc(f.items, func(item models.PromptResponse) bool {
		return item.ID == id
	})
}
