package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"prompteria-api/models"
)

var (
	// ErrActionInFlight is returned when a toggle is requested while the
	// previous one has not resolved yet.
	ErrActionInFlight = errors.New("like action already in flight")
	// ErrSignInRequired is returned when an anonymous viewer tries to like.
	ErrSignInRequired = errors.New("sign in required")
)

// Phase is the reconciliation state of a LikeAction.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOptimistic
	PhaseReconciled
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseOptimistic:
		return "optimistic"
	case PhaseReconciled:
		return "reconciled"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// LikeState is the locally rendered like information of one prompt.
type LikeState struct {
	Likes    []string
	HasLiked bool
}

func (s LikeState) Count() int {
	return len(s.Likes)
}

func (s LikeState) clone() LikeState {
	return LikeState{Likes: slices.Clone(s.Likes), HasLiked: s.HasLiked}
}

// LikeStateFor derives the viewer's state from a listed prompt.
func LikeStateFor(item models.PromptResponse, viewerID string) LikeState {
	return LikeState{
		Likes:    slices.Clone(item.Likes),
		HasLiked: viewerID != "" && slices.Contains(item.Likes, viewerID),
	}
}

// LikeAPI is the server call a LikeAction reconciles against.
type LikeAPI interface {
	ToggleLike(ctx context.Context, promptID string) (*models.LikeResponse, error)
}

// LikeAction holds the like state of one prompt for one viewer and applies
// toggles optimistically. On success the server's canonical state replaces
// the local one; on failure the pre-toggle snapshot is restored.
type LikeAction struct {
	api      LikeAPI
	promptID string
	viewerID string

	mu       sync.Mutex
	state    LikeState
	phase    Phase
	inFlight bool
	onChange func(LikeState, Phase)
}

func NewLikeAction(api LikeAPI, promptID, viewerID string, initial LikeState) *LikeAction {
	return &LikeAction{
		api:      api,
		promptID: promptID,
		viewerID: viewerID,
		state:    initial.clone(),
	}
}

// OnChange registers a callback invoked after every state transition.
func (a *LikeAction) OnChange(fn func(LikeState, Phase)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

func (a *LikeAction) State() LikeState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

func (a *LikeAction) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Toggle flips the like. The returned error is informational: on failure
// the state has already been rolled back and nothing needs to be shown.
func (a *LikeAction) Toggle(ctx context.Context) (LikeState, error) {
	if a.viewerID == "" {
		return a.State(), ErrSignInRequired
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return a.State(), ErrActionInFlight
	}
	snapshot := a.state.clone()
	a.state = optimistic(a.state, a.viewerID)
	a.inFlight = true
	a.transition(PhaseOptimistic)
	a.mu.Unlock()

	resp, err := a.api.ToggleLike(ctx, a.promptID)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if err != nil {
		a.state = snapshot
		a.transition(PhaseRolledBack)
		return a.state.clone(), err
	}

	a.state = LikeState{Likes: slices.Clone(resp.Likes), HasLiked: resp.HasLiked}
	a.transition(PhaseReconciled)
	return a.state.clone(), nil
}

// transition must be called with mu held.
func (a *LikeAction) transition(phase Phase) {
	a.phase = phase
	if a.onChange != nil {
		a.onChange(a.state.clone(), phase)
	}
}

func optimistic(s LikeState, viewerID string) LikeState {
	next := s.clone()
	if s.HasLiked {
		next.Likes = slices.DeleteFunc(next.Likes, func(id string) bool { return id == viewerID })
		next.HasLiked = false
		return next
	}
	next.Likes = append(next.Likes, viewerID)
	next.HasLiked = true
	return next
}
