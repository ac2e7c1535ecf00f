// Package recommend fetches job matches for an analyzed CV and tracks
// per-item favorite actions. Successive fetches for different CV ids may
// overlap; each request is tagged with a generation so a completion that
// arrives after a newer fetch started is discarded instead of overwriting
// newer state.
package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkalvans/cvadvisor/internal/client/api"
	"github.com/mkalvans/cvadvisor/internal/client/models"
	"github.com/mkalvans/cvadvisor/internal/logging"
)

// View is a snapshot of the fetcher for rendering.
type View struct {
	CVID    string
	Matches []models.JobMatch
	Loading bool
	Err     string
}

// Fetcher is the recommendation view model for one CV-id-keyed list.
type Fetcher struct {
	api    api.Client
	logger logging.Logger

	mu      sync.Mutex
	gen     uint64
	cvID    string
	matches []models.JobMatch
	loading bool
	err     string

	favPending map[int]bool
	favorited  map[int]bool
}

func NewFetcher(apiClient api.Client, logger logging.Logger) *Fetcher {
	return &Fetcher{
		api:        apiClient,
		logger:     logger.With("component", "recommend"),
		favPending: make(map[int]bool),
		favorited:  make(map[int]bool),
	}
}

// Fetch loads matches for cvID. Starting a new fetch supersedes any
// in-flight one: when the older call completes, its outcome is dropped.
func (f *Fetcher) Fetch(ctx context.Context, cvID string) View {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.cvID = cvID
	f.loading = true
	f.err = ""
	f.mu.Unlock()

	matches, err := f.api.Recommendations(ctx, cvID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		// a newer fetch superseded this one; its result is not ours to apply
		f.logger.Debug(ctx, "discarding stale recommendations", "cv_id", cvID)
		return f.viewLocked()
	}

	f.loading = false
	if err != nil {
		f.matches = nil
		f.err = err.Error()
	} else {
		f.matches = matches
		f.favPending = make(map[int]bool)
		f.favorited = make(map[int]bool)
	}
	return f.viewLocked()
}

// Favorite saves the job at index to the user's favorites. Items are
// independent: a pending favorite on one index never blocks another. A
// repeated favorite of the same item is a no-op.
func (f *Fetcher) Favorite(ctx context.Context, index int) error {
	f.mu.Lock()
	if index < 0 || index >= len(f.matches) {
		f.mu.Unlock()
		return fmt.Errorf("no job at position %d", index+1)
	}
	if f.favorited[index] {
		f.mu.Unlock()
		return nil
	}
	if f.favPending[index] {
		f.mu.Unlock()
		return fmt.Errorf("favorite for position %d already in progress", index+1)
	}
	f.favPending[index] = true
	job := f.matches[index]
	f.mu.Unlock()

	err := f.api.AddFavorite(ctx, job)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.favPending[index] = false
	if err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}
	f.favorited[index] = true
	f.logger.Info(ctx, "job favorited", "title", job.Title, "company", job.Company)
	return nil
}

// Favorited reports whether the job at index has been saved.
func (f *Fetcher) Favorited(index int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favorited[index]
}

// Current returns a rendering snapshot.
func (f *Fetcher) Current() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Fetcher) viewLocked() View {
	matches := make([]models.JobMatch, len(f.matches))
	copy(matches, f.matches)
	return View{CVID: f.cvID, Matches: matches, Loading: f.loading, Err: f.err}
}
