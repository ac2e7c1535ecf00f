package cli

import (
	"context"
	"strconv"
	"strings"
)

// Jobs fetches and renders job recommendations for cvID.
func (a *App) Jobs(ctx context.Context, cvID string) error {
	if cvID == "" {
		a.println("No CV id yet. Upload a CV first, or pass one: jobs <cvID>")
		return nil
	}

	a.println("Looking for matching vacancies...")
	view := a.jobs.Fetch(ctx, cvID)
	if view.Err != "" {
		a.printf("Could not load recommendations: %s\n", view.Err)
		return nil
	}
	if len(view.Matches) == 0 {
		a.println("No matching vacancies found.")
		return nil
	}

	for i, m := range view.Matches {
		mark := " "
		if a.jobs.Favorited(i) {
			mark = "*"
		}
		a.printf("%s%2d. %s at %s (%d%% match)\n", mark, i+1, m.Title, m.Company, m.MatchScore)
		a.printf("     %s, expires %s\n", m.Location, m.Expires)
		if len(m.Reasons) > 0 {
			a.printf("     Why: %s\n", strings.Join(m.Reasons, "; "))
		}
		a.printf("     %s\n", m.Link)
	}
	a.println("Use 'fav <n>' to save a vacancy to your favorites.")
	return nil
}

// Favorite saves the n-th listed vacancy (1-based) to favorites.
func (a *App) Favorite(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		a.println("Usage: fav <n>, where n is a position from the jobs list")
		return nil
	}

	if err := a.jobs.Favorite(ctx, n-1); err != nil {
		a.printf("Could not save favorite: %s\n", err.Error())
		return nil
	}

	a.printf("Saved vacancy %d to favorites.\n", n)
	return nil
}
