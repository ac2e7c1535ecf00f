package cli

import (
	"context"
	"strconv"

	"github.com/mkalvans/cvadvisor/internal/client/upload"
)

// Upload selects the file at path and submits it for analysis.
func (a *App) Upload(ctx context.Context, path string) error {
	if err := a.upload.Select(path); err != nil {
		a.printf("Cannot select file: %s\n", err.Error())
		return nil
	}

	st := a.upload.Current()
	if st.Message != "" {
		a.println(st.Message)
		return nil
	}

	a.printf("Uploading %s (%d bytes)...\n", st.File.Name, st.File.Size)

	st = a.upload.Submit(ctx)
	switch st.Phase {
	case upload.PhaseSuccess:
		a.lastCVID = strconv.FormatInt(st.Analysis.CVID, 10)
		a.println("Analysis complete.")
		a.println("")
		a.println("Summary:")
		a.println(st.Analysis.Summary)
		a.println("")
		a.println("Suggested improvements:")
		a.println(st.Analysis.SuggestedImprovements)
		a.println("")
		a.printf("CV stored with id %s. Run 'jobs' to see matching vacancies.\n", a.lastCVID)
	case upload.PhaseError:
		a.printf("Upload failed: %s\n", st.Message)
	default:
		a.println(st.Message)
	}
	return nil
}
