// Package upload drives the CV upload flow: pick a file, validate it
// locally, submit it for analysis, and expose exactly one of a fixed set of
// states. The state is an explicit tag, so contradictory combinations like
// "loading with a result" cannot exist.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkalvans/cvadvisor/internal/client/api"
	"github.com/mkalvans/cvadvisor/internal/client/models"
	"github.com/mkalvans/cvadvisor/internal/common"
	"github.com/mkalvans/cvadvisor/internal/logging"
)

// MaxFileSize is the client-side ceiling; larger files are rejected before
// any network call.
const MaxFileSize = 5 << 20

// AcceptedExtensions lists the file types the backend can parse.
var AcceptedExtensions = []string{".pdf", ".doc", ".docx"}

// Phase is the tag of the flow state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelected
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// FileRef describes the currently selected file.
type FileRef struct {
	Path string
	Name string
	Size int64
}

// State is a snapshot of the flow. Analysis is non-nil only in
// PhaseSuccess; Message is non-empty only in PhaseError or for a blocked
// selection in PhaseSelected.
type State struct {
	Phase    Phase
	File     *FileRef
	Analysis *models.Analysis
	Message  string
}

// Session is the slice of the session store the flow depends on.
type Session interface {
	IsAuthenticated() bool
}

// Test seams for filesystem access.
var (
	statFile = os.Stat
	openFile = os.Open
)

// Flow is one upload instance. At most one request is in flight at a time;
// Submit refuses while loading.
type Flow struct {
	api     api.Client
	session Session
	logger  logging.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
}

func NewFlow(apiClient api.Client, session Session, logger logging.Logger) *Flow {
	return &Flow{
		api:     apiClient,
		session: session,
		logger:  logger.With("component", "upload"),
		state:   State{Phase: PhaseIdle},
	}
}

// Current returns a copy of the flow state.
func (f *Flow) Current() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func acceptedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AcceptedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Select records a new file choice, replacing any previous selection and
// clearing prior results or errors. An unsupported extension or unreadable
// path leaves the current state untouched and returns the error. An
// oversize file is kept as the selection but flagged, which blocks Submit
// until a smaller file is chosen.
func (f *Flow) Select(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return errors.New("upload in progress, wait for it to finish")
	}

	name := filepath.Base(path)
	if !acceptedExtension(name) {
		return fmt.Errorf("unsupported file type %q: accepted types are %s",
			filepath.Ext(name), strings.Join(AcceptedExtensions, ", "))
	}

	info, err := statFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	f.state = State{
		Phase: PhaseSelected,
		File:  &FileRef{Path: path, Name: name, Size: info.Size()},
	}
	if info.Size() > MaxFileSize {
		f.state.Message = fmt.Sprintf("file is %.1f MB, the limit is %d MB: choose a smaller file",
			float64(info.Size())/(1<<20), MaxFileSize>>20)
	}
	return nil
}

// Submit uploads the selected file and moves the flow to Success or Error.
// Preconditions checked without any network call: a valid selection, no
// upload already in flight, and an authenticated session.
func (f *Flow) Submit(ctx context.Context) State {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return f.Current()
	}
	if f.state.Phase != PhaseSelected {
		f.mu.Unlock()
		return f.fail("please select a file first")
	}
	if f.state.Message != "" {
		// oversize selection: keep it visible, refuse to send
		st := f.state
		f.mu.Unlock()
		return st
	}
	if !f.session.IsAuthenticated() {
		f.mu.Unlock()
		return f.fail(common.ErrAuthRequired.Error() + ": please login first")
	}

	file := *f.state.File
	f.inFlight = true
	f.state = State{Phase: PhaseLoading, File: &file}
	f.mu.Unlock()

	analysis, err := f.upload(ctx, file)

	f.mu.Lock()
	f.inFlight = false
	if err != nil {
		f.state = State{Phase: PhaseError, File: &file, Message: submitErrorMessage(err)}
	} else {
		f.state = State{Phase: PhaseSuccess, File: &file, Analysis: analysis}
	}
	st := f.state
	f.mu.Unlock()
	return st
}

func (f *Flow) upload(ctx context.Context, file FileRef) (*models.Analysis, error) {
	r, err := openFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", file.Path, err)
	}
	defer r.Close()

	f.logger.Info(ctx, "uploading cv", "file", file.Name, "size", file.Size)
	return f.api.UploadCV(ctx, file.Name, r)
}

func (f *Flow) fail(msg string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = State{Phase: PhaseError, File: f.state.File, Message: msg}
	return f.state
}

// submitErrorMessage distinguishes the failure classes so the user is not
// told to check their connection when the backend broke the contract.
func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return "authentication failed: please login again"
	case errors.Is(err, common.ErrMalformedResponse):
		return "the server returned malformed data: " + err.Error()
	case errors.Is(err, common.ErrUnavailable):
		return "failed to reach the server: " + err.Error()
	default:
		return err.Error()
	}
}
