package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkalvans/cvadvisor/internal/client/api"
	"github.com/mkalvans/cvadvisor/internal/client/config"
	"github.com/mkalvans/cvadvisor/internal/client/localdb"
	"github.com/mkalvans/cvadvisor/internal/client/recommend"
	"github.com/mkalvans/cvadvisor/internal/client/session"
	"github.com/mkalvans/cvadvisor/internal/client/upload"
	"github.com/mkalvans/cvadvisor/internal/filex"
	"github.com/mkalvans/cvadvisor/internal/logging"
)

// sessionStore is the slice of the session store the CLI needs. The real
// *session.Store satisfies it; tests can provide a lightweight stub.
type sessionStore interface {
	Login(ctx context.Context, username string, password []byte) session.Result
	Register(ctx context.Context, username string, password []byte, email string) session.Result
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Loading() bool
	Current() session.Snapshot
}

// App wires the client components together and carries REPL state.
type App struct {
	config  *config.Config
	logger  logging.Logger
	session sessionStore
	api     api.Client
	upload  *upload.Flow
	jobs    *recommend.Fetcher

	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer

	// lastCVID keys the jobs command after a successful upload.
	lastCVID string
}

// NewApp builds the application: local database, HTTP client, session
// store, and the flows on top of them.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dir, err := filex.EnsureSubDir("cvadvisor")
		if err != nil {
			return nil, fmt.Errorf("prepare data dir: %w", err)
		}
		dataDir = dir
	}

	db, err := localdb.Open(ctx, filepath.Join(dataDir, "session.db"))
	if err != nil {
		return nil, err
	}

	apiClient, err := api.NewHTTPClient(cfg.BaseURL, cfg.RequestTimeout, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := session.New(apiClient, apiClient, db, cfg.TokenTTL, logger)
	apiClient.SetTokenSource(store)

	return &App{
		config:  cfg,
		logger:  logger,
		session: store,
		api:     apiClient,
		upload:  upload.NewFlow(apiClient, store, logger),
		jobs:    recommend.NewFetcher(apiClient, logger),
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// requireAuth runs fn only when the session is authenticated. While the
// store is mid-operation nothing is decided yet, so the command is skipped
// with a neutral message instead of a premature login redirect.
func (a *App) requireAuth(ctx context.Context, fn func(context.Context) error) error {
	if a.session.Loading() {
		a.println("Session check in progress, try again in a moment.")
		return nil
	}
	if !a.session.IsAuthenticated() {
		a.println("You need to login first. Type 'login' (or 'register' to create an account).")
		return nil
	}
	return fn(ctx)
}
