// Package session is the single source of truth for authentication state.
// It owns the bearer token and the minimal user identity, persists both to
// the local database so a restart can rehydrate the session, and mediates
// every credential-bearing operation. No other package reads cookies or the
// persisted store directly.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/mkalvans/cvadvisor/internal/client/api"
	"github.com/mkalvans/cvadvisor/internal/client/models"
	"github.com/mkalvans/cvadvisor/internal/client/repositories/metadata"
	"github.com/mkalvans/cvadvisor/internal/common"
	"github.com/mkalvans/cvadvisor/internal/dbx"
	"github.com/mkalvans/cvadvisor/internal/logging"
)

// Metadata keys under which session state is persisted.
const (
	keyToken        = "token"
	keyTokenExpires = "token_expires"
	keyUser         = "user"
)

// Result is the outcome of a login or register attempt. Failures carry a
// human-readable message; nothing is ever thrown past this boundary.
type Result struct {
	OK  bool
	Err string
}

// CookieWriter installs or clears the auth cookie on the transport.
// api.HTTPClient implements it.
type CookieWriter interface {
	SetAuthCookie(token string, expires time.Time)
	ClearAuthCookie()
}

// Snapshot is an immutable copy of the session state for consumers.
type Snapshot struct {
	User          *models.User
	Authenticated bool
	Loading       bool
}

// Store holds the session. All mutation goes through Login/Logout; the
// token and user always change together.
type Store struct {
	api      api.Client
	cookies  CookieWriter
	db       *sql.DB
	logger   logging.Logger
	tokenTTL time.Duration
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
	user    *models.User
	busy    bool
}

// New builds a Store and synchronously rehydrates it from the local
// database: a previously persisted, unexpired token authenticates the
// session without a server round-trip. An expired or unreadable token is
// discarded and the session starts unauthenticated.
func New(apiClient api.Client, cookies CookieWriter, db *sql.DB, tokenTTL time.Duration, logger logging.Logger) *Store {
	s := &Store{
		api:      apiClient,
		cookies:  cookies,
		db:       db,
		logger:   logger.With("component", "session"),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
	s.hydrate(context.Background())
	return s
}

func (s *Store) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *Store) hydrate(ctx context.Context) {
	repo := s.repo()

	token, err := repo.Get(ctx, keyToken)
	if err != nil || len(token) == 0 {
		return
	}

	expiresRaw, err := repo.Get(ctx, keyTokenExpires)
	if err != nil || len(expiresRaw) == 0 {
		return
	}
	expires, err := time.Parse(time.RFC3339, string(expiresRaw))
	if err != nil {
		return
	}

	now := s.now()
	if !now.Before(expires) || tokenExpired(string(token), now) {
		s.logger.Info(ctx, "persisted token expired, starting unauthenticated")
		_ = repo.Clear(ctx)
		return
	}

	var user models.User
	if raw, err := repo.Get(ctx, keyUser); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &user); err != nil {
			return
		}
	}
	if user.Username == "" {
		// token and user are persisted together; a missing identity means
		// the state is torn and cannot be trusted
		return
	}

	s.mu.Lock()
	s.token = string(token)
	s.expires = expires
	s.user = &user
	s.mu.Unlock()

	s.cookies.SetAuthCookie(string(token), expires)
	s.logger.Info(ctx, "session rehydrated", "username", user.Username)
}

func (s *Store) setBusy(v bool) {
	s.mu.Lock()
	s.busy = v
	s.mu.Unlock()
}

// Login authenticates against the backend. On success the token and user
// are persisted in one transaction, the auth cookie is installed, and the
// session flips to authenticated. On any failure the prior state is left
// untouched and the message is returned in Result.Err. The loading flag is
// cleared on every path.
func (s *Store) Login(ctx context.Context, username string, password []byte) Result {
	s.setBusy(true)
	defer s.setBusy(false)

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "username", username, "error", err)
		return Result{OK: false, Err: loginErrorMessage(err)}
	}

	expires := s.now().Add(s.tokenTTL)
	user := &models.User{Username: username}

	if err := s.persist(ctx, token, expires, user); err != nil {
		// the live session still works; only rehydration after a restart
		// is lost
		s.logger.Warn(ctx, "failed to persist session", "error", err)
	}

	s.mu.Lock()
	s.token = token
	s.expires = expires
	s.user = user
	s.mu.Unlock()

	s.cookies.SetAuthCookie(token, expires)
	s.logger.Info(ctx, "logged in", "username", username)
	return Result{OK: true}
}

func (s *Store) persist(ctx context.Context, token string, expires time.Time, user *models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyTokenExpires, []byte(expires.Format(time.RFC3339))); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, rawUser)
	})
}

// Register creates an account. Success never authenticates: the caller is
// expected to direct the user to login afterwards.
func (s *Store) Register(ctx context.Context, username string, password []byte, email string) Result {
	s.setBusy(true)
	defer s.setBusy(false)

	if err := s.api.Register(ctx, username, password, email); err != nil {
		s.logger.Warn(ctx, "registration failed", "username", username, "error", err)
		return Result{OK: false, Err: err.Error()}
	}

	s.logger.Info(ctx, "registered", "username", username)
	return Result{OK: true}
}

// Logout clears the in-memory session, the auth cookie, and the persisted
// state. No network call is made. Calling it on an already logged-out store
// is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	s.user = nil
	s.mu.Unlock()

	s.cookies.ClearAuthCookie()

	if err := s.repo().Clear(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "logged out")
	return nil
}

// IsAuthenticated reports whether a token is present and not expired.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

func (s *Store) validLocked() bool {
	if s.token == "" {
		return false
	}
	now := s.now()
	if !now.Before(s.expires) {
		return false
	}
	return !tokenExpired(s.token, now)
}

// Loading reports whether a network operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Token returns the bearer credential for authenticated requests, or ""
// when the session is not authenticated. Implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validLocked() {
		return ""
	}
	return s.token
}

// User returns a copy of the authenticated identity, or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validLocked() || s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Current returns an immutable snapshot of the session state.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Authenticated: s.validLocked(),
		Loading:       s.busy,
	}
	if snap.Authenticated && s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return "invalid username or password"
	case errors.Is(err, common.ErrUnavailable):
		return "failed to connect to the server"
	default:
		return err.Error()
	}
}
