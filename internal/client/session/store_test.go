package session

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalvans/cvadvisor/internal/client/models"
	"github.com/mkalvans/cvadvisor/internal/common"
	"github.com/mkalvans/cvadvisor/internal/logging"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

// fakeAPI implements api.Client for store tests.
type fakeAPI struct {
	loginToken string
	loginErr   error
	loginCalls int
	loginHook  func()

	registerErr   error
	registerCalls int
	regUser       string
	regEmail      string
}

func (f *fakeAPI) Login(_ context.Context, username string, password []byte) (string, error) {
	f.loginCalls++
	if f.loginHook != nil {
		f.loginHook()
	}
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeAPI) Register(_ context.Context, username string, password []byte, email string) error {
	f.registerCalls++
	f.regUser, f.regEmail = username, email
	return f.registerErr
}

func (f *fakeAPI) UploadCV(context.Context, string, io.Reader) (*models.Analysis, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) CreateCV(context.Context, *models.CVProfile) error { return nil }

func (f *fakeAPI) Recommendations(context.Context, string) ([]models.JobMatch, error) {
	return nil, nil
}

func (f *fakeAPI) AddFavorite(context.Context, models.JobMatch) error { return nil }

// fakeCookies records cookie writes.
type fakeCookies struct {
	token    string
	expires  time.Time
	setCalls int
	cleared  int
}

func (f *fakeCookies) SetAuthCookie(token string, expires time.Time) {
	f.token, f.expires = token, expires
	f.setCalls++
}

func (f *fakeCookies) ClearAuthCookie() {
	f.token = ""
	f.cleared++
}

func newStore(t *testing.T, db *sql.DB, apiClient *fakeAPI, cookies *fakeCookies) *Store {
	t.Helper()
	return New(apiClient, cookies, db, 7*24*time.Hour, testLogger())
}

func TestLogin_Success_AuthenticatesAndPersists(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginToken: "tok-123"}
	cookies := &fakeCookies{}
	s := newStore(t, db, apiClient, cookies)

	res := s.Login(context.Background(), "alice", []byte("pw"))
	require.True(t, res.OK)
	assert.Empty(t, res.Err)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-123", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "alice", s.User().Username)

	assert.Equal(t, "tok-123", cookies.token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), cookies.expires, time.Minute)
}

func TestLogin_Rehydration_NoNetworkCall(t *testing.T) {
	db := setupDB(t)
	first := &fakeAPI{loginToken: "tok-123"}
	res := newStore(t, db, first, &fakeCookies{}).Login(context.Background(), "alice", []byte("pw"))
	require.True(t, res.OK)

	// Simulate an application restart over the same local database.
	second := &fakeAPI{}
	cookies := &fakeCookies{}
	s := newStore(t, db, second, cookies)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-123", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "alice", s.User().Username)
	assert.Zero(t, second.loginCalls, "rehydration must not hit the network")
	assert.Equal(t, 1, cookies.setCalls, "rehydration must reinstall the cookie")
}

func TestLogin_Unauthorized_LeavesStateUnchanged(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginErr: common.ErrUnauthorized}
	s := newStore(t, db, apiClient, &fakeCookies{})

	res := s.Login(context.Background(), "alice", []byte("wrongpass"))
	require.False(t, res.OK)
	assert.NotEmpty(t, res.Err)

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestLogin_Unavailable_HumanReadableMessage(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginErr: common.ErrUnavailable}
	s := newStore(t, db, apiClient, &fakeCookies{})

	res := s.Login(context.Background(), "alice", []byte("pw"))
	require.False(t, res.OK)
	assert.Equal(t, "failed to connect to the server", res.Err)
}

func TestLogin_LoadingFlag_SetDuringCallAndAlwaysCleared(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginErr: errors.New("boom")}
	s := newStore(t, db, apiClient, &fakeCookies{})
	apiClient.loginHook = func() {
		assert.True(t, s.Loading(), "loading must be true while the call is in flight")
	}

	_ = s.Login(context.Background(), "alice", []byte("pw"))
	assert.False(t, s.Loading(), "loading must be cleared after failure")

	apiClient.loginErr = nil
	apiClient.loginToken = "tok"
	_ = s.Login(context.Background(), "alice", []byte("pw"))
	assert.False(t, s.Loading(), "loading must be cleared after success")
}

func TestRegister_Success_DoesNotAuthenticate(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{}
	s := newStore(t, db, apiClient, &fakeCookies{})

	res := s.Register(context.Background(), "bob", []byte("pw"), "bob@example.org")
	require.True(t, res.OK)

	assert.Equal(t, "bob", apiClient.regUser)
	assert.Equal(t, "bob@example.org", apiClient.regEmail)
	assert.False(t, s.IsAuthenticated(), "registration must not set a token")
	assert.False(t, s.Loading())
}

func TestRegister_Failure_SurfacesMessage(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{registerErr: errors.New("username already taken")}
	s := newStore(t, db, apiClient, &fakeCookies{})

	res := s.Register(context.Background(), "bob", []byte("pw"), "bob@example.org")
	require.False(t, res.OK)
	assert.Equal(t, "username already taken", res.Err)
	assert.False(t, s.Loading())
}

func TestLogout_Idempotent(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginToken: "tok"}
	cookies := &fakeCookies{}
	s := newStore(t, db, apiClient, cookies)

	require.True(t, s.Login(context.Background(), "alice", []byte("pw")).OK)

	require.NoError(t, s.Logout(context.Background()))
	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Equal(t, 2, cookies.cleared)

	// Persisted state is gone: a fresh store must start unauthenticated.
	fresh := newStore(t, db, &fakeAPI{}, &fakeCookies{})
	assert.False(t, fresh.IsAuthenticated())
}

func TestHydrate_ExpiredStoredExpiry_StartsUnauthenticated(t *testing.T) {
	db := setupDB(t)
	apiClient := &fakeAPI{loginToken: "tok"}
	s := newStore(t, db, apiClient, &fakeCookies{})
	s.tokenTTL = -time.Hour // persist an already-passed expiry
	require.True(t, s.Login(context.Background(), "alice", []byte("pw")).OK)

	fresh := newStore(t, db, &fakeAPI{}, &fakeCookies{})
	assert.False(t, fresh.IsAuthenticated())
	assert.Empty(t, fresh.Token())
}

func TestHydrate_ExpiredJWTClaim_StartsUnauthenticated(t *testing.T) {
	db := setupDB(t)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	apiClient := &fakeAPI{loginToken: expired}
	s := newStore(t, db, apiClient, &fakeCookies{})
	// Login itself succeeds: the store trusts what the server issued.
	require.True(t, s.Login(context.Background(), "alice", []byte("pw")).OK)

	// But rehydration inspects the embedded expiry claim and rejects it.
	fresh := newStore(t, db, &fakeAPI{}, &fakeCookies{})
	assert.False(t, fresh.IsAuthenticated())
}

func TestCurrent_SnapshotCopiesUser(t *testing.T) {
	db := setupDB(t)
	s := newStore(t, db, &fakeAPI{loginToken: "tok"}, &fakeCookies{})
	require.True(t, s.Login(context.Background(), "alice", []byte("pw")).OK)

	snap := s.Current()
	require.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)

	snap.User.Username = "mallory"
	assert.Equal(t, "alice", s.User().Username, "snapshot must be a copy")
}
