// Package api implements the HTTP contract of the resume-analysis backend.
// Every network call the client makes goes through the Client interface so
// the rest of the application can be tested against a fake.
package api

import (
	"context"
	"io"

	"github.com/mkalvans/cvadvisor/internal/client/models"
)

// Client is the surface of the remote backend as consumed by this client.
//
// Error contract: implementations convert failure modes into the sentinels
// of internal/common so callers can distinguish them with errors.Is:
//   - common.ErrUnavailable for transport failures,
//   - common.ErrUnauthorized for 401 responses,
//   - common.ErrMalformedResponse for undecodable or incomplete bodies.
//
// All methods honor context cancellation.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username string, password []byte) (string, error)

	// Register creates an account. A successful registration does not
	// authenticate: no token is issued.
	Register(ctx context.Context, username string, password []byte, email string) error

	// UploadCV submits a CV file for analysis and returns the feedback.
	UploadCV(ctx context.Context, fileName string, file io.Reader) (*models.Analysis, error)

	// CreateCV stores a structured CV profile record.
	CreateCV(ctx context.Context, profile *models.CVProfile) error

	// Recommendations fetches job matches for a previously analyzed CV.
	Recommendations(ctx context.Context, cvID string) ([]models.JobMatch, error)

	// AddFavorite saves a job listing to the user's favorites.
	AddFavorite(ctx context.Context, job models.JobMatch) error
}

// TokenSource supplies the bearer credential attached to authenticated
// requests. The session store is the only implementation; no other package
// reads the token directly.
type TokenSource interface {
	Token() string
}
