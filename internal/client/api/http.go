package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkalvans/cvadvisor/internal/client/models"
	"github.com/mkalvans/cvadvisor/internal/common"
	"github.com/mkalvans/cvadvisor/internal/logging"
)

// maxErrorBodySize caps how much of an error response body is read when
// surfacing it as an error message.
const maxErrorBodySize = 4 << 10

// HTTPClient is the concrete Client over net/http. It keeps a cookie jar so
// cookies set by the backend travel with every request (the browser client's
// credentials-include behavior) and attaches the bearer token from the
// configured TokenSource.
type HTTPClient struct {
	base   *url.URL
	hc     *http.Client
	jar    *cookiejar.Jar
	tokens TokenSource
	logger logging.Logger
}

// NewHTTPClient builds a client for the backend rooted at baseURL.
// The timeout applies per request, uploads included.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &HTTPClient{
		base:   base,
		jar:    jar,
		hc:     &http.Client{Timeout: timeout, Jar: jar},
		logger: logger.With("component", "api"),
	}, nil
}

// SetTokenSource wires the session store in after construction. The store
// needs the client for login, so the dependency cannot be a constructor arg.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// SetAuthCookie stores the bearer credential as the "token" cookie the
// backend expects, with the same attributes the browser client used
// (expiry, Secure, SameSite=Lax). The jar refuses to send Secure cookies
// over plain http, so the attribute tracks the base URL scheme.
func (c *HTTPClient) SetAuthCookie(token string, expires time.Time) {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:     common.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   c.base.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
	}})
}

// ClearAuthCookie drops the token cookie on logout.
func (c *HTTPClient) ClearAuthCookie() {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:    common.AuthCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	}})
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do executes the request and maps failures into the common error taxonomy.
// Transport errors become ErrUnavailable; a 401 becomes ErrUnauthorized.
// Other non-2xx statuses are left to per-operation handling via the returned
// response.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Warn(req.Context(), "request failed",
			"method", req.Method, "url", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, common.ErrUnauthorized
	}
	return resp, nil
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// statusError reads (a bounded prefix of) the body and wraps it into an
// error carrying the HTTP status.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return fmt.Errorf("server returned %s: %s", resp.Status, text)
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login posts credentials url-encoded to /auth/login and extracts the
// access_token field. A 2xx body without the token is a contract violation
// and reported as ErrMalformedResponse.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return "", statusError(resp)
	}

	var lr loginResponse
	if err := decodeJSON(resp, &lr); err != nil {
		return "", err
	}
	if lr.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token received", common.ErrMalformedResponse)
	}

	c.logger.Debug(ctx, "login succeeded", "username", username)
	return lr.AccessToken, nil
}

type registerFailure struct {
	Error string `json:"error"`
}

// Register posts credentials url-encoded to /auth/register. On failure the
// backend puts a human-readable message in the body's "error" field, which
// is surfaced verbatim.
func (c *HTTPClient) Register(ctx context.Context, username string, password []byte, email string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))
	form.Set("email", email)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/register", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if ok(resp) {
		return nil
	}

	var rf registerFailure
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&rf); err == nil && rf.Error != "" {
		return fmt.Errorf("%s", rf.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

// analysisResult is the canonical analysis shape: the backend's direct
// analysisResult object. The chat-completion-style envelope some backend
// variants emit is not part of this client's contract.
type analysisResult struct {
	Summary               string `json:"summary"`
	SuggestedImprovements string `json:"suggestedImprovements"`
}

type uploadResponse struct {
	CVID           int64           `json:"cvId"`
	AnalysisResult *analysisResult `json:"analysisResult"`
}

// UploadCV sends the file as the "file" part of a multipart/form-data POST
// to /api/cv/upload and decodes the analysis payload.
func (c *HTTPClient) UploadCV(ctx context.Context, fileName string, file io.Reader) (*models.Analysis, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read cv file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/cv/upload", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return nil, statusError(resp)
	}

	var ur uploadResponse
	if err := decodeJSON(resp, &ur); err != nil {
		return nil, err
	}
	if ur.AnalysisResult == nil || ur.AnalysisResult.Summary == "" {
		return nil, fmt.Errorf("%w: analysis result missing", common.ErrMalformedResponse)
	}

	c.logger.Debug(ctx, "cv analyzed", "cv_id", ur.CVID)
	return &models.Analysis{
		CVID:                  ur.CVID,
		Summary:               ur.AnalysisResult.Summary,
		SuggestedImprovements: ur.AnalysisResult.SuggestedImprovements,
	}, nil
}

// CreateCV stores a structured CV profile via POST /api/cvs as JSON.
func (c *HTTPClient) CreateCV(ctx context.Context, profile *models.CVProfile) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/cvs", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return statusError(resp)
	}
	return nil
}

type recommendationsResponse struct {
	Matches []models.JobMatch `json:"matches"`
}

// Recommendations fetches job matches for a CV id. The endpoint is a POST
// with the id in the query string and no body; on failure the response body
// text is the error message.
func (c *HTTPClient) Recommendations(ctx context.Context, cvID string) ([]models.JobMatch, error) {
	query := url.Values{}
	query.Set("cvId", cvID)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/cv/recommendations", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return nil, statusError(resp)
	}

	var rr recommendationsResponse
	if err := decodeJSON(resp, &rr); err != nil {
		return nil, err
	}
	return rr.Matches, nil
}

// favoritePayload is the job subset persisted as a favorite; match reasons
// stay client-side.
type favoritePayload struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Expires     string `json:"expires"`
	Description string `json:"description"`
	MatchScore  int    `json:"matchScore"`
}

// AddFavorite saves a job listing via POST /api/favorites.
func (c *HTTPClient) AddFavorite(ctx context.Context, job models.JobMatch) error {
	body, err := json.Marshal(favoritePayload{
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Link:        job.Link,
		Expires:     job.Expires,
		Description: job.Description,
		MatchScore:  job.MatchScore,
	})
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/favorites", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return statusError(resp)
	}
	return nil
}
