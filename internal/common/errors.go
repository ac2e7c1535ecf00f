// Package common defines shared constants and sentinel errors used across
// the CV Advisor client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Transport-level errors (connection refused, DNS failure, timeout).
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors: missing/expired session or a 401 from the backend.
	ErrUnauthorized = errors.New("unauthorized")
	ErrAuthRequired = errors.New("authentication required")

	// Protocol errors: the body decoded but is not what the contract
	// promises (invalid JSON, missing expected fields).
	ErrMalformedResponse = errors.New("malformed server response")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Local store errors.
	ErrNotFound = errors.New("not found")
)
