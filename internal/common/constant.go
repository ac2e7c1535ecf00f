package common

// AuthCookieName is the cookie that carries the bearer credential on
// requests to the backend, mirroring the name the backend sets.
const AuthCookieName = "token"

// RequestIDHeaderName carries a per-request correlation id for log matching.
const RequestIDHeaderName = "X-Request-Id"
