package ports

import "errors"

// Standard application-level errors.
// Adapters and the engine wrap underlying failures with these so callers can use errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Collaborator Errors
	ErrPositionUnavailable  = errors.New("portfolio position unavailable")
	ErrOrderRejected        = errors.New("order rejected by broker")
	ErrOrderPlacementFailed = errors.New("failed to place order")
	ErrSymbolMismatch       = errors.New("bar symbol does not match engine symbol")
	ErrStepPanic            = errors.New("panic while evaluating step")

	// Market Data Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
