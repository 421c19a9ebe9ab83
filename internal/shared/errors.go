package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthDenied          = fmt.Errorf("authorization denied")
	ErrMissingVerifier     = fmt.Errorf("code verifier not found")
	ErrTokenExchangeFailed = fmt.Errorf("token exchange failed")
	ErrTokenRejected       = fmt.Errorf("access token rejected")
	ErrNotAuthenticated    = fmt.Errorf("not authenticated")
	ErrVerifierStorage     = fmt.Errorf("code verifier storage failed")
	ErrTimeout             = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrSaveFailed         = fmt.Errorf("playlist save failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDraftNotFound      = fmt.Errorf("playlist draft not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
