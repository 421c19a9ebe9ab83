package auth

import (
	"fmt"

	"github.com/desertthunder/jamming/internal/shared"
)

// AuthDeniedError is returned when the redirect carries an error parameter.
type AuthDeniedError struct {
	Reason      string
	Description string
}

func (e *AuthDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%v: %s (%s)", shared.ErrAuthDenied, e.Reason, e.Description)
	}
	return fmt.Sprintf("%v: %s", shared.ErrAuthDenied, e.Reason)
}

func (e *AuthDeniedError) Unwrap() error { return shared.ErrAuthDenied }

// TokenExchangeError is returned when the token endpoint answers with a non-2xx status.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrTokenExchangeFailed, e.Status, e.Body)
}

func (e *TokenExchangeError) Unwrap() error { return shared.ErrTokenExchangeFailed }
