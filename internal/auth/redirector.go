package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/jamming/internal/shared"
)

// Redirector starts an authorization by persisting a fresh verifier and navigating to the consent page.
type Redirector struct {
	oauth     *oauth2.Config
	store     VerifierStore
	navigator Navigator
	logger    *log.Logger
}

func NewRedirector(cfg ClientConfig, store VerifierStore, nav Navigator, logger *log.Logger) *Redirector {
	if logger == nil {
		logger = shared.NopLogger()
	}
	if nav == nil {
		nav = BrowserNavigator{}
	}
	return &Redirector{oauth: cfg.OAuth2(), store: store, navigator: nav, logger: logger}
}

// AuthorizationURL builds the consent URL for challenge. No state parameter is sent.
func (r *Redirector) AuthorizationURL(challenge string) string {
	return r.oauth.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge_method", ChallengeMethod),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
}

// BeginAuthorization overwrites any stored verifier with a new one and sends the user to the provider.
//
// A navigation failure is logged and the URL is still returned so callers
// can show it to the user.
func (r *Redirector) BeginAuthorization(ctx context.Context) (Outcome, error) {
	pair := NewPKCE(VerifierLength)
	if err := r.store.Save(pair.Verifier); err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}, fmt.Errorf("failed to save code verifier: %w", err)
	}

	authURL := r.AuthorizationURL(pair.Challenge)
	r.logger.Debug("redirecting to authorization page", "verifier_stored", true)

	if err := r.navigator.Navigate(ctx, authURL); err != nil {
		r.logger.Warn("failed to open authorization page", "error", err)
	}

	return Outcome{Kind: OutcomeRedirecting, AuthURL: authURL}, nil
}
