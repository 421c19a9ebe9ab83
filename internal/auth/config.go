package auth

import (
	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://accounts.spotify.com/authorize"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultScope    = "user-read-private playlist-modify-public playlist-modify-private"
)

// ClientConfig identifies the public client registered with Spotify.
//
// There is no client secret: possession of the verifier proves the caller
// started the authorization.
type ClientConfig struct {
	ClientID    string
	RedirectURI string
	Scope       string
	AuthURL     string
	TokenURL    string
}

// OAuth2 returns the equivalent [oauth2.Config], filling in Spotify's endpoints when unset.
func (c ClientConfig) OAuth2() *oauth2.Config {
	authURL, tokenURL := c.AuthURL, c.TokenURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	var scopes []string
	if c.Scope != "" {
		scopes = []string{c.Scope}
	}

	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
