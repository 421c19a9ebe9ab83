package auth

// OutcomeKind tags the result of [Session.GetAccessToken].
type OutcomeKind int

const (
	// OutcomeAuthenticated means a token was returned.
	OutcomeAuthenticated OutcomeKind = iota
	// OutcomeRedirecting means the user was sent to the authorization page.
	// The current operation cannot continue until the redirect comes back.
	OutcomeRedirecting
	// OutcomeDenied means the provider redirected back with an error.
	OutcomeDenied
	// OutcomeFailed means the code exchange or the redirect itself failed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeRedirecting:
		return "redirecting"
	case OutcomeDenied:
		return "denied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome describes how an access token request ended.
type Outcome struct {
	Kind    OutcomeKind
	AuthURL string // set when Kind is OutcomeRedirecting
	Err     error  // set when Kind is OutcomeDenied or OutcomeFailed
}

// OK reports whether a token was obtained.
func (o Outcome) OK() bool { return o.Kind == OutcomeAuthenticated }
