package session

import "github.com/coursedesk/coursedesk-server/internal/model"

// ViewKind classifies what a view requires from the session.
type ViewKind int

const (
	// ViewPublic needs no session at all.
	ViewPublic ViewKind = iota
	// ViewProtected needs a fully authenticated session.
	ViewProtected
	// ViewPasswordUpdate accepts a recovery-restricted session.
	ViewPasswordUpdate
)

// Decision is the gate's verdict for a view.
type Decision int

const (
	// DecisionWait means the session is still resolving; render nothing yet.
	DecisionWait Decision = iota
	// DecisionRedirectToLogin means the session does not satisfy the view.
	DecisionRedirectToLogin
	// DecisionAllow means the view may render.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirectToLogin:
		return "redirect_to_login"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Gate decides view access from the store's current snapshot.
//
// A pending snapshot always yields Wait, never a redirect: redirecting
// before the initial resolution lands would bounce users who do hold a
// valid session. A restricted session opens only the password-update view.
type Gate struct {
	store *Store
}

func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

func (g *Gate) Decide(view ViewKind) Decision {
	if view == ViewPublic {
		return DecisionAllow
	}

	snapshot := g.store.Current()
	switch {
	case snapshot.State == model.SessionPending || snapshot.State == "":
		return DecisionWait
	case snapshot.Authenticated():
		return DecisionAllow
	case snapshot.State == model.SessionAuthenticated && snapshot.Restricted && view == ViewPasswordUpdate:
		return DecisionAllow
	default:
		return DecisionRedirectToLogin
	}
}
