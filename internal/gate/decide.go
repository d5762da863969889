package gate

import (
	"net/url"
	"path"
	"strings"
)

// Class is the route class a navigational path belongs to.
type Class string

const (
	ClassProtected  Class = "protected"
	ClassPublicAuth Class = "public_auth"
	ClassOnboarding Class = "onboarding"
	ClassOther      Class = "other"
)

// Well-known navigation targets.
const (
	PathLogin      = "/login"
	PathRegister   = "/register"
	PathOnboarding = "/onboarding"
	PathDashboard  = "/dashboard"
	PathHome       = "/"

	// CallbackParam carries the originally requested URL on login redirects.
	CallbackParam = "callbackUrl"
)

// Classify maps a request path to its route class. A route owns its exact
// path and every descendant; "/dashboards" is not under "/dashboard".
func Classify(p string) Class {
	if p == "" {
		p = "/"
	}
	p = path.Clean("/" + p)

	switch {
	case under(p, PathDashboard):
		return ClassProtected
	case under(p, PathLogin), under(p, PathRegister):
		return ClassPublicAuth
	case under(p, PathOnboarding):
		return ClassOnboarding
	default:
		return ClassOther
	}
}

func under(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+"/")
}

// State is what the gate knows about the caller. OnboardingCompleted is nil
// when unknown, which is treated as incomplete.
type State struct {
	LoggedIn            bool
	OnboardingCompleted *bool
}

func (s State) completed() bool {
	return s.OnboardingCompleted != nil && *s.OnboardingCompleted
}

// Action is the outcome of a gate decision.
type Action string

const (
	ActionAllow              Action = "allow"
	ActionRedirectLogin      Action = "redirect_login"
	ActionRedirectOnboarding Action = "redirect_onboarding"
	ActionRedirectDashboard  Action = "redirect_dashboard"
	ActionRedirectHome       Action = "redirect_home"
)

// Decision is an action plus its redirect target, if any.
type Decision struct {
	Action Action
	Target string
}

// Allowed reports whether the request passes through.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Location is the Location header for a redirect decision. Login redirects
// carry original, the requested path and query, as the callback target. The
// path is cleaned so the callback always starts with a single slash.
func (d Decision) Location(original string) string {
	if d.Action != ActionRedirectLogin || original == "" {
		return d.Target
	}
	p, query, hasQuery := strings.Cut(original, "?")
	target := path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))
	if hasQuery {
		target += "?" + query
	}
	cb := strings.ReplaceAll(url.QueryEscape(target), "%2F", "/")
	return d.Target + "?" + CallbackParam + "=" + cb
}

var (
	allow              = Decision{Action: ActionAllow}
	redirectLogin      = Decision{Action: ActionRedirectLogin, Target: PathLogin}
	redirectOnboarding = Decision{Action: ActionRedirectOnboarding, Target: PathOnboarding}
	redirectDashboard  = Decision{Action: ActionRedirectDashboard, Target: PathDashboard}
	redirectHome       = Decision{Action: ActionRedirectHome, Target: PathHome}
)

// Decide is the gate transition function. Authentication is checked before
// onboarding, and onboarding only for protected and onboarding routes.
func Decide(class Class, s State) Decision {
	switch class {
	case ClassProtected:
		if !s.LoggedIn {
			return redirectLogin
		}
		if !s.completed() {
			return redirectOnboarding
		}
		return allow
	case ClassPublicAuth:
		if s.LoggedIn {
			return redirectHome
		}
		return allow
	case ClassOnboarding:
		if !s.LoggedIn {
			return redirectLogin
		}
		if s.completed() {
			return redirectDashboard
		}
		return allow
	default:
		return allow
	}
}
