package service

import (
	"net/url"
	"strings"

	"github.com/sumire/careerpath/internal/domain"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

// Prefixes that are reachable whatever the session state.
var alwaysAllowedPrefixes = []string{
	"/api/auth",
	"/api/occupations",
}

// Pages meant only for visitors who are not logged in.
var guestPages = []string{
	LoginPath,
	"/register",
	"/forgot-password",
	"/reset-password",
	"/verify-email",
}

// DecisionKind is the outcome of an access check.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Deny
	Redirect
)

// Decision tells the transport what to do with a request.
// Location is set for Redirect, and for Deny it is the login page to send the visitor to.
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Access decides whether a request for path may proceed given session, which is nil
// for anonymous visitors.
func Access(session *domain.Session, path string) Decision {
	if hasAnyPrefix(path, alwaysAllowedPrefixes) {
		return Decision{Kind: Allow}
	}

	loggedIn := session != nil
	guestPage := hasAnyPrefix(path, guestPages)

	switch {
	case loggedIn && guestPage:
		return Decision{Kind: Redirect, Location: HomePath}
	case !loggedIn && guestPage:
		return Decision{Kind: Allow}
	case !loggedIn:
		return Decision{Kind: Deny, Location: LoginPath + "?callbackUrl=" + url.QueryEscape(path)}
	default:
		return Decision{Kind: Allow}
	}
}

// hasAnyPrefix matches whole path segments, so "/login" matches "/login/x" but not "/loginx".
func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
