// Package guard holds the single role-gating decision function consumed by
// every protected view, replacing per-page redirect conditionals.
package guard

import (
	"learnhub/models"
	"learnhub/session"
)

type Action int

const (
	Show Action = iota
	Redirect
	Wait
)

type Decision struct {
	Action Action
	Path   string
}

const LoginPath = "/login"

// DashboardPath maps a role to its dashboard. Unrecognized roles land on the
// site root.
func DashboardPath(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "/student-dashboard"
	case models.RoleInstructor:
		return "/instructor-dashboard"
	case models.RoleAdmin:
		return "/admin-dashboard"
	default:
		return "/"
	}
}

// Evaluate decides whether a view may be shown for the given session state.
// An empty required role enforces authentication only. While the snapshot is
// loading no redirect is issued; redirecting before identity resolves would
// flash anonymous users away from pages they are allowed to see.
func Evaluate(s session.Snapshot, required models.Role) Decision {
	if s.IsLoading {
		return Decision{Action: Wait}
	}

	if s.Viewer == nil {
		return Decision{Action: Redirect, Path: LoginPath}
	}

	if required != "" {
		var role models.Role
		if s.Profile != nil {
			role = s.Profile.Role
		}
		if role != required {
			return Decision{Action: Redirect, Path: DashboardPath(role)}
		}
	}

	return Decision{Action: Show}
}

// Watch re-evaluates the decision on every store notification and calls
// navigate for redirect decisions, so a viewer who signs out while on a
// protected page is moved away immediately. The returned function stops
// watching.
func Watch(store *session.Store, required models.Role, navigate func(path string)) func() {
	apply := func(snap session.Snapshot) {
		if d := Evaluate(snap, required); d.Action == Redirect {
			navigate(d.Path)
		}
	}

	unsubscribe := store.Subscribe(apply)
	apply(store.Snapshot())
	return unsubscribe
}
