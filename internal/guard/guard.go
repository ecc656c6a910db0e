// Package guard gates access to protected routes based on session state.
package guard

import (
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/models"
	"shopfront/internal/session"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow renders the protected content unchanged.
	Allow Decision = iota
	// RedirectLogin sends a logged-out visitor to the login page.
	RedirectLogin
	// RedirectHome sends a logged-in visitor without the required role to
	// the safe default.
	RedirectHome
)

// Paths the redirect decisions resolve to.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Check is the pure guard decision. A zero required role means any
// logged-in user may pass. It consults nothing but its arguments: no
// fetching, no caching, no async work.
func Check(loggedIn bool, role, required models.Role) Decision {
	if !loggedIn {
		return RedirectLogin
	}
	if required != "" && role != required {
		return RedirectHome
	}
	return Allow
}

// Protected returns a Fiber middleware applying Check against the session
// manager at request time. Redirects are synchronous 302s issued before any
// protected handler runs.
func Protected(sessions *session.Manager, required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := sessions.Current()
		switch Check(ok, user.Role, required) {
		case RedirectLogin:
			return c.Redirect(LoginPath, fiber.StatusFound)
		case RedirectHome:
			return c.Redirect(HomePath, fiber.StatusFound)
		}
		return c.Next()
	}
}
