package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultLoginPath is where unauthenticated requests are sent.
const DefaultLoginPath = "/login"

// SessionChecker reports whether an operator is signed in.
type SessionChecker interface {
	Authenticated() bool
}

// GateOptions configures RequireSession.
type GateOptions struct {
	LoginPath string
}

// RequireSession lets the request through only while a session exists and
// otherwise redirects to the login route with 303 See Other.
func RequireSession(sessions SessionChecker, opts GateOptions) fiber.Handler {
	loginPath := strings.TrimSpace(opts.LoginPath)
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	return func(c *fiber.Ctx) error {
		if sessions == nil || !sessions.Authenticated() {
			return RedirectToLogin(c, loginPath)
		}
		c.Locals("session_active", true)
		return c.Next()
	}
}

// RedirectToLogin sends the login-required signal.
func RedirectToLogin(c *fiber.Ctx, loginPath string) error {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	c.Set("X-Login-Required", "true")
	return c.Redirect(loginPath, fiber.StatusSeeOther)
}
