package session

import "github.com/gofiber/fiber/v2"

// Context carries the request headers for a single API call. It replaces the
// page-global header mutation of the legacy front end: each call receives its
// own immutable copy, so clearing the session can never race an in-flight
// request.
type Context struct {
	authToken string
	csrfToken string
}

// Anonymous returns a context with no credentials attached.
func Anonymous() Context {
	return Context{}
}

// Authenticated builds a context carrying the bearer token, when present.
func (s *Store) Authenticated() Context {
	token, _ := s.Token()
	return Context{authToken: token}
}

// StateChanging builds a context for POST/PATCH calls, carrying both the
// bearer token and the CSRF token.
func (s *Store) StateChanging() Context {
	ctx := s.Authenticated()
	ctx.csrfToken, _ = s.CSRFToken()
	return ctx
}

// CrossSite builds a context carrying only the CSRF token, for the user
// creation call that must not reuse a stale session.
func (s *Store) CrossSite() Context {
	token, _ := s.CSRFToken()
	return Context{csrfToken: token}
}

// Headers lists the HTTP headers this context attaches.
func (c Context) Headers() map[string]string {
	headers := make(map[string]string)
	if len(c.authToken) > 0 {
		headers[fiber.HeaderAuthorization] = "Token " + c.authToken
	}
	if len(c.csrfToken) > 0 {
		headers["X-CSRFToken"] = c.csrfToken
	}
	return headers
}

// CSRFCookie returns the cookie value the backend pairs with the CSRF header.
func (c Context) CSRFCookie() (string, bool) {
	return c.csrfToken, len(c.csrfToken) > 0
}

// IsAuthenticated reports whether the context carries a token.
func (c Context) IsAuthenticated() bool {
	return len(c.authToken) > 0
}
