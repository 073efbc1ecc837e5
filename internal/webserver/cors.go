package webserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ResolveOrigin matches a request Origin against the allow-list and returns
// the value for Access-Control-Allow-Origin. Entries match exactly, by
// prefix ("https://preview-*"), or by wildcard domain ("https://*.bitminded.ch").
// An unmatched origin falls back to the first configured entry.
func ResolveOrigin(origin string, allowed []string) string {
	if len(allowed) == 0 {
		return ""
	}
	if origin != "" {
		for _, entry := range allowed {
			if originMatches(origin, entry) {
				return origin
			}
		}
	}
	return allowed[0]
}

func originMatches(origin, entry string) bool {
	if entry == origin {
		return true
	}
	if strings.HasSuffix(entry, "*") {
		return strings.HasPrefix(origin, strings.TrimSuffix(entry, "*"))
	}
	if i := strings.Index(entry, "*."); i >= 0 {
		scheme := entry[:i]
		domain := entry[i+1:] // ".bitminded.ch"
		return strings.HasPrefix(origin, scheme) && strings.HasSuffix(origin, domain)
	}
	return false
}

// NewCORSMiddleware applies the allow-list to every response and terminates
// OPTIONS preflights.
func NewCORSMiddleware(allowed []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, ResolveOrigin(origin, allowed))
			h.Set(echo.HeaderAccessControlAllowHeaders, "Authorization, Content-Type")
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
