package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestResolveOrigin(t *testing.T) {
	allowed := []string{
		"https://admin.bitminded.ch",
		"https://preview-*",
		"https://*.bitminded.ch",
	}

	cases := []struct {
		name   string
		origin string
		want   string
	}{
		{"exact", "https://admin.bitminded.ch", "https://admin.bitminded.ch"},
		{"prefix star", "https://preview-42.pages.dev", "https://preview-42.pages.dev"},
		{"wildcard domain", "https://shop.bitminded.ch", "https://shop.bitminded.ch"},
		{"unmatched falls back to first", "https://evil.example.com", "https://admin.bitminded.ch"},
		{"empty origin falls back", "", "https://admin.bitminded.ch"},
		{"wildcard needs scheme match", "http://shop.bitminded.ch", "https://admin.bitminded.ch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveOrigin(tc.origin, allowed))
		})
	}
}

func TestResolveOriginEmptyAllowList(t *testing.T) {
	assert.Equal(t, "", ResolveOrigin("https://anywhere.example.com", nil))
}

func TestCORSMiddlewareSetsHeaders(t *testing.T) {
	e := echo.New()
	e.Use(NewCORSMiddleware([]string{"https://admin.bitminded.ch"}))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://admin.bitminded.ch")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://admin.bitminded.ch", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "Authorization")
}

func TestCORSMiddlewareTerminatesPreflight(t *testing.T) {
	e := echo.New()
	e.Use(NewCORSMiddleware([]string{"https://admin.bitminded.ch"}))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://admin.bitminded.ch")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "https://admin.bitminded.ch", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
