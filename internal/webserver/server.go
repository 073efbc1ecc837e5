package webserver

import (
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/app"
	"github.com/bitminded/backoffice/pkg/metrics"
)

// ContextAppKey is the echo context key holding the application context.
const ContextAppKey = "appctx"

var server *WebServer

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appctx app.AppContext
}

// Init builds the echo server: panic recovery, request logging, CORS
// allow-list, app-context injection, and a JWT-guarded /api group.
func Init(appctx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(NewCORSMiddleware(appctx.Config().AllowedOrigins))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextAppKey, appctx)
			metrics.Inc(metrics.MetricApiRequests)
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)))
			return err
		}
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appctx.Config().Web.Secret),
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code": "UNAUTHORIZED",
				"msg":  "Missing or invalid access token",
			})
		},
	}))

	server = &WebServer{root: e, api: api, appctx: appctx}
	return server
}

// Listen starts serving on the configured host and port.
func Listen() error {
	cfg := server.appctx.Config().Web
	return server.root.Start(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
}

// Shutdown stops the HTTP server.
func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// Echo exposes the underlying echo instance (tests).
func Echo() *echo.Echo {
	return server.root
}

// ApiGET registers an authenticated GET route under /api.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers an authenticated POST route under /api.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers an authenticated PUT route under /api.
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers an authenticated DELETE route under /api.
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// PubPOST registers an unauthenticated POST route (login).
func PubPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}
