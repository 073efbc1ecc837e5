package adminapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitminded/backoffice/internal/app"
	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/github"
	"github.com/bitminded/backoffice/internal/mailer"
	"github.com/bitminded/backoffice/internal/ratelimit"
	"github.com/bitminded/backoffice/internal/scaffold"
	"github.com/bitminded/backoffice/internal/stripe"
	"github.com/bitminded/backoffice/internal/webserver"
	"github.com/bitminded/backoffice/pkg/common"
)

// Package-level collaborators, wired once by InitRouter.
var (
	ghClient     *github.Client
	stripeClient *stripe.Client
	mail         *mailer.Mailer
	limiter      *ratelimit.Limiter
	orchestrator *scaffold.Orchestrator
)

// InitRouter wires the vendor clients and registers every admin route.
func InitRouter(appctx app.AppContext) {
	cfg := appctx.Config()
	ghClient = github.New(cfg.Github)
	stripeClient = stripe.New(cfg.Stripe)
	mail = mailer.New(appctx.DB(), cfg.Mail)
	limiter = ratelimit.New(appctx.DB())
	orchestrator = scaffold.NewOrchestrator(ghClient, cfg.Github.PagesDomain)

	// Suspension emails are fired off the bus so the suspend action never
	// blocks on mail delivery.
	_ = appctx.Bus().SubscribeAsync(app.EventUserSuspended, func(userID int64, reason string) {
		if !appctx.GetSettingsBoolValue("mail", "enabled") {
			return
		}
		err := mail.Notify(context.Background(), userID, mailer.NotifyAccountSuspended, map[string]string{
			"timestamp": time.Now().Format(time.RFC1123),
			"reason":    reason,
		})
		if err != nil && err != mailer.ErrNotificationDisabled {
			zap.L().Warn("suspension email failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}, false)

	webserver.PubPOST("/login", login)

	registerProductRoutes()
	registerServiceRoutes()
	registerUserRoutes()
	registerExportRoutes()
	registerSettingsRoutes()
}

type apiResponse struct {
	Code     string      `json:"code"`
	Msg      string      `json:"msg,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Detail   interface{} `json:"detail,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: "OK", Data: data})
}

// okWarn reports success with the best-effort failures that occurred along
// the way, so the UI can surface them instead of losing them in logs.
func okWarn(c echo.Context, data interface{}, warnings []string) error {
	return c.JSON(http.StatusOK, apiResponse{Code: "OK", Data: data, Warnings: warnings})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: code, Msg: msg, Detail: detail})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return ok(c, map[string]interface{}{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetApp returns the application context injected by the webserver.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(webserver.ContextAppKey).(app.AppContext)
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return GetApp(c).DB()
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// currentOperator reads the operator username from the verified JWT.
func currentOperator(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if usr, ok := claims["usr"].(string); ok {
		return usr
	}
	return ""
}

// writeOprLog appends an operator audit entry; failures are deliberately
// ignored so auditing never blocks the action itself.
func writeOprLog(c echo.Context, action, desc string) {
	_ = GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   currentOperator(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
}

// checkRateLimit consults the limiter using settings-driven thresholds and
// writes the 429 response itself when the caller is over budget.
func checkRateLimit(c echo.Context, function, settingPrefix string) (allowed bool, err error) {
	appctx := GetApp(c)
	lim := ratelimit.Limits{
		PerMinute: int(appctx.GetSettingsInt64Value("ratelimit", settingPrefix+"_per_minute")),
		PerHour:   int(appctx.GetSettingsInt64Value("ratelimit", settingPrefix+"_per_hour")),
	}
	identifier := currentOperator(c)
	identifierType := ratelimit.IdentifierUser
	if identifier == "" {
		identifier = c.RealIP()
		identifierType = ratelimit.IdentifierIP
	}
	res := limiter.Allow(identifier, identifierType, function, lim)
	if res.Allowed {
		return true, nil
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
	return false, fail(c, http.StatusTooManyRequests, "RATE_LIMITED",
		"Too many requests, retry later", map[string]int{"retry_after": res.RetryAfter})
}
