package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/pkg/common"
)

const tokenTTL = 8 * time.Hour

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// login verifies operator credentials and issues the API access token.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request", err.Error())
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	var operator domain.SysOpr
	if err := GetDB(c).Where("username = ?", payload.Username).First(&operator).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if !strings.EqualFold(operator.Status, common.ENABLED) {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Operator account is disabled", nil)
	}
	if !common.CheckPassword(operator.Password, payload.Password) {
		zap.L().Warn("operator login failed", zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": operator.ID,
		"usr": operator.Username,
		"lvl": operator.Level,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
	})
	signed, err := token.SignedString([]byte(GetApp(c).Config().Web.Secret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign access token", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Update("last_login", now)
	_ = GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   operator.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "operator signed in",
		OptTime:   now,
	}).Error

	return ok(c, map[string]interface{}{
		"token":    signed,
		"username": operator.Username,
		"level":    operator.Level,
		"expires":  now.Add(tokenTTL).Unix(),
	})
}
