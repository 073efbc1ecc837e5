package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/webserver"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/crm/settings", listSettings)
	webserver.ApiPOST("/crm/settings", saveSettings)
}

func listSettings(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	db := GetDB(c).Model(&domain.SysConfig{})
	if category != "" {
		db = db.Where("type = ?", category)
	}
	var rows []domain.SysConfig
	if err := db.Order("type, name").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, rows)
}

// saveSettings upserts a batch of "category.name" → value pairs through the
// config manager so the cache is refreshed along with the rows.
func saveSettings(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	for key := range payload {
		if !strings.Contains(key, ".") {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST",
				"Setting keys must be category.name", key)
		}
	}
	if err := GetApp(c).ConfigMgr().Save(payload); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save settings", err.Error())
	}
	writeOprLog(c, "settings_save", strings.Join(mapKeys(payload), ","))
	return ok(c, map[string]interface{}{"saved": len(payload)})
}

func mapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
