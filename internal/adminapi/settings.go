package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", updateSettings)
}

func listSettings(c echo.Context) error {
	var configs []domain.SysConfig
	query := GetDB(c).Model(&domain.SysConfig{}).Order("sort ASC")
	if ctype := c.QueryParam("type"); ctype != "" {
		query = query.Where("type = ?", ctype)
	}
	if err := query.Find(&configs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, configs)
}

type settingPayload struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// updateSettings accepts a batch of setting values keyed by type and name.
func updateSettings(c echo.Context) error {
	var payload []settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	db := GetDB(c)
	for _, item := range payload {
		item.Type = strings.TrimSpace(item.Type)
		item.Name = strings.TrimSpace(item.Name)
		if item.Type == "" || item.Name == "" {
			continue
		}
		if err := db.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", item.Type, item.Name).
			Update("value", item.Value).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
		}
	}
	writeOprLog(c, "update", "updated system settings")
	return okMsg(c, "settings saved", nil)
}
