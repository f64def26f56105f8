package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/pricelist"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
	"github.com/harings-be/commerce-pricelist/pkg/common"
)

// Init registers all admin api routes. Call after webserver.Init.
func Init() {
	registerOperatorRoutes()
	registerProductRoutes()
	registerPriceListRoutes()
	registerPriceListItemRoutes()
	registerSettingsRoutes()
}

type apiResponse struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	ErrCode string      `json:"err_code,omitempty"`
}

type pagedResponse struct {
	Code     int         `json:"code"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: 0, Data: data})
}

func okMsg(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: 0, Msg: msg, Data: data})
}

func fail(c echo.Context, status int, errCode, msg string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: 1, ErrCode: errCode, Msg: msg, Detail: detail})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{
		Code:     0,
		Data:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	pageSize = cast.ToInt(c.QueryParam("perPage"))
	if pageSize <= 0 {
		pageSize = cast.ToInt(c.QueryParam("pageSize"))
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 500 {
		pageSize = 500
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// GetDB returns the request-scoped database handle injected by the webserver.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

func getService(c echo.Context) *pricelist.Service {
	db := GetDB(c)
	return pricelist.NewService(db, pricelist.DefaultResolverRegistry(db))
}

// currentOperator reads the operator identity from the request's JWT claims.
func currentOperator(c echo.Context) (id int64, username string) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ""
	}
	return cast.ToInt64(claims["oid"]), cast.ToString(claims["usr"])
}

// writeOprLog records an admin mutation in the audit log. Failures are ignored;
// the audit trail never fails the operation it describes.
func writeOprLog(c echo.Context, action, desc string) {
	_, username := currentOperator(c)
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   username,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
