package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
	"github.com/harings-be/commerce-pricelist/pkg/common"
)

func registerOperatorRoutes() {
	webserver.PubPOST("/login", loginOperator)
	webserver.ApiGET("/system/operators", listOperators)
	webserver.ApiGET("/system/operators/:id", getOperator)
	webserver.ApiPOST("/system/operators", createOperator)
	webserver.ApiPUT("/system/operators/:id", updateOperator)
	webserver.ApiDELETE("/system/operators/:id", deleteOperator)
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func loginOperator(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request", err.Error())
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ?", strings.TrimSpace(payload.Username)).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}

	hashed := common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	if opr.Password != hashed || opr.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	}

	claims := jwt.MapClaims{
		"oid": opr.ID,
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": time.Now().Add(time.Duration(webserver.JwtExpire()) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(webserver.Secret()))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())

	return ok(c, map[string]interface{}{"token": signed, "username": opr.Username, "level": opr.Level})
}

func listOperators(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.SysOpr{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operators", err.Error())
	}

	var oprs []domain.SysOpr
	if err := base.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&oprs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operators", err.Error())
	}
	for i := range oprs {
		oprs[i].Password = ""
	}
	return paged(c, oprs, total, page, pageSize)
}

func getOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	var opr domain.SysOpr
	if err := GetDB(c).Where("id = ?", id).First(&opr).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}
	opr.Password = ""
	return ok(c, opr)
}

type operatorPayload struct {
	Realname string `json:"realname"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Level    string `json:"level"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func createOperator(c echo.Context) error {
	var payload operatorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse operator", err.Error())
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}
	if payload.Level == "" {
		payload.Level = "opr"
	}
	if payload.Status == "" {
		payload.Status = common.ENABLED
	}

	opr := domain.SysOpr{
		ID:       common.UUIDint64(),
		Realname: strings.TrimSpace(payload.Realname),
		Mobile:   strings.TrimSpace(payload.Mobile),
		Email:    strings.TrimSpace(payload.Email),
		Username: payload.Username,
		Password: common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Level:    payload.Level,
		Status:   payload.Status,
		Remark:   payload.Remark,
	}
	if err := GetDB(c).Create(&opr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create operator", err.Error())
	}
	writeOprLog(c, "create", "created operator "+opr.Username)
	opr.Password = ""
	return ok(c, opr)
}

func updateOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	var opr domain.SysOpr
	if err := GetDB(c).Where("id = ?", id).First(&opr).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}

	var payload operatorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse operator", err.Error())
	}

	opr.Realname = strings.TrimSpace(payload.Realname)
	opr.Mobile = strings.TrimSpace(payload.Mobile)
	opr.Email = strings.TrimSpace(payload.Email)
	if payload.Password != "" {
		opr.Password = common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	}
	if payload.Level != "" {
		opr.Level = payload.Level
	}
	if payload.Status != "" {
		opr.Status = payload.Status
	}
	opr.Remark = payload.Remark

	if err := GetDB(c).Save(&opr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update operator", err.Error())
	}
	writeOprLog(c, "update", "updated operator "+opr.Username)
	opr.Password = ""
	return ok(c, opr)
}

func deleteOperator(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.SysOpr{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete operator", err.Error())
	}
	writeOprLog(c, "delete", "deleted operator")
	return ok(c, map[string]interface{}{"id": id})
}
