package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
)

type productPayload struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Sku          string          `json:"sku"`
	BasePrice    decimal.Decimal `json:"base_price"`
	BaseCurrency string          `json:"base_currency"`
	Status       string          `json:"status"`
}

// registerProductRoutes registers catalog product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/catalog/products", listProducts)
	webserver.ApiGET("/catalog/products/:id", getProduct)
	webserver.ApiPOST("/catalog/products", createProduct)
	webserver.ApiPUT("/catalog/products/:id", updateProduct)
	webserver.ApiDELETE("/catalog/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// Filters: q or name
	q := strings.TrimSpace(c.QueryParam("q"))
	nameFilter := strings.TrimSpace(c.QueryParam("name"))

	// Sorting: field and order
	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"sku":        "sku",
		"base_price": "base_price",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, ok := allowed[sortField]
	if !ok || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	if nameFilter != "" {
		db = db.Where("name = ?", nameFilter)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Sku = strings.TrimSpace(payload.Sku); payload.Sku == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Sku is required", nil)
	}
	if payload.Status != "enabled" && payload.Status != "disabled" {
		payload.Status = "enabled"
	}
	if payload.BaseCurrency == "" {
		payload.BaseCurrency = "EUR"
	}

	p := domain.Product{
		Name:         payload.Name,
		Sku:          payload.Sku,
		BasePrice:    payload.BasePrice,
		BaseCurrency: strings.ToUpper(payload.BaseCurrency),
		Status:       payload.Status,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Status != "enabled" && payload.Status != "disabled" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Status must be 'enabled' or 'disabled'", nil)
	}

	p.Name = payload.Name
	if sku := strings.TrimSpace(payload.Sku); sku != "" {
		p.Sku = sku
	}
	p.BasePrice = payload.BasePrice
	if payload.BaseCurrency != "" {
		p.BaseCurrency = strings.ToUpper(strings.TrimSpace(payload.BaseCurrency))
	}
	p.Status = payload.Status

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
