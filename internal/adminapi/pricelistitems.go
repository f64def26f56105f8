package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/pricelist"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
)

type priceListItemPayload struct {
	Type              string              `json:"type"`
	PurchasedEntityId int64               `json:"purchased_entity_id,string"`
	Name              string              `json:"name"`
	Quantity          int64               `json:"quantity"`
	Price             decimal.Decimal     `json:"price"`
	PriceCurrency     string              `json:"price_currency"`
	ListPrice         decimal.NullDecimal `json:"list_price"`
	ListPriceCurrency string              `json:"list_price_currency"`
	Weight            int                 `json:"weight"`
	Status            *bool               `json:"status"`
}

func registerPriceListItemRoutes() {
	webserver.ApiGET("/pricelist/:id/prices", listItemsOfPriceList)
	webserver.ApiGET("/pricelist/:id/prices/export", exportItemsCsv)
	webserver.ApiPOST("/pricelist/:id/prices/import", importItemsCsv)
	webserver.ApiGET("/pricelistitem/:id", getPriceListItem)
	webserver.ApiPOST("/pricelistitem", createPriceListItem)
	webserver.ApiPUT("/pricelistitem/:id", updatePriceListItem)
	webserver.ApiDELETE("/pricelistitem/:id", deletePriceListItem)
}

func listItemsOfPriceList(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	page, pageSize := parsePagination(c)

	repo := pricelist.NewGormPriceListItemRepository(GetDB(c))
	rows, total, err := repo.List(c.Request().Context(), map[string]interface{}{"price_list_id": id}, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list items", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getPriceListItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list item ID", nil)
	}
	item, err := getService(c).GetItem(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list item", err.Error())
	}
	return ok(c, item)
}

func createPriceListItem(c echo.Context) error {
	var payload priceListItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price list item", err.Error())
	}

	item := &domain.PriceListItem{
		Type:              strings.TrimSpace(payload.Type),
		PurchasedEntityId: payload.PurchasedEntityId,
		Name:              strings.TrimSpace(payload.Name),
		Quantity:          payload.Quantity,
		Price:             payload.Price,
		PriceCurrency:     strings.ToUpper(strings.TrimSpace(payload.PriceCurrency)),
		ListPrice:         payload.ListPrice,
		ListPriceCurrency: strings.ToUpper(strings.TrimSpace(payload.ListPriceCurrency)),
		Weight:            payload.Weight,
		Status:            true,
	}
	if payload.Status != nil {
		item.Status = *payload.Status
	}
	return saveItem(c, item)
}

func updatePriceListItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list item ID", nil)
	}
	svc := getService(c)
	item, err := svc.GetItem(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list item", err.Error())
	}

	var payload priceListItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price list item", err.Error())
	}

	// The parent back-reference is read-only from the item's own edit surface.
	if payload.Type != "" {
		item.Type = strings.TrimSpace(payload.Type)
	}
	item.PurchasedEntityId = payload.PurchasedEntityId
	item.Name = strings.TrimSpace(payload.Name)
	item.Quantity = payload.Quantity
	item.Price = payload.Price
	item.PriceCurrency = strings.ToUpper(strings.TrimSpace(payload.PriceCurrency))
	item.ListPrice = payload.ListPrice
	item.ListPriceCurrency = strings.ToUpper(strings.TrimSpace(payload.ListPriceCurrency))
	item.Weight = payload.Weight
	if payload.Status != nil {
		item.Status = *payload.Status
	}
	return saveItem(c, item)
}

func saveItem(c echo.Context, item *domain.PriceListItem) error {
	actorID, _ := currentOperator(c)
	created, err := getService(c).SaveItem(c.Request().Context(), item, actorID)
	switch {
	case errors.Is(err, pricelist.ErrPurchasedEntityRequired),
		errors.Is(err, pricelist.ErrPurchasedEntityNotFound),
		errors.Is(err, pricelist.ErrNameTooLong),
		errors.Is(err, pricelist.ErrCurrencyRequired),
		errors.Is(err, pricelist.ErrUnknownBundle):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save price list item", err.Error())
	}
	if created {
		return okMsg(c, "created", item)
	}
	return okMsg(c, "updated", item)
}

func deletePriceListItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list item ID", nil)
	}
	repo := pricelist.NewGormPriceListItemRepository(GetDB(c))
	if err := repo.DeleteBatch(c.Request().Context(), []int64{id}); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete price list item", err.Error())
	}
	writeOprLog(c, "delete", "deleted price list item")
	return ok(c, nil)
}

// priceListItemCsv is the row shape of the CSV import/export surface.
type priceListItemCsv struct {
	PurchasedEntityId int64  `csv:"purchased_entity_id"`
	Name              string `csv:"name"`
	Quantity          int64  `csv:"quantity"`
	Price             string `csv:"price"`
	PriceCurrency     string `csv:"currency"`
	ListPrice         string `csv:"list_price"`
	ListPriceCurrency string `csv:"list_price_currency"`
	Weight            int    `csv:"weight"`
}

func exportItemsCsv(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	repo := pricelist.NewGormPriceListItemRepository(GetDB(c))
	items, err := repo.GetByPriceListID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list items", err.Error())
	}

	rows := make([]*priceListItemCsv, 0, len(items))
	for _, item := range items {
		row := &priceListItemCsv{
			PurchasedEntityId: item.PurchasedEntityId,
			Name:              item.Name,
			Quantity:          item.Quantity,
			Price:             item.Price.StringFixed(2),
			PriceCurrency:     item.PriceCurrency,
			Weight:            item.Weight,
		}
		if lp := item.GetListPrice(); lp != nil {
			row.ListPrice = lp.StringFixed(2)
			row.ListPriceCurrency = item.ListPriceCurrency
		}
		rows = append(rows, row)
	}

	data, err := gocsv.MarshalString(rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to export price list items", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="price_list_items.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

func importItemsCsv(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing csv upload", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read csv upload", err.Error())
	}
	defer src.Close()

	var rows []*priceListItemCsv
	if err := gocsv.Unmarshal(src, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse csv", err.Error())
	}

	// Decode every row before touching the database so a malformed price
	// is rejected without any writes.
	items := make([]*domain.PriceListItem, 0, len(rows))
	for _, row := range rows {
		item := &domain.PriceListItem{
			PurchasedEntityId: row.PurchasedEntityId,
			Name:              row.Name,
			Quantity:          row.Quantity,
			PriceCurrency:     strings.ToUpper(strings.TrimSpace(row.PriceCurrency)),
			Weight:            row.Weight,
			Status:            true,
		}
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price in csv row", row)
		}
		item.Price = price
		if row.ListPrice != "" {
			lp, err := decimal.NewFromString(row.ListPrice)
			if err != nil {
				return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid list price in csv row", row)
			}
			item.ListPrice = decimal.NewNullDecimal(lp)
			item.ListPriceCurrency = strings.ToUpper(strings.TrimSpace(row.ListPriceCurrency))
		}
		items = append(items, item)
	}

	// The whole file imports or none of it does. The item saves and the
	// parent's ordered id update commit together.
	actorID, _ := currentOperator(c)
	var imported int
	txErr := GetDB(c).Transaction(func(tx *gorm.DB) error {
		svc := pricelist.NewService(tx, pricelist.DefaultResolverRegistry(tx))
		list, err := svc.GetPriceList(c.Request().Context(), id)
		if err != nil {
			return err
		}
		itemIds := list.GetItemIds()
		imported = 0
		for _, item := range items {
			item.Type = list.Type
			item.PriceListId = list.ID
			if _, err := svc.SaveItem(c.Request().Context(), item, actorID); err != nil {
				return err
			}
			itemIds = append(itemIds, item.ID)
			imported++
		}
		list.SetItemIds(itemIds)
		_, err = svc.SavePriceList(c.Request().Context(), list, actorID)
		return err
	})
	switch {
	case errors.Is(txErr, pricelist.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list not found", nil)
	case errors.Is(txErr, pricelist.ErrPurchasedEntityRequired),
		errors.Is(txErr, pricelist.ErrPurchasedEntityNotFound),
		errors.Is(txErr, pricelist.ErrNameTooLong),
		errors.Is(txErr, pricelist.ErrCurrencyRequired),
		errors.Is(txErr, pricelist.ErrUnknownBundle):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", txErr.Error(), nil)
	case txErr != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to import price list items", txErr.Error())
	}

	writeOprLog(c, "import", "imported price list items")
	return okMsg(c, "imported", map[string]interface{}{"count": imported})
}
