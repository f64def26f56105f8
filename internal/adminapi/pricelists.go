package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"github.com/harings-be/commerce-pricelist/internal/pricelist"
	"github.com/harings-be/commerce-pricelist/internal/webserver"
)

type priceListPayload struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	UserId    int64   `json:"user_id,string"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Weight    int     `json:"weight"`
	Status    *bool   `json:"status"`
	ItemIds   []int64 `json:"item_ids"`
	// Items carries the ordered rows of the collection-edit form. Row order
	// is display order; each row's weight is derived from its position.
	Items []priceListItemRow `json:"items"`
}

type priceListItemRow struct {
	ItemId int64 `json:"item_id,string"`
}

func registerPriceListRoutes() {
	webserver.ApiGET("/pricelist", listPriceLists)
	webserver.ApiGET("/pricelist/:id", getPriceList)
	webserver.ApiGET("/pricelist/:id/items", getPriceListItems)
	webserver.ApiPOST("/pricelist", createPriceList)
	webserver.ApiPUT("/pricelist/:id", updatePriceList)
	webserver.ApiPUT("/pricelist/:id/items", savePriceListItemRows)
	webserver.ApiDELETE("/pricelist/:id", deletePriceList)
	webserver.ApiPOST("/pricelist/delete", deletePriceLists)
}

func listPriceLists(c echo.Context) error {
	page, pageSize := parsePagination(c)

	filter := map[string]interface{}{}
	if v := strings.TrimSpace(c.QueryParam("type")); v != "" {
		filter["type"] = v
	}
	if v := strings.TrimSpace(c.QueryParam("name")); v != "" {
		filter["name"] = v
	}

	repo := pricelist.NewGormPriceListRepository(GetDB(c))
	rows, total, err := repo.List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price lists", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getPriceList(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	list, err := getService(c).GetPriceList(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list", err.Error())
	}
	return ok(c, list)
}

func getPriceListItems(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	svc := getService(c)
	list, err := svc.GetPriceList(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list", err.Error())
	}
	items, err := svc.GetItems(c.Request().Context(), list)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve price list items", err.Error())
	}
	return ok(c, items)
}

func createPriceList(c echo.Context) error {
	var payload priceListPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price list", err.Error())
	}

	list := &domain.PriceList{
		Type:      strings.TrimSpace(payload.Type),
		Name:      strings.TrimSpace(payload.Name),
		UserId:    payload.UserId,
		StartDate: strings.TrimSpace(payload.StartDate),
		EndDate:   strings.TrimSpace(payload.EndDate),
		Weight:    payload.Weight,
		Status:    true,
	}
	if payload.Status != nil {
		list.Status = *payload.Status
	}
	list.SetItemIds(payload.ItemIds)

	return savePriceList(c, list, payload.Items)
}

func updatePriceList(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	svc := getService(c)
	list, err := svc.GetPriceList(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list", err.Error())
	}

	var payload priceListPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price list", err.Error())
	}

	list.Name = strings.TrimSpace(payload.Name)
	if payload.Type != "" {
		list.Type = strings.TrimSpace(payload.Type)
	}
	if payload.UserId != 0 {
		list.UserId = payload.UserId
	}
	list.StartDate = strings.TrimSpace(payload.StartDate)
	list.EndDate = strings.TrimSpace(payload.EndDate)
	list.Weight = payload.Weight
	if payload.Status != nil {
		list.Status = *payload.Status
	}
	list.SetItemIds(payload.ItemIds)

	return savePriceList(c, list, payload.Items)
}

type priceListRowsPayload struct {
	Items []priceListItemRow `json:"items"`
}

// savePriceListItemRows is the collection-save surface: the submitted row
// order replaces the list's ordered item ids and becomes each item's weight.
func savePriceListItemRows(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	svc := getService(c)
	list, err := svc.GetPriceList(c.Request().Context(), id)
	if errors.Is(err, pricelist.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Price list not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query price list", err.Error())
	}

	var payload priceListRowsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price list rows", err.Error())
	}

	itemIds := make([]int64, 0, len(payload.Items))
	for _, row := range payload.Items {
		itemIds = append(itemIds, row.ItemId)
	}
	list.SetItemIds(itemIds)

	return savePriceList(c, list, payload.Items)
}

// savePriceList drives the lifecycle service for both create and update. The
// collection rows, when present, are translated into position-derived weights.
func savePriceList(c echo.Context, list *domain.PriceList, rowPayload []priceListItemRow) error {
	actorID, _ := currentOperator(c)

	rows := make([]pricelist.ItemRow, 0, len(rowPayload))
	for i, row := range rowPayload {
		rows = append(rows, pricelist.ItemRow{ItemID: row.ItemId, Position: i})
	}

	created, err := getService(c).SavePriceListWithItems(c.Request().Context(), list, rows, actorID)
	switch {
	case errors.Is(err, pricelist.ErrNameRequired),
		errors.Is(err, pricelist.ErrNameTooLong),
		errors.Is(err, pricelist.ErrInvalidDate),
		errors.Is(err, pricelist.ErrUnknownBundle):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save price list", err.Error())
	}

	if created {
		writeOprLog(c, "create", "created price list "+list.Name)
		return okMsg(c, "created", list)
	}
	writeOprLog(c, "update", "saved price list "+list.Name)
	return okMsg(c, "updated", list)
}

func deletePriceList(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price list ID", nil)
	}
	if err := getService(c).DeletePriceLists(c.Request().Context(), []int64{id}); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete price list", err.Error())
	}
	writeOprLog(c, "delete", "deleted price list")
	return ok(c, nil)
}

type deletePriceListsPayload struct {
	Ids []int64 `json:"ids"`
}

func deletePriceLists(c echo.Context) error {
	var payload deletePriceListsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if len(payload.Ids) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No price list ids given", nil)
	}
	if err := getService(c).DeletePriceLists(c.Request().Context(), payload.Ids); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete price lists", err.Error())
	}
	writeOprLog(c, "delete", "deleted price lists")
	return ok(c, nil)
}
