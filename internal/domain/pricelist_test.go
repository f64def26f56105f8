package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPriceListDateAccessors(t *testing.T) {
	var list PriceList

	start := time.Date(2026, 3, 15, 13, 45, 0, 0, time.Local)
	list.SetStartDate(start)
	if list.StartDate != "2026-03-15" {
		t.Errorf("stored start date = %q, want date-only form", list.StartDate)
	}

	got, err := list.GetStartDate()
	if err != nil {
		t.Fatalf("GetStartDate failed: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("round-tripped start date = %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("time-of-day survived a date-only round trip: %v", got)
	}
	if got.Location() != time.Local {
		t.Errorf("start date read in %v, want local time context", got.Location())
	}
}

func TestPriceListEndDateOpenEnded(t *testing.T) {
	var list PriceList

	end, err := list.GetEndDate()
	if err != nil {
		t.Fatalf("GetEndDate failed: %v", err)
	}
	if end != nil {
		t.Errorf("empty end date resolved to %v, want nil (open-ended)", end)
	}

	d := time.Date(2026, 12, 31, 0, 0, 0, 0, time.Local)
	list.SetEndDate(&d)
	if list.EndDate != "2026-12-31" {
		t.Errorf("stored end date = %q", list.EndDate)
	}

	list.SetEndDate(nil)
	if list.EndDate != "" {
		t.Errorf("clearing end date left %q", list.EndDate)
	}
}

func TestPriceListItemIdsCopySemantics(t *testing.T) {
	var list PriceList
	list.SetItemIds([]int64{3, 1, 2})

	ids := list.GetItemIds()
	ids[0] = 999
	if list.ItemIds[0] != 3 {
		t.Error("GetItemIds returned a slice aliasing internal state")
	}
}

func TestPriceListItemHasPriceList(t *testing.T) {
	item := PriceListItem{}
	if item.HasPriceList() {
		t.Error("unattached item reports a parent")
	}
	item.PriceListId = 42
	if !item.HasPriceList() {
		t.Error("attached item reports no parent")
	}
}

func TestPriceListItemGetListPrice(t *testing.T) {
	item := PriceListItem{}
	if item.GetListPrice() != nil {
		t.Error("unset list price should resolve to nil")
	}

	item.ListPrice = decimal.NewNullDecimal(decimal.NewFromFloat(19.99))
	got := item.GetListPrice()
	if got == nil {
		t.Fatal("set list price resolved to nil")
	}
	if !got.Equal(decimal.NewFromFloat(19.99)) {
		t.Errorf("list price = %s, want 19.99", got)
	}
}
