package pricelist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/harings-be/commerce-pricelist/internal/domain"
)

type fakeListRepo struct {
	lists   map[int64]*domain.PriceList
	nextID  int64
	deleted [][]int64
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: map[int64]*domain.PriceList{}, nextID: 1}
}

func (r *fakeListRepo) Create(ctx context.Context, list *domain.PriceList) error {
	list.ID = r.nextID
	r.nextID++
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *fakeListRepo) Update(ctx context.Context, list *domain.PriceList) error {
	if _, ok := r.lists[list.ID]; !ok {
		return ErrNotFound
	}
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *fakeListRepo) GetByID(ctx context.Context, id int64) (*domain.PriceList, error) {
	list, ok := r.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *list
	return &cp, nil
}

func (r *fakeListRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domain.PriceList, error) {
	var out []*domain.PriceList
	for _, id := range ids {
		if list, ok := r.lists[id]; ok {
			cp := *list
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeListRepo) DeleteBatch(ctx context.Context, ids []int64) error {
	r.deleted = append(r.deleted, ids)
	for _, id := range ids {
		delete(r.lists, id)
	}
	return nil
}

func (r *fakeListRepo) List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceList, int64, error) {
	return nil, 0, nil
}

type fakeItemRepo struct {
	items   map[int64]*domain.PriceListItem
	nextID  int64
	updates int
	deleted [][]int64
	failAll bool
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[int64]*domain.PriceListItem{}, nextID: 1}
}

func (r *fakeItemRepo) add(item *domain.PriceListItem) *domain.PriceListItem {
	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	r.items[item.ID] = item
	return item
}

func (r *fakeItemRepo) Create(ctx context.Context, item *domain.PriceListItem) error {
	if r.failAll {
		return errors.New("store unavailable")
	}
	item.ID = r.nextID
	r.nextID++
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *domain.PriceListItem) error {
	if r.failAll {
		return errors.New("store unavailable")
	}
	if _, ok := r.items[item.ID]; !ok {
		return ErrNotFound
	}
	r.updates++
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id int64) (*domain.PriceListItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) GetByPriceListID(ctx context.Context, priceListID int64) ([]*domain.PriceListItem, error) {
	var out []*domain.PriceListItem
	for _, item := range r.items {
		if item.PriceListId == priceListID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) DeleteBatch(ctx context.Context, ids []int64) error {
	if r.failAll {
		return errors.New("store unavailable")
	}
	r.deleted = append(r.deleted, ids)
	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}

func (r *fakeItemRepo) List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceListItem, int64, error) {
	return nil, 0, nil
}

// staticResolver resolves a fixed set of catalog ids.
type staticResolver struct {
	known map[int64]string
}

func (r staticResolver) Resolve(ctx context.Context, id int64) (*CatalogEntry, error) {
	label, ok := r.known[id]
	if !ok {
		return nil, ErrPurchasedEntityNotFound
	}
	return &CatalogEntry{ID: id, Type: "product", Label: label}, nil
}

func testRegistry(known map[int64]string) *ResolverRegistry {
	reg := NewResolverRegistry()
	reg.Register("product", staticResolver{known: known})
	return reg
}

func TestRepairItemReferencesSetsUnsetBackReference(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a"})
	b := itemRepo.add(&domain.PriceListItem{Name: "b"})

	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{a.ID, b.ID}}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		item, err := itemRepo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get item %d: %v", id, err)
		}
		if item.PriceListId != list.ID {
			t.Errorf("item %d back-reference = %d, want %d", id, item.PriceListId, list.ID)
		}
	}
}

func TestRepairItemReferencesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a"})

	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{a.ID}}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("first repair failed: %v", err)
	}
	writes := itemRepo.updates

	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if itemRepo.updates != writes {
		t.Errorf("second repair wrote %d items, want 0", itemRepo.updates-writes)
	}
}

func TestRepairItemReferencesKeepsForeignBackReference(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a", PriceListId: 99})

	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{a.ID}}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	item, _ := itemRepo.GetByID(ctx, a.ID)
	if item.PriceListId != 99 {
		t.Errorf("back-reference overwritten to %d, want 99 untouched", item.PriceListId)
	}
}

func TestRepairItemReferencesSkipsMissingItems(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a"})

	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{12345, a.ID}}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("repair should skip missing items, got: %v", err)
	}

	item, _ := itemRepo.GetByID(ctx, a.ID)
	if item.PriceListId != list.ID {
		t.Errorf("surviving item not repaired, back-reference = %d", item.PriceListId)
	}
}

func TestRepairItemReferencesIsAdditiveOnly(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	removed := itemRepo.add(&domain.PriceListItem{Name: "removed", PriceListId: 7})

	// the item was dropped from the list's id cache; its back-reference
	// must survive the next save untouched
	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{}}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	item, _ := itemRepo.GetByID(ctx, removed.ID)
	if item.PriceListId != 7 {
		t.Errorf("removed item back-reference = %d, want 7", item.PriceListId)
	}
}

func TestPersistItemWeightsFollowsRowPositions(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a", Weight: 5})
	b := itemRepo.add(&domain.PriceListItem{Name: "b", Weight: 5})
	c := itemRepo.add(&domain.PriceListItem{Name: "c", Weight: 5})

	// submitted order: b, a, c
	rows := []ItemRow{
		{ItemID: b.ID, Position: 0},
		{ItemID: a.ID, Position: 1},
		{ItemID: c.ID, Position: 2},
	}
	if err := persistItemWeights(ctx, itemRepo, rows); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	got := map[int64]int{}
	for _, id := range []int64{a.ID, b.ID, c.ID} {
		item, _ := itemRepo.GetByID(ctx, id)
		got[id] = item.Weight
	}
	if got[b.ID] >= got[a.ID] || got[a.ID] >= got[c.ID] {
		t.Errorf("weights do not preserve submitted order: b=%d a=%d c=%d",
			got[b.ID], got[a.ID], got[c.ID])
	}
	if got[b.ID] != 0 || got[a.ID] != 1 || got[c.ID] != 2 {
		t.Errorf("weights = (%d,%d,%d), want (0,1,2)", got[b.ID], got[a.ID], got[c.ID])
	}
}

func TestPersistItemWeightsFailsOnMissingItem(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()

	rows := []ItemRow{{ItemID: 12345, Position: 0}}
	if err := persistItemWeights(ctx, itemRepo, rows); err == nil {
		t.Fatal("expected error for missing row target")
	}
}

func TestDeleteCascadeRemovesItemsOfAllParents(t *testing.T) {
	ctx := context.Background()
	listRepo := newFakeListRepo()
	itemRepo := newFakeItemRepo()

	a := itemRepo.add(&domain.PriceListItem{Name: "a", PriceListId: 1})
	b := itemRepo.add(&domain.PriceListItem{Name: "b", PriceListId: 2})
	keep := itemRepo.add(&domain.PriceListItem{Name: "keep", PriceListId: 3})

	listRepo.lists[1] = &domain.PriceList{ID: 1, ItemIds: datatypes.JSONSlice[int64]{a.ID}}
	listRepo.lists[2] = &domain.PriceList{ID: 2, ItemIds: datatypes.JSONSlice[int64]{b.ID}}
	listRepo.lists[3] = &domain.PriceList{ID: 3, ItemIds: datatypes.JSONSlice[int64]{keep.ID}}

	if err := deleteCascade(ctx, listRepo, itemRepo, []int64{1, 2}); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if _, err := itemRepo.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Error("item of first deleted list survived")
	}
	if _, err := itemRepo.GetByID(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Error("item of second deleted list survived")
	}
	if _, err := itemRepo.GetByID(ctx, keep.ID); err != nil {
		t.Error("item of untouched list was deleted")
	}
	if _, err := listRepo.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Error("deleted list still present")
	}
	if len(itemRepo.deleted) != 1 {
		t.Errorf("item deletes issued in %d batches, want 1", len(itemRepo.deleted))
	}
}

func TestDeleteCascadeDeletesSharedItemOnce(t *testing.T) {
	ctx := context.Background()
	listRepo := newFakeListRepo()
	itemRepo := newFakeItemRepo()

	shared := itemRepo.add(&domain.PriceListItem{Name: "shared", PriceListId: 1})
	listRepo.lists[1] = &domain.PriceList{ID: 1, ItemIds: datatypes.JSONSlice[int64]{shared.ID}}
	listRepo.lists[2] = &domain.PriceList{ID: 2, ItemIds: datatypes.JSONSlice[int64]{shared.ID}}

	if err := deleteCascade(ctx, listRepo, itemRepo, []int64{1, 2}); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if len(itemRepo.deleted) != 1 {
		t.Fatalf("item deletes issued in %d batches, want 1", len(itemRepo.deleted))
	}
	count := 0
	for _, id := range itemRepo.deleted[0] {
		if id == shared.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared item appears %d times in delete batch, want 1", count)
	}
}

func TestDeleteCascadeSkipsEmptyLists(t *testing.T) {
	ctx := context.Background()
	listRepo := newFakeListRepo()
	itemRepo := newFakeItemRepo()

	listRepo.lists[1] = &domain.PriceList{ID: 1}

	if err := deleteCascade(ctx, listRepo, itemRepo, []int64{1}); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if len(itemRepo.deleted) != 0 {
		t.Errorf("item delete issued for empty list")
	}
	if _, err := listRepo.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Error("empty list not deleted")
	}
}

func TestValidatePriceList(t *testing.T) {
	svc := &Service{resolvers: testRegistry(nil)}

	tests := []struct {
		name    string
		list    domain.PriceList
		wantErr error
	}{
		{"valid", domain.PriceList{Name: "Wholesale", StartDate: "2026-01-01"}, nil},
		{"empty name", domain.PriceList{}, ErrNameRequired},
		{"long name", domain.PriceList{Name: strings.Repeat("x", 51)}, ErrNameTooLong},
		{"multibyte name within limit", domain.PriceList{Name: strings.Repeat("ü", 50)}, nil},
		{"multibyte name too long", domain.PriceList{Name: strings.Repeat("ü", 51)}, ErrNameTooLong},
		{"unknown bundle", domain.PriceList{Name: "x", Type: "subscription"}, ErrUnknownBundle},
		{"bad start date", domain.PriceList{Name: "x", StartDate: "01/02/2026"}, ErrInvalidDate},
		{"bad end date", domain.PriceList{Name: "x", EndDate: "not-a-date"}, ErrInvalidDate},
		{"open ended", domain.PriceList{Name: "x", StartDate: "2026-01-01", EndDate: ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := tt.list
			err := svc.ValidatePriceList(&list)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePriceList() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePriceListDefaultsBundle(t *testing.T) {
	svc := &Service{resolvers: testRegistry(nil)}
	list := domain.PriceList{Name: "Wholesale"}
	if err := svc.ValidatePriceList(&list); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if list.Type != "product" {
		t.Errorf("bundle = %q, want product", list.Type)
	}
}

func TestValidatePriceListDefaultsStartDate(t *testing.T) {
	svc := &Service{resolvers: testRegistry(nil)}
	list := domain.PriceList{Name: "Wholesale"}
	if err := svc.ValidatePriceList(&list); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if list.StartDate != time.Now().Format(domain.DateLayout) {
		t.Errorf("start date = %q, want today", list.StartDate)
	}
}

func TestValidateItem(t *testing.T) {
	ctx := context.Background()
	svc := &Service{resolvers: testRegistry(map[int64]string{10: "widget"})}

	price := decimal.NewFromFloat(9.99)

	tests := []struct {
		name    string
		item    domain.PriceListItem
		wantErr error
	}{
		{"valid", domain.PriceListItem{PurchasedEntityId: 10, Price: price, PriceCurrency: "EUR"}, nil},
		{"no purchased entity", domain.PriceListItem{}, ErrPurchasedEntityRequired},
		{"unresolvable entity", domain.PriceListItem{PurchasedEntityId: 404}, ErrPurchasedEntityNotFound},
		{"price without currency", domain.PriceListItem{PurchasedEntityId: 10, Price: price}, ErrCurrencyRequired},
		{"long name", domain.PriceListItem{PurchasedEntityId: 10, Name: strings.Repeat("x", 51)}, ErrNameTooLong},
		{"multibyte name within limit", domain.PriceListItem{PurchasedEntityId: 10, Name: strings.Repeat("ü", 50)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			err := svc.ValidateItem(ctx, &item)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemDefaultsQuantity(t *testing.T) {
	ctx := context.Background()
	svc := &Service{resolvers: testRegistry(map[int64]string{10: "widget"})}

	item := domain.PriceListItem{PurchasedEntityId: 10}
	if err := svc.ValidateItem(ctx, &item); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", item.Quantity)
	}
}

func TestGetItemsPreservesOrderAndSkipsMissing(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()
	a := itemRepo.add(&domain.PriceListItem{Name: "a"})
	b := itemRepo.add(&domain.PriceListItem{Name: "b"})

	svc := &Service{itemRepo: itemRepo, resolvers: testRegistry(nil)}
	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64]{b.ID, 12345, a.ID}}

	items, err := svc.GetItems(ctx, list)
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != b.ID || items[1].ID != a.ID {
		t.Errorf("order = [%d %d], want [%d %d]", items[0].ID, items[1].ID, b.ID, a.ID)
	}
}

func TestRepairThenWeightsEndToEnd(t *testing.T) {
	ctx := context.Background()
	itemRepo := newFakeItemRepo()

	var ids []int64
	for i := 0; i < 4; i++ {
		item := itemRepo.add(&domain.PriceListItem{Name: fmt.Sprintf("item-%d", i)})
		ids = append(ids, item.ID)
	}

	list := &domain.PriceList{ID: 7, ItemIds: datatypes.JSONSlice[int64](ids)}
	if err := repairItemReferences(ctx, itemRepo, list); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	// reverse the submitted order
	rows := make([]ItemRow, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		rows = append(rows, ItemRow{ItemID: ids[i], Position: len(ids) - 1 - i})
	}
	if err := persistItemWeights(ctx, itemRepo, rows); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	for i, id := range ids {
		item, _ := itemRepo.GetByID(ctx, id)
		if item.PriceListId != list.ID {
			t.Errorf("item %d lost back-reference", id)
		}
		wantWeight := len(ids) - 1 - i
		if item.Weight != wantWeight {
			t.Errorf("item %d weight = %d, want %d", id, item.Weight, wantWeight)
		}
	}
}
