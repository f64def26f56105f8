package pricelist

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service coordinates the price list / price list item lifecycle: saving a
// list repairs missing child back-references, deleting lists cascades to every
// referenced item, and the collection save surface persists position-derived
// item weights. All relationship maintenance runs as a guaranteed side effect
// of the parent operation, never as a separate caller-invoked step.
type Service struct {
	db        *gorm.DB
	listRepo  PriceListRepository
	itemRepo  PriceListItemRepository
	resolvers *ResolverRegistry
}

// NewService creates a new price list lifecycle service
func NewService(db *gorm.DB, resolvers *ResolverRegistry) *Service {
	return &Service{
		db:        db,
		listRepo:  NewGormPriceListRepository(db),
		itemRepo:  NewGormPriceListItemRepository(db),
		resolvers: resolvers,
	}
}

// ValidatePriceList checks a price list before any persistence happens.
func (s *Service) ValidatePriceList(list *domain.PriceList) error {
	if list.Name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(list.Name) > 50 {
		return ErrNameTooLong
	}
	if list.Type == "" {
		list.Type = "product"
	}
	if !s.resolvers.HasBundle(list.Type) {
		return fmt.Errorf("%w: %s", ErrUnknownBundle, list.Type)
	}
	if list.StartDate == "" {
		list.SetStartDate(time.Now())
	}
	if _, err := list.GetStartDate(); err != nil {
		return fmt.Errorf("%w: start_date %q", ErrInvalidDate, list.StartDate)
	}
	if _, err := list.GetEndDate(); err != nil {
		return fmt.Errorf("%w: end_date %q", ErrInvalidDate, list.EndDate)
	}
	return nil
}

// ValidateItem checks a price list item before any persistence happens.
func (s *Service) ValidateItem(ctx context.Context, item *domain.PriceListItem) error {
	if utf8.RuneCountInString(item.Name) > 50 {
		return ErrNameTooLong
	}
	if item.Type == "" {
		item.Type = "product"
	}
	if !item.HasPurchasedEntity() {
		return ErrPurchasedEntityRequired
	}
	resolver, err := s.resolvers.ResolverFor(item.Type)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownBundle, item.Type)
	}
	if _, err := resolver.Resolve(ctx, item.PurchasedEntityId); err != nil {
		return err
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if !item.Price.IsZero() && item.PriceCurrency == "" {
		return ErrCurrencyRequired
	}
	if item.ListPrice.Valid && item.ListPriceCurrency == "" {
		return ErrCurrencyRequired
	}
	return nil
}

// SavePriceList validates and persists a price list, then repairs the
// back-reference of every item the list currently references. Returns whether
// the list was created (as opposed to updated).
func (s *Service) SavePriceList(ctx context.Context, list *domain.PriceList, actorID int64) (bool, error) {
	if err := s.ValidatePriceList(list); err != nil {
		return false, err
	}

	created := list.ID == 0
	if created && list.UserId == 0 {
		list.UserId = actorID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listRepo := NewGormPriceListRepository(tx)
		itemRepo := NewGormPriceListItemRepository(tx)

		if created {
			if err := listRepo.Create(ctx, list); err != nil {
				return err
			}
		} else {
			if err := listRepo.Update(ctx, list); err != nil {
				return err
			}
		}
		return repairItemReferences(ctx, itemRepo, list)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ItemRow is one submitted row of the collection-edit surface. Position is
// the zero-based index of the row as submitted by the user.
type ItemRow struct {
	ItemID   int64 `json:"item_id,string"`
	Position int   `json:"position"`
}

// SavePriceListWithItems saves a price list together with the ordered item
// rows of its collection-edit form. After the parent save (and its
// back-reference repair) completes, every submitted row's target item gets its
// weight set from the row position and is persisted. A weight persistence
// failure fails the whole operation.
func (s *Service) SavePriceListWithItems(ctx context.Context, list *domain.PriceList, rows []ItemRow, actorID int64) (bool, error) {
	if err := s.ValidatePriceList(list); err != nil {
		return false, err
	}

	created := list.ID == 0
	if created && list.UserId == 0 {
		list.UserId = actorID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listRepo := NewGormPriceListRepository(tx)
		itemRepo := NewGormPriceListItemRepository(tx)

		if created {
			if err := listRepo.Create(ctx, list); err != nil {
				return err
			}
		} else {
			if err := listRepo.Update(ctx, list); err != nil {
				return err
			}
		}
		if err := repairItemReferences(ctx, itemRepo, list); err != nil {
			return err
		}
		return persistItemWeights(ctx, itemRepo, rows)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// SaveItem validates and persists a single price list item. Returns whether
// the item was created.
func (s *Service) SaveItem(ctx context.Context, item *domain.PriceListItem, actorID int64) (bool, error) {
	if err := s.ValidateItem(ctx, item); err != nil {
		return false, err
	}

	created := item.ID == 0
	if created && item.UserId == 0 {
		item.UserId = actorID
	}

	if created {
		if err := s.itemRepo.Create(ctx, item); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return false, err
	}
	return false, nil
}

// DeletePriceLists deletes a batch of price lists and cascades to every item
// referenced by any of them. The whole operation is one transaction: a failed
// item delete fails the parent deletion as a whole.
func (s *Service) DeletePriceLists(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listRepo := NewGormPriceListRepository(tx)
		itemRepo := NewGormPriceListItemRepository(tx)
		return deleteCascade(ctx, listRepo, itemRepo, ids)
	})
}

// GetItems resolves the list's ordered item id cache to item records,
// preserving order. Ids that no longer resolve are skipped.
func (s *Service) GetItems(ctx context.Context, list *domain.PriceList) ([]*domain.PriceListItem, error) {
	items := make([]*domain.PriceListItem, 0, len(list.ItemIds))
	for _, id := range list.ItemIds {
		item, err := s.itemRepo.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetPriceList retrieves a price list by id.
func (s *Service) GetPriceList(ctx context.Context, id int64) (*domain.PriceList, error) {
	return s.listRepo.GetByID(ctx, id)
}

// GetItem retrieves a price list item by id.
func (s *Service) GetItem(ctx context.Context, id int64) (*domain.PriceListItem, error) {
	return s.itemRepo.GetByID(ctx, id)
}

// DeactivateExpired unpublishes every active price list whose end date lies
// before the given day. Used by the scheduler.
func (s *Service) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	today := now.Format(domain.DateLayout)
	result := s.db.WithContext(ctx).
		Model(&domain.PriceList{}).
		Where("status = ?", true).
		Where("end_date <> '' AND end_date < ?", today).
		Update("status", false)
	return result.RowsAffected, result.Error
}

// repairItemReferences ensures there's a back-reference on each item the list
// references. Only items with an unset back-reference are touched, so the pass
// is idempotent. Items that fail to resolve are skipped rather than aborting
// the save. Items removed from the list keep their old back-reference; the
// repair is strictly additive.
func repairItemReferences(ctx context.Context, itemRepo PriceListItemRepository, list *domain.PriceList) error {
	for _, itemID := range list.ItemIds {
		item, err := itemRepo.GetByID(ctx, itemID)
		if errors.Is(err, ErrNotFound) {
			zap.L().Warn("price list references missing item",
				zap.Int64("price_list_id", list.ID),
				zap.Int64("item_id", itemID))
			continue
		}
		if err != nil {
			return err
		}
		if item.HasPriceList() {
			continue
		}
		item.PriceListId = list.ID
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// persistItemWeights writes the position-derived weight of every submitted row
// to its target item. Runs after the back-reference repair and independently
// of it.
func persistItemWeights(ctx context.Context, itemRepo PriceListItemRepository, rows []ItemRow) error {
	for _, row := range rows {
		item, err := itemRepo.GetByID(ctx, row.ItemID)
		if err != nil {
			return err
		}
		item.Weight = row.Position
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// deleteCascade collects the union of item ids referenced by the lists being
// deleted, keyed by item id so an item referenced by multiple parents is
// deleted once, then issues one batch delete against the item store followed
// by the parent delete. Lists with no items are skipped without error.
func deleteCascade(ctx context.Context, listRepo PriceListRepository, itemRepo PriceListItemRepository, ids []int64) error {
	lists, err := listRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	seen := make(map[int64]struct{})
	var itemIDs []int64
	for _, list := range lists {
		for _, itemID := range list.ItemIds {
			if _, ok := seen[itemID]; ok {
				continue
			}
			seen[itemID] = struct{}{}
			itemIDs = append(itemIDs, itemID)
		}
	}

	if len(itemIDs) > 0 {
		if err := itemRepo.DeleteBatch(ctx, itemIDs); err != nil {
			return err
		}
	}
	return listRepo.DeleteBatch(ctx, ids)
}
