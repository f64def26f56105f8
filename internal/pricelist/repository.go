package pricelist

import (
	"context"
	"errors"

	"github.com/harings-be/commerce-pricelist/internal/domain"
	"gorm.io/gorm"
)

// PriceListRepository handles database operations for price lists
type PriceListRepository interface {
	// Create inserts a new price list and assigns its id
	Create(ctx context.Context, list *domain.PriceList) error

	// Update updates an existing price list
	Update(ctx context.Context, list *domain.PriceList) error

	// GetByID retrieves a price list by ID
	GetByID(ctx context.Context, id int64) (*domain.PriceList, error)

	// GetByIDs retrieves multiple price lists by ID
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.PriceList, error)

	// DeleteBatch removes a batch of price lists by ID
	DeleteBatch(ctx context.Context, ids []int64) error

	// List retrieves price lists with pagination, ordered by weight
	List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceList, int64, error)
}

// PriceListItemRepository handles database operations for price list items
type PriceListItemRepository interface {
	// Create inserts a new price list item and assigns its id
	Create(ctx context.Context, item *domain.PriceListItem) error

	// Update updates an existing price list item
	Update(ctx context.Context, item *domain.PriceListItem) error

	// GetByID retrieves a price list item by ID
	GetByID(ctx context.Context, id int64) (*domain.PriceListItem, error)

	// GetByPriceListID retrieves all items carrying the given back-reference
	GetByPriceListID(ctx context.Context, priceListID int64) ([]*domain.PriceListItem, error)

	// DeleteBatch removes a batch of items by ID
	DeleteBatch(ctx context.Context, ids []int64) error

	// List retrieves items with pagination, ordered by weight
	List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceListItem, int64, error)
}

// GormPriceListRepository is the GORM implementation of PriceListRepository
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewGormPriceListRepository creates a new GORM-based repository
func NewGormPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

func (r *GormPriceListRepository) Create(ctx context.Context, list *domain.PriceList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *GormPriceListRepository) Update(ctx context.Context, list *domain.PriceList) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *GormPriceListRepository) GetByID(ctx context.Context, id int64) (*domain.PriceList, error) {
	var list domain.PriceList
	err := r.db.WithContext(ctx).First(&list, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *GormPriceListRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.PriceList, error) {
	var lists []*domain.PriceList
	if len(ids) == 0 {
		return lists, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&lists).Error
	return lists, err
}

func (r *GormPriceListRepository) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.PriceList{}).Error
}

func (r *GormPriceListRepository) List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceList, int64, error) {
	var lists []*domain.PriceList
	var total int64

	query := r.db.WithContext(ctx)
	for key, value := range filter {
		if value != nil && value != "" {
			query = query.Where(key+" = ?", value)
		}
	}

	if err := query.Model(&domain.PriceList{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("weight ASC, id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&lists).Error

	return lists, total, err
}

// GormPriceListItemRepository is the GORM implementation of PriceListItemRepository
type GormPriceListItemRepository struct {
	db *gorm.DB
}

// NewGormPriceListItemRepository creates a new GORM-based item repository
func NewGormPriceListItemRepository(db *gorm.DB) *GormPriceListItemRepository {
	return &GormPriceListItemRepository{db: db}
}

func (r *GormPriceListItemRepository) Create(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormPriceListItemRepository) Update(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormPriceListItemRepository) GetByID(ctx context.Context, id int64) (*domain.PriceListItem, error) {
	var item domain.PriceListItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormPriceListItemRepository) GetByPriceListID(ctx context.Context, priceListID int64) ([]*domain.PriceListItem, error) {
	var items []*domain.PriceListItem
	err := r.db.WithContext(ctx).
		Where("price_list_id = ?", priceListID).
		Order("weight ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormPriceListItemRepository) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.PriceListItem{}).Error
}

func (r *GormPriceListItemRepository) List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]*domain.PriceListItem, int64, error) {
	var items []*domain.PriceListItem
	var total int64

	query := r.db.WithContext(ctx)
	for key, value := range filter {
		if value != nil && value != "" {
			query = query.Where(key+" = ?", value)
		}
	}

	if err := query.Model(&domain.PriceListItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("weight ASC, id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
