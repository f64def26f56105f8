package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceListItem is one price override row: a purchasable catalog entry, a
// quantity bucket and the effective price, belonging to exactly one price list
// at a time.
//
// PriceListId is the authoritative parent link. Zero means unattached; the
// field is read-only from the item's own edit surface and is only written by
// the pricelist service or by explicit parent assignment.
type PriceListItem struct {
	ID                int64               `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Type              string              `gorm:"size:32;index;default:'product'" json:"type" form:"type"`
	PriceListId       int64               `gorm:"index" json:"price_list_id,string" form:"price_list_id"`
	PurchasedEntityId int64               `gorm:"index" json:"purchased_entity_id,string" form:"purchased_entity_id"`
	Name              string              `gorm:"size:50" json:"name" form:"name"`
	Quantity          int64               `gorm:"default:1" json:"quantity" form:"quantity"`
	Price             decimal.Decimal     `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	PriceCurrency     string              `gorm:"size:3" json:"price_currency" form:"price_currency"`
	ListPrice         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"list_price" form:"list_price"`
	ListPriceCurrency string              `gorm:"size:3" json:"list_price_currency" form:"list_price_currency"`
	UserId            int64               `gorm:"index" json:"user_id" form:"user_id"`
	Weight            int                 `gorm:"default:0" json:"weight" form:"weight"`
	Status            bool                `gorm:"default:true" json:"status" form:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TableName Specify table name
func (PriceListItem) TableName() string {
	return "price_list_item"
}

// HasPriceList reports whether the item carries a parent back-reference.
func (i *PriceListItem) HasPriceList() bool {
	return i.PriceListId != 0
}

// HasPurchasedEntity reports whether the item references a catalog entry.
func (i *PriceListItem) HasPurchasedEntity() bool {
	return i.PurchasedEntityId != 0
}

// GetListPrice returns the reference ("was") price, or nil when unset.
func (i *PriceListItem) GetListPrice() *decimal.Decimal {
	if !i.ListPrice.Valid {
		return nil
	}
	return &i.ListPrice.Decimal
}
