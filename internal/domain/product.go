package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable catalog entry. It is the reference target of price
// list items in the default "product" bundle; item prices override its base
// price.
type Product struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Name         string          `gorm:"size:200;index" json:"name" form:"name"`
	Sku          string          `gorm:"size:64;uniqueIndex" json:"sku" form:"sku"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"base_price" form:"base_price"`
	BaseCurrency string          `gorm:"size:3;default:'EUR'" json:"base_currency" form:"base_currency"`
	Status       string          `gorm:"size:20;index;default:'enabled'" json:"status" form:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}
