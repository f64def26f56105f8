package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the storage format for price list start/end dates. Dates are
// kept date-only on purpose: reading one back anchors it to the local time
// context instead of a fixed UTC calendar day, so the displayed date never
// shifts across timezones.
const DateLayout = "2006-01-02"

// PriceList is a named, dated collection of per-product price overrides,
// orderable relative to other price lists via weight.
//
// ItemIds is a denormalized, insertion-ordered cache of child ids. The
// authoritative half of the relationship is the PriceListId back-reference on
// each item; the pricelist service repairs missing back-references after every
// parent save.
type PriceList struct {
	ID        int64                      `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Type      string                     `gorm:"size:32;index;default:'product'" json:"type" form:"type"`
	Name      string                     `gorm:"size:50;index" json:"name" form:"name"`
	UserId    int64                      `gorm:"index" json:"user_id" form:"user_id"`
	StartDate string                     `gorm:"size:10" json:"start_date" form:"start_date"`
	EndDate   string                     `gorm:"size:10" json:"end_date" form:"end_date"`
	Weight    int                        `gorm:"default:0" json:"weight" form:"weight"`
	Status    bool                       `gorm:"default:true" json:"status" form:"status"`
	ItemIds   datatypes.JSONSlice[int64] `json:"item_ids" form:"item_ids"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// TableName Specify table name
func (PriceList) TableName() string {
	return "price_list"
}

// GetItemIds returns the ordered child ids currently referenced by the list.
func (p *PriceList) GetItemIds() []int64 {
	ids := make([]int64, len(p.ItemIds))
	copy(ids, p.ItemIds)
	return ids
}

// SetItemIds replaces the ordered child id cache.
func (p *PriceList) SetItemIds(ids []int64) {
	p.ItemIds = datatypes.NewJSONSlice(ids)
}

// GetStartDate parses the stored start date in the local time context.
func (p *PriceList) GetStartDate() (time.Time, error) {
	return time.ParseInLocation(DateLayout, p.StartDate, time.Local)
}

// SetStartDate stores the date-only part of t.
func (p *PriceList) SetStartDate(t time.Time) {
	p.StartDate = t.Format(DateLayout)
}

// GetEndDate returns the end date, or nil when the list is open-ended.
func (p *PriceList) GetEndDate() (*time.Time, error) {
	if p.EndDate == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, p.EndDate, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetEndDate stores the date-only part of t; nil clears the end date.
func (p *PriceList) SetEndDate(t *time.Time) {
	if t == nil {
		p.EndDate = ""
		return
	}
	p.EndDate = t.Format(DateLayout)
}
