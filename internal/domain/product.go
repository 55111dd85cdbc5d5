package domain

import "time"

// Product is one supply-chain catalog item. Stock levels are decimals in the
// store; quantities here use float64 the way the rest of the model does.
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Reference     string    `gorm:"uniqueIndex;size:32;not null" json:"reference"`
	Name          string    `gorm:"size:120;not null;index" json:"name"`
	Description   string    `gorm:"size:500" json:"description"`
	CurrentStock  float64   `gorm:"not null;default:0" json:"current_stock"`
	ReorderPoint  float64   `gorm:"not null;default:0" json:"reorder_point"`
	UnitOfMeasure string    `gorm:"size:16;not null" json:"unit_of_measure"`
	Category      string    `gorm:"size:64;index" json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BelowReorderPoint reports whether the product needs replenishment.
func (p *Product) BelowReorderPoint() bool {
	return p.CurrentStock < p.ReorderPoint
}
