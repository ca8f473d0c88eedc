package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 10

type Product struct {
	BaseModel
	AuditFields
	SKU         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`

	// Written only by the stock ledger
	CurrentStock int `gorm:"not null;default:0;check:chk_products_current_stock,current_stock >= 0" json:"current_stock"`

	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	LowStockThreshold int             `gorm:"not null" json:"low_stock_threshold"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
}

// IsLowStock reports whether the product is at or below its reorder threshold
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.LowStockThreshold
}

func (p *Product) StockStatus() string {
	if p.IsLowStock() {
		return "Low Stock"
	}
	return "Adequate Stock"
}

// ProductResponse adds the derived stock fields for API responses
type ProductResponse struct {
	Product
	IsLowStock  bool   `json:"is_low_stock"`
	StockStatus string `json:"stock_status"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		Product:     *p,
		IsLowStock:  p.IsLowStock(),
		StockStatus: p.StockStatus(),
	}
}
