package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Sale struct {
	BaseModel
	SaleNumber     string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"sale_number"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;check:chk_sales_tax_amount,tax_amount >= 0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;check:chk_sales_discount_amount,discount_amount >= 0" json:"discount_amount"`
	FinalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_amount"`
	CashierID      *uuid.UUID      `gorm:"type:uuid;index" json:"cashier_id"`
	Cashier        *User           `gorm:"foreignKey:CashierID;constraint:OnDelete:SET NULL;" json:"cashier,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes"`
	Items          []SaleItem      `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
}

// CashierName mirrors StockTransaction.CreatorName for sales
func (s *Sale) CashierName() string {
	if s.Cashier == nil {
		return "N/A"
	}
	return s.Cashier.DisplayName()
}

type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `gorm:"not null;check:chk_sale_items_quantity,quantity >= 1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
