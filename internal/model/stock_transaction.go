package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxSale       TransactionType = "sale"
	TxAdjustment TransactionType = "adjustment"
	TxReturn     TransactionType = "return"
)

var TransactionTypes = []TransactionType{TxPurchase, TxSale, TxAdjustment, TxReturn}

func (t TransactionType) Valid() bool {
	switch t {
	case TxPurchase, TxSale, TxAdjustment, TxReturn:
		return true
	}
	return false
}

// Delta returns the signed stock change a transaction of this type applies for quantity
func (t TransactionType) Delta(quantity int) int {
	if t == TxSale || t == TxAdjustment {
		return -quantity
	}
	return quantity
}

// StockTransaction is an append-only ledger row. It is never updated or deleted.
type StockTransaction struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_stock_tx_product_created,priority:1;uniqueIndex:idx_stock_tx_product_seq,priority:1" json:"product_id"`
	// Sequence numbers a product's ledger rows 1, 2, 3... in commit order
	Sequence        int64               `gorm:"not null;uniqueIndex:idx_stock_tx_product_seq,priority:2" json:"sequence"`
	Product         *Product            `gorm:"constraint:OnDelete:RESTRICT;" json:"product,omitempty"`
	TransactionType TransactionType     `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	Quantity        int                 `gorm:"not null;check:chk_stock_tx_quantity,quantity > 0" json:"quantity"`
	PreviousStock   int                 `gorm:"not null" json:"previous_stock"`
	NewStock        int                 `gorm:"not null" json:"new_stock"`
	UnitPrice       decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	TotalAmount     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	Notes           string              `gorm:"type:text" json:"notes"`
	CreatedByID     *uuid.UUID          `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedBy       *User               `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL;" json:"created_by,omitempty"`
	CreatedAt       time.Time           `gorm:"index:idx_stock_tx_product_created,priority:2" json:"created_at"`
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// CreatorName is the display name of whoever recorded the row
func (t *StockTransaction) CreatorName() string {
	if t.CreatedBy == nil {
		return "System"
	}
	return t.CreatedBy.DisplayName()
}
