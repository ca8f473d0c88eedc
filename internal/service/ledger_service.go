package service

import (
	"context"
	"fmt"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplyTransactionRequest is one stock-affecting event to append to the ledger
type ApplyTransactionRequest struct {
	ProductID       uuid.UUID             `json:"product_id" validate:"uuid_required"`
	TransactionType model.TransactionType `json:"transaction_type" validate:"required,oneof=purchase sale adjustment return"`
	Quantity        int                   `json:"quantity" validate:"gt=0"`
	UnitPrice       decimal.NullDecimal   `json:"unit_price" validate:"omitempty,gte=0"`
	Notes           string                `json:"notes"`
	// PreviousStock, when set, must match the persisted level or the write is rejected
	PreviousStock *int `json:"previous_stock,omitempty"`
}

type RestockRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Notes     string          `json:"notes"`
}

type LedgerService interface {
	ApplyTransaction(ctx context.Context, req *ApplyTransactionRequest, actor Actor) (*model.StockTransaction, error)
	ApplyInTx(tx *gorm.DB, req *ApplyTransactionRequest, actor Actor) (*model.StockTransaction, *model.Product, error)
	Restock(ctx context.Context, req *RestockRequest, actor Actor) (*model.Product, error)
	GetTransactions(ctx context.Context, productID *uuid.UUID) ([]model.StockTransaction, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
}

type ledgerService struct {
	db              *gorm.DB
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	events          EventPublisher
	cache           ReportCache
}

func NewLedgerService(db *gorm.DB, pRepo repository.ProductRepository, tRepo repository.TransactionRepository, events EventPublisher, cache ReportCache) LedgerService {
	return &ledgerService{
		db:              db,
		productRepo:     pRepo,
		transactionRepo: tRepo,
		events:          publisherOrNoop(events),
		cache:           cache,
	}
}

func validateApply(req *ApplyTransactionRequest) error {
	if req.Quantity <= 0 {
		return apperr.Validation(req.ProductID.String(), "quantity must be a positive integer, got %d", req.Quantity)
	}
	if !req.TransactionType.Valid() {
		return apperr.Validation("", "invalid transaction type %q", req.TransactionType)
	}
	if req.UnitPrice.Valid && req.UnitPrice.Decimal.IsNegative() {
		return apperr.Validation(req.ProductID.String(), "unit price cannot be negative")
	}
	if msg := validator.FirstError(req); msg != "" {
		return apperr.Validation("", "%s", msg)
	}
	return nil
}

// ApplyTransaction appends one ledger row and moves the product's stock, as a single unit
func (s *ledgerService) ApplyTransaction(ctx context.Context, req *ApplyTransactionRequest, actor Actor) (*model.StockTransaction, error) {
	if err := validateApply(req); err != nil {
		return nil, err
	}

	var entry *model.StockTransaction
	var product *model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, product, err = s.ApplyInTx(tx, req, actor)
		return err
	})
	if err != nil {
		return nil, settle(err, "failed to apply stock transaction")
	}

	entry.Product = product
	publishStockUpdate(s.events, entry, product, actor)
	invalidateReports(ctx, s.cache)

	return entry, nil
}

// ApplyInTx runs the ledger write on a transaction owned by the caller. Stock sufficiency is the
// caller's concern; only the non-negative floor is enforced here.
func (s *ledgerService) ApplyInTx(tx *gorm.DB, req *ApplyTransactionRequest, actor Actor) (*model.StockTransaction, *model.Product, error) {
	if err := validateApply(req); err != nil {
		return nil, nil, err
	}

	// A. Lock product row
	product, err := s.productRepo.LockByID(tx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}

	previous := product.CurrentStock
	if req.PreviousStock != nil && *req.PreviousStock != previous {
		return nil, nil, apperr.Conflict(product.ID.String(),
			"stock for %s is %d, not the expected %d", product.Name, previous, *req.PreviousStock)
	}

	// B. Hitung Logic Stok
	newStock := previous + req.TransactionType.Delta(req.Quantity)

	sequence, err := s.transactionRepo.NextSequence(tx, product.ID)
	if err != nil {
		return nil, nil, err
	}

	entry := &model.StockTransaction{
		ProductID:       product.ID,
		Sequence:        sequence,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		PreviousStock:   previous,
		NewStock:        newStock,
		Notes:           req.Notes,
		CreatedByID:     actor.ref(),
	}
	if req.UnitPrice.Valid {
		unitPrice := req.UnitPrice.Decimal.Round(2)
		entry.UnitPrice = decimal.NewNullDecimal(unitPrice)
		entry.TotalAmount = decimal.NewNullDecimal(unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))))
	}

	// C. Ledger row first, then the product
	if err := s.transactionRepo.Create(tx, entry); err != nil {
		return nil, nil, err
	}
	if err := s.productRepo.SetStock(tx, product.ID, previous, newStock, actor.label()); err != nil {
		return nil, nil, err
	}

	product.CurrentStock = newStock
	product.UpdatedBy = actor.label()
	return entry, product, nil
}

// Restock records a purchase and returns the refreshed product
func (s *ledgerService) Restock(ctx context.Context, req *RestockRequest, actor Actor) (*model.Product, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperr.Validation(req.ProductID.String(), "%s", msg)
	}

	_, err := s.ApplyTransaction(ctx, &ApplyTransactionRequest{
		ProductID:       req.ProductID,
		TransactionType: model.TxPurchase,
		Quantity:        req.Quantity,
		UnitPrice:       decimal.NewNullDecimal(req.UnitPrice),
		Notes:           req.Notes,
	}, actor)
	if err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, req.ProductID)
}

func (s *ledgerService) GetTransactions(ctx context.Context, productID *uuid.UUID) ([]model.StockTransaction, error) {
	return s.transactionRepo.FindAll(ctx, productID)
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	return s.transactionRepo.FindByID(ctx, id)
}

func publishStockUpdate(events EventPublisher, entry *model.StockTransaction, product *model.Product, actor Actor) {
	verb := "added"
	if entry.TransactionType.Delta(1) < 0 {
		verb = "removed"
	}

	events.Publish("stock_update", map[string]interface{}{
		"action": "transaction_created",
		"transaction": map[string]interface{}{
			"id":               entry.ID,
			"transaction_type": entry.TransactionType,
			"quantity":         entry.Quantity,
			"product_id":       product.ID,
			"product": map[string]interface{}{
				"name": product.Name,
				"sku":  product.SKU,
			},
			"previous_stock": entry.PreviousStock,
			"new_stock":      entry.NewStock,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.displayName(), verb, entry.Quantity, product.Name, entry.TransactionType),
	})

	if product.IsLowStock() {
		events.Publish("low_stock", map[string]interface{}{
			"product_id":          product.ID,
			"sku":                 product.SKU,
			"name":                product.Name,
			"current_stock":       product.CurrentStock,
			"low_stock_threshold": product.LowStockThreshold,
		})
	}
}
