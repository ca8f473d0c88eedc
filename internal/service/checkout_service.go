package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultSaleNumberAttempts = 5

type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

type CreateSaleRequest struct {
	Items          []CartItem      `json:"items" validate:"required,min=1,dive"`
	TaxAmount      decimal.Decimal `json:"tax_amount" validate:"gte=0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	Notes          string          `json:"notes"`
}

type CheckoutService interface {
	CreateSale(ctx context.Context, req *CreateSaleRequest, cashier Actor) (*model.Sale, error)
	GetSales(ctx context.Context, window *model.DateRange) ([]model.Sale, error)
	GetSaleByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
}

type checkoutService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	ledger      LedgerService
	numbers     SaleNumberGenerator
	maxAttempts int
	events      EventPublisher
	cache       ReportCache
}

func NewCheckoutService(db *gorm.DB, pRepo repository.ProductRepository, sRepo repository.SaleRepository, ledger LedgerService,
	numbers SaleNumberGenerator, maxAttempts int, events EventPublisher, cache ReportCache) CheckoutService {
	if maxAttempts < 1 {
		maxAttempts = DefaultSaleNumberAttempts
	}
	return &checkoutService{
		db:          db,
		productRepo: pRepo,
		saleRepo:    sRepo,
		ledger:      ledger,
		numbers:     numbers,
		maxAttempts: maxAttempts,
		events:      publisherOrNoop(events),
		cache:       cache,
	}
}

// pricedLine is a cart line resolved against the catalogue at validation time
type pricedLine struct {
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
}

func lineLabel(i int) string {
	return fmt.Sprintf("line %d", i+1)
}

func validateCart(req *CreateSaleRequest) error {
	if len(req.Items) == 0 {
		return apperr.Validation("", "at least one item is required")
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return apperr.Validation(item.ProductID.String(), "%s: quantity must be at least 1", lineLabel(i))
		}
	}
	if req.TaxAmount.IsNegative() {
		return apperr.Validation("", "tax amount cannot be negative")
	}
	if req.DiscountAmount.IsNegative() {
		return apperr.Validation("", "discount amount cannot be negative")
	}
	if msg := validator.FirstError(req); msg != "" {
		return apperr.Validation("", "%s", msg)
	}
	return nil
}

// CreateSale converts a cart into a committed sale plus one ledger entry per line
func (s *checkoutService) CreateSale(ctx context.Context, req *CreateSaleRequest, cashier Actor) (*model.Sale, error) {
	// 1. Validasi Input
	if err := validateCart(req); err != nil {
		return nil, err
	}

	// 2. Resolve products, snapshot prices and check availability before touching anything
	lines, err := s.priceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// 3. Commit, regenerating the sale number on collision
	var sale *model.Sale
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number := s.numbers.Next()
		sale, err = s.commit(ctx, number, lines, req, cashier)
		if errors.Is(err, repository.ErrDuplicateSaleNumber) {
			log.Printf("[checkout] sale number %s already taken (attempt %d/%d)", number, attempt, s.maxAttempts)
			sale = nil
			continue
		}
		if err != nil {
			return nil, settle(err, "failed to commit sale")
		}
		break
	}
	if sale == nil {
		return nil, apperr.Conflict("", "could not allocate a unique sale number after %d attempts", s.maxAttempts)
	}

	// 4. Notify after commit
	s.publishSale(sale, lines, cashier)
	invalidateReports(ctx, s.cache)

	persisted, err := s.saleRepo.FindByID(ctx, sale.ID)
	if err != nil {
		log.Printf("[checkout] sale %s committed but reload failed: %v", sale.SaleNumber, err)
		return sale, nil
	}
	return persisted, nil
}

func (s *checkoutService) priceCart(ctx context.Context, items []CartItem) ([]pricedLine, error) {
	lines := make([]pricedLine, len(items))
	demand := make(map[uuid.UUID]int, len(items))

	for i, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, apperr.WithPrefix(err, lineLabel(i))
		}

		// Repeated products draw on the same stock
		demand[product.ID] += item.Quantity
		if product.CurrentStock < demand[product.ID] {
			return nil, apperr.Validation(product.ID.String(),
				"%s: insufficient stock for %s, available %d", lineLabel(i), product.Name, product.CurrentStock)
		}

		lines[i] = pricedLine{
			product:   product,
			quantity:  item.Quantity,
			unitPrice: product.Price.Round(2),
		}
	}
	return lines, nil
}

func (s *checkoutService) commit(ctx context.Context, number string, lines []pricedLine, req *CreateSaleRequest, cashier Actor) (*model.Sale, error) {
	var sale *model.Sale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks are taken in id order, never cart order, so overlapping carts cannot deadlock
		for _, id := range lockOrder(lines) {
			if _, err := s.productRepo.LockByID(tx, id); err != nil {
				return err
			}
		}

		tax := req.TaxAmount.Round(2)
		discount := req.DiscountAmount.Round(2)

		total := decimal.Zero
		items := make([]model.SaleItem, len(lines))
		for i, line := range lines {
			lineTotal := line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity)))
			total = total.Add(lineTotal)
			items[i] = model.SaleItem{
				ProductID:  line.product.ID,
				Quantity:   line.quantity,
				UnitPrice:  line.unitPrice,
				TotalPrice: lineTotal,
			}
		}

		sale = &model.Sale{
			SaleNumber:     number,
			TotalAmount:    total,
			TaxAmount:      tax,
			DiscountAmount: discount,
			FinalAmount:    total.Add(tax).Sub(discount),
			CashierID:      cashier.ref(),
			Notes:          req.Notes,
			Items:          items,
		}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}

		for i, line := range lines {
			// Re-check under the row lock; validation above read without one
			product, err := s.productRepo.LockByID(tx, line.product.ID)
			if err != nil {
				return apperr.WithPrefix(err, lineLabel(i))
			}
			if product.CurrentStock < line.quantity {
				return apperr.Conflict(product.ID.String(),
					"%s: insufficient stock for %s at commit, available %d", lineLabel(i), product.Name, product.CurrentStock)
			}

			_, _, err = s.ledger.ApplyInTx(tx, &ApplyTransactionRequest{
				ProductID:       line.product.ID,
				TransactionType: model.TxSale,
				Quantity:        line.quantity,
				UnitPrice:       decimal.NewNullDecimal(line.unitPrice),
				Notes:           fmt.Sprintf("Sale #%s", number),
			}, cashier)
			if err != nil {
				return apperr.WithPrefix(err, lineLabel(i))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// lockOrder returns the distinct products of the cart sorted by id
func lockOrder(lines []pricedLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.product.ID] {
			seen[line.product.ID] = true
			ids = append(ids, line.product.ID)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

func (s *checkoutService) GetSales(ctx context.Context, window *model.DateRange) ([]model.Sale, error) {
	return s.saleRepo.FindAll(ctx, window)
}

func (s *checkoutService) GetSaleByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(ctx, id)
}

func (s *checkoutService) publishSale(sale *model.Sale, lines []pricedLine, cashier Actor) {
	s.events.Publish("sale_created", map[string]interface{}{
		"sale": map[string]interface{}{
			"id":           sale.ID,
			"sale_number":  sale.SaleNumber,
			"final_amount": sale.FinalAmount,
			"item_count":   len(sale.Items),
		},
		"user":    cashier.payload(),
		"message": fmt.Sprintf("%s completed sale %s", cashier.displayName(), sale.SaleNumber),
	})

	for _, line := range lines {
		s.events.Publish("stock_update", map[string]interface{}{
			"action":     "sale_recorded",
			"product_id": line.product.ID,
			"sku":        line.product.SKU,
			"quantity":   line.quantity,
			"sale":       sale.SaleNumber,
		})
	}
}
