package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ProductHeader identifies the product a summary is about
type ProductHeader struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	CurrentStock int             `json:"current_stock"`
	Price        decimal.Decimal `json:"price"`
}

type MovementSummary struct {
	TotalPurchased int `json:"total_purchased"`
	TotalSold      int `json:"total_sold"`
	NetMovement    int `json:"net_movement"`
}

func newMovementSummary(purchased, sold int) MovementSummary {
	return MovementSummary{TotalPurchased: purchased, TotalSold: sold, NetMovement: purchased - sold}
}

// LedgerLine is one ledger row as shown in a product summary
type LedgerLine struct {
	ID              uuid.UUID             `json:"id"`
	Sequence        int64                 `json:"sequence"`
	TransactionType model.TransactionType `json:"transaction_type"`
	Quantity        int                   `json:"quantity"`
	PreviousStock   int                   `json:"previous_stock"`
	NewStock        int                   `json:"new_stock"`
	UnitPrice       decimal.NullDecimal   `json:"unit_price"`
	TotalAmount     decimal.NullDecimal   `json:"total_amount"`
	Notes           string                `json:"notes"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
}

type ProductSummary struct {
	Product      ProductHeader   `json:"product"`
	Summary      MovementSummary `json:"summary"`
	Transactions []LedgerLine    `json:"transactions"`
}

type FleetSummaryRow struct {
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	CurrentStock int       `json:"current_stock"`
	MovementSummary
}

type FleetSummary struct {
	Window   *model.DateRange  `json:"window,omitempty"`
	Products []FleetSummaryRow `json:"products"`
}

type InventoryReportRow struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	CurrentStock      int             `json:"current_stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Price             decimal.Decimal `json:"price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	StockStatus       string          `json:"stock_status"`
	LastUpdated       time.Time       `json:"last_updated"`
}

type SalesReportRow struct {
	SaleNumber     string          `json:"sale_number"`
	Date           time.Time       `json:"date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Cashier        string          `json:"cashier"`
	ItemCount      int             `json:"item_count"`
}

type ReportService interface {
	SingleProductSummary(ctx context.Context, productID uuid.UUID) (*ProductSummary, error)
	FleetSummary(ctx context.Context, window *model.DateRange) (*FleetSummary, error)
	InventoryReport(ctx context.Context) ([]InventoryReportRow, error)
	SalesReport(ctx context.Context, window *model.DateRange) ([]SalesReportRow, error)
	DashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	StockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
}

type reportService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	saleRepo        repository.SaleRepository
	cache           ReportCache
	clock           Clock
	sfGroup         singleflight.Group
}

func NewReportService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, sRepo repository.SaleRepository, cache ReportCache, clock Clock) ReportService {
	if clock == nil {
		clock = SystemClock
	}
	return &reportService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		saleRepo:        sRepo,
		cache:           cache,
		clock:           clock,
	}
}

func windowKey(window *model.DateRange) string {
	if window == nil {
		return "all"
	}
	return window.From.Format(model.DateLayout) + ":" + window.To.Format(model.DateLayout)
}

// cached runs load behind the report cache. Concurrent misses on the same key share one load.
func cached[T any](ctx context.Context, s *reportService, key string, load func() (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Printf("[reports] cache error for %s: %v", key, err)
		}
		if found {
			return hit, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		gen, genErr := s.generation(ctx)
		result, err := load()
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			s.store(ctx, key, gen, result)
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return val.(T), nil
}

func (s *reportService) generation(ctx context.Context) (uint64, error) {
	if s.cache == nil {
		return 0, errors.New("no report cache")
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		log.Printf("[reports] cache generation unavailable: %v", err)
	}
	return gen, err
}

// store caches a loaded report unless an invalidation ran since gen was read
func (s *reportService) store(ctx context.Context, key string, gen uint64, value interface{}) {
	now, err := s.cache.Generation(ctx)
	if err != nil || now != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Printf("[reports] failed to cache %s: %v", key, err)
	}
}

// SingleProductSummary totals a product's purchases and sales over its whole ledger
func (s *reportService) SingleProductSummary(ctx context.Context, productID uuid.UUID) (*ProductSummary, error) {
	return cached(ctx, s, "report:product:"+productID.String(), func() (*ProductSummary, error) {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		entries, err := s.transactionRepo.FindByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}

		purchased, sold := 0, 0
		lines := make([]LedgerLine, len(entries))
		for i := range entries {
			e := &entries[i]
			switch e.TransactionType {
			case model.TxPurchase:
				purchased += e.Quantity
			case model.TxSale:
				sold += e.Quantity
			}
			lines[i] = LedgerLine{
				ID:              e.ID,
				Sequence:        e.Sequence,
				TransactionType: e.TransactionType,
				Quantity:        e.Quantity,
				PreviousStock:   e.PreviousStock,
				NewStock:        e.NewStock,
				UnitPrice:       e.UnitPrice,
				TotalAmount:     e.TotalAmount,
				Notes:           e.Notes,
				CreatedBy:       e.CreatorName(),
				CreatedAt:       e.CreatedAt,
			}
		}

		return &ProductSummary{
			Product: ProductHeader{
				ID:           product.ID,
				Name:         product.Name,
				SKU:          product.SKU,
				CurrentStock: product.CurrentStock,
				Price:        product.Price,
			},
			Summary:      newMovementSummary(purchased, sold),
			Transactions: lines,
		}, nil
	})
}

// FleetSummary computes per-product totals for every active product, optionally inside a date window
func (s *reportService) FleetSummary(ctx context.Context, window *model.DateRange) (*FleetSummary, error) {
	return cached(ctx, s, "report:fleet:"+windowKey(window), func() (*FleetSummary, error) {
		products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		ids := make([]uuid.UUID, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		totals, err := s.transactionRepo.SumByProduct(ctx, ids, window)
		if err != nil {
			return nil, err
		}

		rows := make([]FleetSummaryRow, len(products))
		for i := range products {
			p := &products[i]
			t := totals[p.ID]
			rows[i] = FleetSummaryRow{
				ProductID:       p.ID,
				SKU:             p.SKU,
				Name:            p.Name,
				Category:        categoryName(p),
				CurrentStock:    p.CurrentStock,
				MovementSummary: newMovementSummary(t.Purchased, t.Sold),
			}
		}
		return &FleetSummary{Window: window, Products: rows}, nil
	})
}

func categoryName(p *model.Product) string {
	if p.Category == nil {
		return "N/A"
	}
	return p.Category.Name
}

func (s *reportService) InventoryReport(ctx context.Context) ([]InventoryReportRow, error) {
	return cached(ctx, s, "report:inventory", func() ([]InventoryReportRow, error) {
		products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		rows := make([]InventoryReportRow, len(products))
		for i := range products {
			p := &products[i]
			rows[i] = InventoryReportRow{
				SKU:               p.SKU,
				Name:              p.Name,
				Category:          categoryName(p),
				CurrentStock:      p.CurrentStock,
				LowStockThreshold: p.LowStockThreshold,
				Price:             p.Price,
				CostPrice:         p.CostPrice,
				StockStatus:       p.StockStatus(),
				LastUpdated:       p.UpdatedAt,
			}
		}
		return rows, nil
	})
}

func (s *reportService) SalesReport(ctx context.Context, window *model.DateRange) ([]SalesReportRow, error) {
	return cached(ctx, s, "report:sales:"+windowKey(window), func() ([]SalesReportRow, error) {
		sales, err := s.saleRepo.FindAll(ctx, window)
		if err != nil {
			return nil, err
		}

		rows := make([]SalesReportRow, len(sales))
		for i := range sales {
			sale := &sales[i]
			rows[i] = SalesReportRow{
				SaleNumber:     sale.SaleNumber,
				Date:           sale.CreatedAt,
				TotalAmount:    sale.TotalAmount,
				TaxAmount:      sale.TaxAmount,
				DiscountAmount: sale.DiscountAmount,
				FinalAmount:    sale.FinalAmount,
				Cashier:        sale.CashierName(),
				ItemCount:      len(sale.Items),
			}
		}
		return rows, nil
	})
}

func (s *reportService) DashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return cached(ctx, s, "report:dashboard:stats", func() (*repository.DashboardStats, error) {
		return s.transactionRepo.GetDashboardStats(ctx)
	})
}

// StockMovement returns daily inbound/outbound units for the last days, today included
func (s *reportService) StockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days < 1 || days > 366 {
		return nil, apperr.Validation("", "days must be between 1 and 366, got %d", days)
	}

	now := s.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1).Add(-time.Nanosecond)

	key := fmt.Sprintf("report:dashboard:movement:%s:%d", today.Format(model.DateLayout), days)
	return cached(ctx, s, key, func() ([]repository.StockMovementData, error) {
		return s.transactionRepo.GetStockMovement(ctx, start, end)
	})
}
