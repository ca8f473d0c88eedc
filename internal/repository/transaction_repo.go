package repository

import (
	"context"
	"time"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.StockTransaction) error
	NextSequence(tx *gorm.DB, productID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, productID *uuid.UUID) ([]model.StockTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockTransaction, error)
	SumByProduct(ctx context.Context, productIDs []uuid.UUID, window *model.DateRange) (map[uuid.UUID]MovementTotals, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// MovementTotals holds the summed quantities of one product's ledger, per type
type MovementTotals struct {
	Purchased int `json:"purchased"`
	Sold      int `json:"sold"`
	Adjusted  int `json:"adjusted"`
	Returned  int `json:"returned"`
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

// newestFirst orders ledger rows by commit time, breaking timestamp ties with the per-product
// sequence and then the id so the order is stable across products too
const newestFirst = "created_at DESC, sequence DESC, id DESC"

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.StockTransaction) error {
	if err := tx.Omit("Product", "CreatedBy").Create(transaction).Error; err != nil {
		return apperr.Persistence(err, "failed to record stock transaction")
	}
	return nil
}

// NextSequence returns the next ledger position for the product. The caller must hold the
// product row lock so that two writers cannot draw the same number.
func (r *transactionRepo) NextSequence(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var last int64
	err := tx.Model(&model.StockTransaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, apperr.Persistence(err, "failed to read ledger sequence")
	}
	return last + 1, nil
}

func (r *transactionRepo) FindAll(ctx context.Context, productID *uuid.UUID) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	q := r.db.WithContext(ctx).Preload("Product").Preload("CreatedBy")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if err := q.Order(newestFirst).Find(&transactions).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list stock transactions")
	}
	return transactions, nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var transaction model.StockTransaction
	if err := r.db.WithContext(ctx).Preload("Product").Preload("CreatedBy").First(&transaction, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, id.String(), "stock transaction "+id.String())
	}
	return &transaction, nil
}

// FindByProduct returns the product's ledger, newest first
func (r *transactionRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("product_id = ?", productID).
		Order(newestFirst).
		Find(&transactions).Error
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load product ledger")
	}
	return transactions, nil
}

// SumByProduct aggregates ledger quantities per product and type, optionally inside a date window.
// Products without rows are absent from the result.
func (r *transactionRepo) SumByProduct(ctx context.Context, productIDs []uuid.UUID, window *model.DateRange) (map[uuid.UUID]MovementTotals, error) {
	totals := make(map[uuid.UUID]MovementTotals, len(productIDs))
	if len(productIDs) == 0 {
		return totals, nil
	}

	q := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			product_id,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) as purchased,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) as sold,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) as adjusted,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN quantity ELSE 0 END), 0) as returned
		`, model.TxPurchase, model.TxSale, model.TxAdjustment, model.TxReturn).
		Where("product_id IN ?", productIDs)
	if window != nil {
		start, end := window.Bounds()
		q = q.Where("created_at >= ? AND created_at < ?", start, end)
	}

	rows, err := q.Group("product_id").Rows()
	if err != nil {
		return nil, apperr.Persistence(err, "failed to summarize stock transactions")
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var t MovementTotals
		if err := rows.Scan(&id, &t.Purchased, &t.Sold, &t.Adjusted, &t.Returned); err != nil {
			return nil, apperr.Persistence(err, "failed to read stock summary")
		}
		totals[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(err, "failed to read stock summary")
	}

	return totals, nil
}

// GetStockMovement aggregates daily inbound (purchase, return) and outbound (sale, adjustment) units
func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN transaction_type IN (?, ?) THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transaction_type IN (?, ?) THEN quantity ELSE 0 END), 0) as outbound
		`, model.TxPurchase, model.TxReturn, model.TxSale, model.TxAdjustment).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, apperr.Persistence(err, "failed to load stock movement")
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		var day interface{}
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, apperr.Persistence(err, "failed to read stock movement")
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}

	return results, rows.Err()
}

// DATE() comes back as a string on sqlite and a time on postgres
func formatDay(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format(model.DateLayout)
	case []byte:
		return string(d)
	case string:
		return d
	}
	return ""
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)
	active := db.Model(&model.Product{}).Where("is_active = ?", true)

	if err := active.Session(&gorm.Session{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to count products")
	}

	// Low stock uses each product's own threshold
	if err := active.Session(&gorm.Session{}).Where("current_stock <= low_stock_threshold").Count(&stats.LowStockCount).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to count low stock products")
	}

	var valuation decimal.NullDecimal
	if err := active.Session(&gorm.Session{}).Select("SUM(current_stock * price)").Row().Scan(&valuation); err != nil {
		return nil, apperr.Persistence(err, "failed to compute stock valuation")
	}
	stats.TotalValuation = valuation.Decimal

	return &stats, nil
}
