package repository

import (
	"context"
	"errors"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateSaleNumber means the generated sale number is already taken; the caller regenerates
var ErrDuplicateSaleNumber = errors.New("sale number already exists")

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindAll(ctx context.Context, window *model.DateRange) ([]model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale header and then its items
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	if err := tx.Omit("Items", "Cashier").Create(sale).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateSaleNumber
		}
		return apperr.Persistence(err, "failed to create sale")
	}

	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	if len(sale.Items) > 0 {
		if err := tx.Omit("Product").Create(&sale.Items).Error; err != nil {
			return apperr.Persistence(err, "failed to create sale items")
		}
	}
	return nil
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Cashier").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, id.String(), "sale "+id.String())
	}
	return &sale, nil
}

// FindAll lists sales newest first, optionally inside an inclusive date window
func (r *saleRepo) FindAll(ctx context.Context, window *model.DateRange) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Preload("Items").Preload("Cashier")
	if window != nil {
		start, end := window.Bounds()
		q = q.Where("created_at >= ? AND created_at < ?", start, end)
	}
	if err := q.Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list sales")
	}
	return sales, nil
}
