package repository

import (
	"context"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID *uuid.UUID
	LowStock   bool
	ActiveOnly bool
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	UpdateDetails(tx *gorm.DB, product *model.Product) error
	Deactivate(tx *gorm.DB, id uuid.UUID, updatedBy string) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	SetStock(tx *gorm.DB, id uuid.UUID, previousStock, newStock int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(product.SKU, "SKU %s already exists", product.SKU)
		}
		return apperr.Persistence(err, "failed to create product")
	}
	return nil
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Category")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.LowStock {
		q = q.Where("current_stock <= low_stock_threshold")
	}
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list products")
	}
	return products, nil
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, id.String(), "product "+id.String())
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, notFoundOr(err, sku, "product with SKU "+sku)
	}
	return &product, nil
}

// UpdateDetails writes everything except current_stock, which belongs to the ledger
func (r *productRepo) UpdateDetails(tx *gorm.DB, product *model.Product) error {
	err := tx.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("sku", "name", "description", "category_id", "price", "cost_price", "low_stock_threshold", "is_active", "updated_by", "updated_at").
		Updates(product).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(product.SKU, "SKU %s already exists", product.SKU)
		}
		return apperr.Persistence(err, "failed to update product")
	}
	return nil
}

func (r *productRepo) Deactivate(tx *gorm.DB, id uuid.UUID, updatedBy string) error {
	result := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		})
	if result.Error != nil {
		return apperr.Persistence(result.Error, "failed to deactivate product")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(id.String(), "product %s not found", id)
	}
	return nil
}

// LockByID reads the product with a row lock held until tx ends
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, id.String(), "product "+id.String())
	}
	return &product, nil
}

// SetStock is a compare-and-set on current_stock: it only applies when the row still holds
// previousStock, and never writes a negative level.
func (r *productRepo) SetStock(tx *gorm.DB, id uuid.UUID, previousStock, newStock int, updatedBy string) error {
	if newStock < 0 {
		return apperr.Conflict(id.String(), "stock for product %s cannot go below zero (would be %d)", id, newStock)
	}

	result := tx.Model(&model.Product{}).
		Where("id = ? AND current_stock = ?", id, previousStock).
		Updates(map[string]interface{}{
			"current_stock": newStock,
			"updated_by":    updatedBy,
		})
	if result.Error != nil {
		if database.IsCheckViolation(result.Error) {
			return apperr.Conflict(id.String(), "stock for product %s cannot go below zero", id)
		}
		return apperr.Persistence(result.Error, "failed to update stock")
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict(id.String(), "stock for product %s changed concurrently", id)
	}
	return nil
}
