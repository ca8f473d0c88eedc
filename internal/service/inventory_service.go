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

type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,max=100"`
	Name              string          `json:"name" validate:"required,max=200"`
	Description       string          `json:"description"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	Price             decimal.Decimal `json:"price" validate:"gte=0"`
	CostPrice         decimal.Decimal `json:"cost_price" validate:"gte=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	// OpeningStock is booked as a purchase so the ledger accounts for it
	OpeningStock int `json:"opening_stock" validate:"gte=0"`
}

// UpdateProductRequest carries the non-stock fields; nil means unchanged
type UpdateProductRequest struct {
	SKU               *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	ClearCategory     bool             `json:"clear_category"`
	Price             *decimal.Decimal `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"is_active"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	CreateCategory(ctx context.Context, req *CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategories(ctx context.Context) ([]model.Category, error)
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ledger       LedgerService
	events       EventPublisher
	cache        ReportCache
}

func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, cRepo repository.CategoryRepository, ledger LedgerService, events EventPublisher, cache ReportCache) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  pRepo,
		categoryRepo: cRepo,
		ledger:       ledger,
		events:       publisherOrNoop(events),
		cache:        cache,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *CreateProductRequest, actor Actor) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	if req.Price.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apperr.Validation(req.SKU, "price and cost price cannot be negative")
	}
	if req.OpeningStock < 0 {
		return nil, apperr.Validation(req.SKU, "opening stock cannot be negative")
	}
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperr.Validation(req.SKU, "%s", msg)
	}

	threshold := model.DefaultLowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}

	product := &model.Product{
		AuditFields:       model.AuditFields{CreatedBy: actor.label(), UpdatedBy: actor.label()},
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price.Round(2),
		CostPrice:         req.CostPrice.Round(2),
		LowStockThreshold: threshold,
		IsActive:          true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CategoryID != nil {
			var count int64
			if err := tx.Model(&model.Category{}).Where("id = ?", *req.CategoryID).Count(&count).Error; err != nil {
				return apperr.Persistence(err, "failed to check category")
			}
			if count == 0 {
				return apperr.NotFound(req.CategoryID.String(), "category %s not found", req.CategoryID)
			}
		}

		// 2. Simpan ke Database (stock starts at zero)
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}

		// 3. Opening stock goes through the ledger in the same unit
		if req.OpeningStock > 0 {
			_, updated, err := s.ledger.ApplyInTx(tx, &ApplyTransactionRequest{
				ProductID:       product.ID,
				TransactionType: model.TxPurchase,
				Quantity:        req.OpeningStock,
				UnitPrice:       decimal.NewNullDecimal(product.CostPrice),
				Notes:           "Opening stock",
			}, actor)
			if err != nil {
				return err
			}
			product.CurrentStock = updated.CurrentStock
		}
		return nil
	})
	if err != nil {
		return nil, settle(err, "failed to create product")
	}

	// 4. Broadcast ke WebSocket
	s.events.Publish("stock_update", map[string]interface{}{
		"action": "product_created",
		"product": map[string]interface{}{
			"id":    product.ID,
			"sku":   product.SKU,
			"name":  product.Name,
			"stock": product.CurrentStock,
			"price": product.Price,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.displayName(), product.Name),
	})
	invalidateReports(ctx, s.cache)

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error) {
	if (req.Price != nil && req.Price.IsNegative()) || (req.CostPrice != nil && req.CostPrice.IsNegative()) {
		return nil, apperr.Validation(id.String(), "price and cost price cannot be negative")
	}
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperr.Validation(id.String(), "%s", msg)
	}

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock so a concurrent ledger write cannot interleave with the read of the row
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return err
		}

		if req.SKU != nil {
			existing.SKU = *req.SKU
		}
		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.ClearCategory {
			existing.CategoryID = nil
		} else if req.CategoryID != nil {
			existing.CategoryID = req.CategoryID
		}
		if req.Price != nil {
			existing.Price = req.Price.Round(2)
		}
		if req.CostPrice != nil {
			existing.CostPrice = req.CostPrice.Round(2)
		}
		if req.LowStockThreshold != nil {
			existing.LowStockThreshold = *req.LowStockThreshold
		}
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}
		existing.UpdatedBy = actor.label()

		if err := s.productRepo.UpdateDetails(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, settle(err, "failed to update product")
	}

	s.events.Publish("stock_update", map[string]interface{}{
		"action": "product_updated",
		"product": map[string]interface{}{
			"id":    updated.ID,
			"sku":   updated.SKU,
			"name":  updated.Name,
			"stock": updated.CurrentStock,
			"price": updated.Price,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.displayName(), updated.Name),
	})
	invalidateReports(ctx, s.cache)

	return s.productRepo.FindByID(ctx, id)
}

// DeactivateProduct hides a product from the catalogue; its ledger history stays intact
func (s *inventoryService) DeactivateProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.productRepo.Deactivate(tx, id, actor.label())
	})
	if err != nil {
		return settle(err, "failed to deactivate product")
	}

	s.events.Publish("stock_update", map[string]interface{}{
		"action":     "product_deactivated",
		"product_id": id,
		"user":       actor.payload(),
	})
	invalidateReports(ctx, s.cache)
	return nil
}

func (s *inventoryService) GetProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, filter)
}

func (s *inventoryService) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*model.Category, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperr.Validation("", "%s", msg)
	}

	category := &model.Category{Name: req.Name, Description: req.Description}
	if err := s.categoryRepo.Create(s.db.WithContext(ctx), category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *inventoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*model.Category, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, apperr.Validation(id.String(), "%s", msg)
	}

	category := &model.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := s.categoryRepo.Update(s.db.WithContext(ctx), category); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.cache)
	return s.categoryRepo.FindByID(ctx, id)
}

// DeleteCategory removes the category and leaves its products uncategorised
func (s *inventoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.categoryRepo.Delete(tx, id)
	})
	if err != nil {
		return settle(err, "failed to delete category")
	}
	invalidateReports(ctx, s.cache)
	return nil
}

func (s *inventoryService) GetCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}
