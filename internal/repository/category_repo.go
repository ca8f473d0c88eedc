package repository

import (
	"context"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(tx *gorm.DB, category *model.Category) error
	Update(tx *gorm.DB, category *model.Category) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to list categories")
	}
	return categories, nil
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, id.String(), "category "+id.String())
	}
	return &category, nil
}

func (r *categoryRepo) Create(tx *gorm.DB, category *model.Category) error {
	if err := tx.Create(category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(category.Name, "category %q already exists", category.Name)
		}
		return apperr.Persistence(err, "failed to create category")
	}
	return nil
}

func (r *categoryRepo) Update(tx *gorm.DB, category *model.Category) error {
	result := tx.Model(&model.Category{}).
		Where("id = ?", category.ID).
		Select("name", "description").
		Updates(category)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return apperr.Conflict(category.Name, "category %q already exists", category.Name)
		}
		return apperr.Persistence(result.Error, "failed to update category")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(category.ID.String(), "category %s not found", category.ID)
	}
	return nil
}

// Delete detaches the category's products before removing it, so it behaves the same
// whether or not the store enforces ON DELETE SET NULL
func (r *categoryRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Model(&model.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return apperr.Persistence(err, "failed to detach products from category")
	}
	result := tx.Delete(&model.Category{}, "id = ?", id)
	if result.Error != nil {
		return apperr.Persistence(result.Error, "failed to delete category")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(id.String(), "category %s not found", id)
	}
	return nil
}
