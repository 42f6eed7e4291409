package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// CreateCategory inserts a category; parentID may be empty for top-level.
func CreateCategory(gdb *gorm.DB, name, parentID string) (*models.Category, error) {
	c := models.Category{
		ID:     uuid.NewString(),
		Name:   name,
		Active: true,
	}
	if parentID != "" {
		c.ParentID = &parentID
	}
	if err := gdb.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("catalog: create category %q: %w", name, err)
	}
	return &c, nil
}

// UpdateCategory renames or re-parents a category.
func UpdateCategory(gdb *gorm.DB, id string, name, parentID *string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if name != nil {
		updates["name"] = *name
	}
	if parentID != nil {
		updates["parent_id"] = *parentID
	}

	res := gdb.Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("catalog: update category %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return nil
}

// DeleteCategory soft-deletes a category.
func DeleteCategory(gdb *gorm.DB, id string) error {
	res := gdb.Model(&models.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("catalog: delete category %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return nil
}

// ListCategories returns all active categories.
func ListCategories(gdb *gorm.DB) ([]models.Category, error) {
	var cats []models.Category
	if err := gdb.Where("active = ?", true).Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	return cats, nil
}

// GetCategory returns a category by id.
func GetCategory(gdb *gorm.DB, id string) (*models.Category, error) {
	var c models.Category
	err := gdb.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get category %s: %w", id, err)
	}
	return &c, nil
}
