package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

type RestaurantCategoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	Slug         string  `json:"slug" binding:"required"`
	Description  *string `json:"description"`
	IconURL      *string `json:"iconUrl"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder int     `json:"displayOrder"`
}

// ListRestaurantCategories returns all restaurant categories (public)
func (h *Handler) ListRestaurantCategories(c *gin.Context) {
	query := h.db.Model(&models.RestaurantCategory{})
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	categories := []models.RestaurantCategory{}
	if err := query.Order("display_order, id").Find(&categories).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to fetch restaurant categories", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"categories": categories}, "")
}

// CreateRestaurantCategory adds a category; name and slug must be unique
func (h *Handler) CreateRestaurantCategory(c *gin.Context) {
	var req RestaurantCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	var count int64
	if err := h.db.Model(&models.RestaurantCategory{}).
		Where("name = ? OR slug = ?", req.Name, req.Slug).Count(&count).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to check category uniqueness", err))
		return
	}
	if count > 0 {
		fail(c, apperr.New(apperr.Conflict, "a category with that name or slug already exists"))
		return
	}

	category := models.RestaurantCategory{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		IconURL:      req.IconURL,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.db.Create(&category).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create category", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"category": category}, "category created")
}

// UpdateRestaurantCategory edits a category
func (h *Handler) UpdateRestaurantCategory(c *gin.Context) {
	var category models.RestaurantCategory
	if err := h.db.First(&category, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}

	var req RestaurantCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	var count int64
	if err := h.db.Model(&models.RestaurantCategory{}).
		Where("(name = ? OR slug = ?) AND id <> ?", req.Name, req.Slug, category.ID).
		Count(&count).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to check category uniqueness", err))
		return
	}
	if count > 0 {
		fail(c, apperr.New(apperr.Conflict, "a category with that name or slug already exists"))
		return
	}

	category.Name = req.Name
	category.Slug = req.Slug
	category.Description = req.Description
	category.IconURL = req.IconURL
	category.DisplayOrder = req.DisplayOrder
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.db.Save(&category).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to update category", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"category": category}, "category updated")
}

// DeleteRestaurantCategory removes a category and its restaurant links
func (h *Handler) DeleteRestaurantCategory(c *gin.Context) {
	var category models.RestaurantCategory
	if err := h.db.First(&category, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "category not found"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.RestaurantCategoryLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete category", err))
		return
	}
	respond(c, http.StatusOK, nil, "category deleted")
}
