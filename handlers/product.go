package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

type ProductRequest struct {
	CategoryID  *uint   `json:"categoryId"`
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`

	Price         decimal.Decimal     `json:"price" binding:"required"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	IsAvailable   *bool               `json:"isAvailable"`
	Stock         *int                `json:"stock"`

	PreparationTime *int  `json:"preparationTime"`
	Calories        *int  `json:"calories"`
	IsVegetarian    bool  `json:"isVegetarian"`
	IsVegan         bool  `json:"isVegan"`
	IsGlutenFree    bool  `json:"isGlutenFree"`
	IsSpicy         bool  `json:"isSpicy"`
	SpicyLevel      *int  `json:"spicyLevel"`
	IsPopular       bool  `json:"isPopular"`
	IsFeatured      bool  `json:"isFeatured"`
	DisplayOrder    int   `json:"displayOrder"`
}

func (r *ProductRequest) validate() error {
	if r.Price.IsNegative() || r.Price.IsZero() {
		return apperr.New(apperr.Validation, "price must be positive")
	}
	if r.Stock != nil && *r.Stock < 0 {
		return apperr.New(apperr.Validation, "stock must not be negative")
	}
	if r.IsSpicy {
		if r.SpicyLevel == nil || *r.SpicyLevel < 1 || *r.SpicyLevel > 5 {
			return apperr.New(apperr.Validation, "spicyLevel must be between 1 and 5 for spicy products")
		}
	}
	return nil
}

// GetMenu returns the restaurant's products with their option groups (public)
func (h *Handler) GetMenu(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	query := h.db.Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order, id")
	}).Preload("OptionGroups.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order, id")
	}).Where("restaurant_id = ?", restaurant.ID)

	if c.Query("available") == "true" {
		query = query.Where("is_available = ?", true)
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	products := []models.Product{}
	if err := query.Order("display_order, id").Find(&products).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to fetch menu", err))
		return
	}

	categories := []models.ProductCategory{}
	if err := h.db.Where("restaurant_id = ? AND is_active = ?", restaurant.ID, true).
		Order("display_order, id").Find(&categories).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to fetch menu categories", err))
		return
	}

	respond(c, http.StatusOK, gin.H{
		"restaurant": restaurant.Name,
		"categories": categories,
		"products":   products,
	}, "")
}

// CreateProduct adds a product to a restaurant's menu
func (h *Handler) CreateProduct(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		fail(c, err)
		return
	}
	if req.CategoryID != nil {
		var category models.ProductCategory
		if err := h.db.First(&category, *req.CategoryID).Error; err != nil ||
			category.RestaurantID != restaurant.ID {
			fail(c, apperr.New(apperr.Validation, "product category does not belong to this restaurant"))
			return
		}
	}

	product := models.Product{
		RestaurantID:    restaurant.ID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		IsAvailable:     true,
		Stock:           req.Stock,
		PreparationTime: req.PreparationTime,
		Calories:        req.Calories,
		IsVegetarian:    req.IsVegetarian,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
		IsSpicy:         req.IsSpicy,
		SpicyLevel:      req.SpicyLevel,
		IsPopular:       req.IsPopular,
		IsFeatured:      req.IsFeatured,
		DisplayOrder:    req.DisplayOrder,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Create(&product).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create product", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"product": product}, "product created")
}

// UpdateProduct edits a product's fields. Existing order snapshots are never
// touched.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "product not found"))
		return
	}

	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		fail(c, err)
		return
	}
	if req.CategoryID != nil {
		var category models.ProductCategory
		if err := h.db.First(&category, *req.CategoryID).Error; err != nil ||
			category.RestaurantID != product.RestaurantID {
			fail(c, apperr.New(apperr.Validation, "product category does not belong to this restaurant"))
			return
		}
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Slug = req.Slug
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.Price = req.Price
	product.OriginalPrice = req.OriginalPrice
	product.Stock = req.Stock
	product.PreparationTime = req.PreparationTime
	product.Calories = req.Calories
	product.IsVegetarian = req.IsVegetarian
	product.IsVegan = req.IsVegan
	product.IsGlutenFree = req.IsGlutenFree
	product.IsSpicy = req.IsSpicy
	product.SpicyLevel = req.SpicyLevel
	product.IsPopular = req.IsPopular
	product.IsFeatured = req.IsFeatured
	product.DisplayOrder = req.DisplayOrder
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&product).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to update product", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"product": product}, "product updated")
}

// DeleteProduct removes a product with its option groups and options
func (h *Handler) DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "product not found"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var groupIDs []uint
		if err := tx.Model(&models.ProductOptionGroup{}).Where("product_id = ?", product.ID).Pluck("id", &groupIDs).Error; err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := tx.Where("group_id IN ?", groupIDs).Delete(&models.ProductOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", groupIDs).Delete(&models.ProductOptionGroup{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete product", err))
		return
	}
	respond(c, http.StatusOK, nil, "product deleted")
}

type ProductCategoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

// CreateProductCategory adds a menu section to a restaurant
func (h *Handler) CreateProductCategory(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	var req ProductCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category := models.ProductCategory{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.db.Create(&category).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create product category", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"category": category}, "product category created")
}

// DeleteProductCategory removes a menu section, detaching its products rather
// than deleting them
func (h *Handler) DeleteProductCategory(c *gin.Context) {
	var category models.ProductCategory
	if err := h.db.First(&category, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "product category not found"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete product category", err))
		return
	}
	respond(c, http.StatusOK, nil, "product category deleted")
}

type OptionGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	IsRequired   bool   `json:"isRequired"`
	MinSelection int    `json:"minSelection"`
	MaxSelection int    `json:"maxSelection"`
	DisplayOrder int    `json:"displayOrder"`
}

// CreateOptionGroup adds an option group to a product
func (h *Handler) CreateOptionGroup(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "product not found"))
		return
	}

	var req OptionGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.MaxSelection < 1 {
		req.MaxSelection = 1
	}
	if req.MinSelection < 0 || req.MinSelection > req.MaxSelection {
		fail(c, apperr.New(apperr.Validation, "minSelection must be between 0 and maxSelection"))
		return
	}

	group := models.ProductOptionGroup{
		ProductID:    product.ID,
		Name:         req.Name,
		IsRequired:   req.IsRequired,
		MinSelection: req.MinSelection,
		MaxSelection: req.MaxSelection,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.db.Create(&group).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create option group", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"optionGroup": group}, "option group created")
}

// DeleteOptionGroup removes an option group with its options
func (h *Handler) DeleteOptionGroup(c *gin.Context) {
	var group models.ProductOptionGroup
	if err := h.db.First(&group, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "option group not found"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.ProductOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete option group", err))
		return
	}
	respond(c, http.StatusOK, nil, "option group deleted")
}

type OptionRequest struct {
	Name          string          `json:"name" binding:"required"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
	IsAvailable   *bool           `json:"isAvailable"`
	IsDefault     bool            `json:"isDefault"`
	DisplayOrder  int             `json:"displayOrder"`
}

// CreateOption adds an option to a group
func (h *Handler) CreateOption(c *gin.Context) {
	var group models.ProductOptionGroup
	if err := h.db.First(&group, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "option group not found"))
		return
	}

	var req OptionRequest
	if !bindJSON(c, &req) {
		return
	}

	option := models.ProductOption{
		GroupID:       group.ID,
		Name:          req.Name,
		PriceModifier: req.PriceModifier,
		IsAvailable:   true,
		IsDefault:     req.IsDefault,
		DisplayOrder:  req.DisplayOrder,
	}
	if req.IsAvailable != nil {
		option.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Create(&option).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create option", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"option": option}, "option created")
}

// DeleteOption removes a single option
func (h *Handler) DeleteOption(c *gin.Context) {
	var option models.ProductOption
	if err := h.db.First(&option, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "option not found"))
		return
	}
	if err := h.db.Delete(&option).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete option", err))
		return
	}
	respond(c, http.StatusOK, nil, "option deleted")
}
