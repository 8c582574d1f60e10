package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

type RestaurantRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	BannerURL   *string `json:"bannerUrl"`

	Street    string  `json:"street" binding:"required"`
	City      string  `json:"city" binding:"required"`
	State     string  `json:"state" binding:"required"`
	ZipCode   string  `json:"zipCode" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`

	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"`

	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	MinimumOrder          decimal.Decimal `json:"minimumOrder"`
	DeliveryRadius        float64         `json:"deliveryRadius"`
	EstimatedDeliveryTime int             `json:"estimatedDeliveryTime"`

	Status     string `json:"status"`
	IsOpen     *bool  `json:"isOpen"`
	IsFeatured *bool  `json:"isFeatured"`

	CategoryIDs []uint `json:"categoryIds"`
}

var restaurantStatuses = map[models.RestaurantStatus]bool{
	models.RestaurantActive:    true,
	models.RestaurantInactive:  true,
	models.RestaurantSuspended: true,
}

// ListRestaurants returns restaurants (public) with optional filters
func (h *Handler) ListRestaurants(c *gin.Context) {
	query := h.db.Model(&models.Restaurant{}).Preload("Categories.Category")

	if slug := c.Query("category"); slug != "" {
		query = query.
			Joins("JOIN restaurant_category_links ON restaurant_category_links.restaurant_id = restaurants.id").
			Joins("JOIN restaurant_categories ON restaurant_categories.id = restaurant_category_links.category_id").
			Where("restaurant_categories.slug = ?", slug)
	}
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}
	if c.Query("open") == "true" {
		query = query.Where("is_open = ? AND status = ?", true, models.RestaurantActive)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("restaurants.name LIKE ?", "%"+search+"%")
	}

	restaurants := []models.Restaurant{}
	if err := query.Order("is_featured desc, featured_order, restaurants.id").Find(&restaurants).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to list restaurants", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants}, "")
}

// GetRestaurant returns a single restaurant with hours and categories
func (h *Handler) GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.Preload("Hours").Preload("Categories.Category").
		First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}
	respond(c, http.StatusOK, gin.H{"restaurant": restaurant}, "")
}

// CreateRestaurant registers a restaurant and links its categories
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if !bindJSON(c, &req) {
		return
	}

	status := models.RestaurantStatus(req.Status)
	if req.Status == "" {
		status = models.RestaurantActive
	}
	if !restaurantStatuses[status] {
		fail(c, apperr.New(apperr.Validation, "status must be active, inactive or suspended"))
		return
	}

	restaurant := models.Restaurant{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		BannerURL:   req.BannerURL,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Phone:       req.Phone,
		Email:       req.Email,

		DeliveryFee:           req.DeliveryFee,
		MinimumOrder:          req.MinimumOrder,
		DeliveryRadius:        req.DeliveryRadius,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,

		Status: status,
		IsOpen: true,
	}
	if restaurant.DeliveryRadius == 0 {
		restaurant.DeliveryRadius = 5
	}
	if restaurant.EstimatedDeliveryTime == 0 {
		restaurant.EstimatedDeliveryTime = 30
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}
	if req.IsFeatured != nil {
		restaurant.IsFeatured = *req.IsFeatured
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, categoryID := range req.CategoryIDs {
			var category models.RestaurantCategory
			if err := tx.First(&category, categoryID).Error; err != nil {
				return apperr.Newf(apperr.NotFound, "restaurant category %d not found", categoryID)
			}
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		for _, categoryID := range req.CategoryIDs {
			link := models.RestaurantCategoryLink{RestaurantID: restaurant.ID, CategoryID: categoryID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"restaurant": restaurant}, "restaurant created")
}

// UpdateRestaurant edits restaurant fields and replaces category links when
// categoryIds is provided
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	var req RestaurantRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Status != "" {
		status := models.RestaurantStatus(req.Status)
		if !restaurantStatuses[status] {
			fail(c, apperr.New(apperr.Validation, "status must be active, inactive or suspended"))
			return
		}
		restaurant.Status = status
	}

	restaurant.Name = req.Name
	restaurant.Slug = req.Slug
	restaurant.Description = req.Description
	restaurant.LogoURL = req.LogoURL
	restaurant.BannerURL = req.BannerURL
	restaurant.Street = req.Street
	restaurant.City = req.City
	restaurant.State = req.State
	restaurant.ZipCode = req.ZipCode
	restaurant.Latitude = req.Latitude
	restaurant.Longitude = req.Longitude
	restaurant.Phone = req.Phone
	restaurant.Email = req.Email
	restaurant.DeliveryFee = req.DeliveryFee
	restaurant.MinimumOrder = req.MinimumOrder
	if req.DeliveryRadius > 0 {
		restaurant.DeliveryRadius = req.DeliveryRadius
	}
	if req.EstimatedDeliveryTime > 0 {
		restaurant.EstimatedDeliveryTime = req.EstimatedDeliveryTime
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}
	if req.IsFeatured != nil {
		restaurant.IsFeatured = *req.IsFeatured
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&restaurant).Error; err != nil {
			return err
		}
		if req.CategoryIDs == nil {
			return nil
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.RestaurantCategoryLink{}).Error; err != nil {
			return err
		}
		for _, categoryID := range req.CategoryIDs {
			var category models.RestaurantCategory
			if err := tx.First(&category, categoryID).Error; err != nil {
				return apperr.Newf(apperr.NotFound, "restaurant category %d not found", categoryID)
			}
			link := models.RestaurantCategoryLink{RestaurantID: restaurant.ID, CategoryID: categoryID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"restaurant": restaurant}, "restaurant updated")
}

// DeleteRestaurant removes a restaurant and everything under it. The cascade
// is enforced here rather than left to store constraints so the behavior is
// the same on SQLite and Postgres.
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&models.Order{}).Where("restaurant_id = ?", restaurant.ID).Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			var itemIDs []uint
			if err := tx.Model(&models.OrderItem{}).Where("order_id IN ?", orderIDs).Pluck("id", &itemIDs).Error; err != nil {
				return err
			}
			if len(itemIDs) > 0 {
				if err := tx.Where("order_item_id IN ?", itemIDs).Delete(&models.OrderItemOption{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
				return err
			}
		}

		var productIDs []uint
		if err := tx.Model(&models.Product{}).Where("restaurant_id = ?", restaurant.ID).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			var groupIDs []uint
			if err := tx.Model(&models.ProductOptionGroup{}).Where("product_id IN ?", productIDs).Pluck("id", &groupIDs).Error; err != nil {
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
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.ProductCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.RestaurantHours{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.RestaurantCategoryLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&restaurant).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete restaurant", err))
		return
	}

	respond(c, http.StatusOK, nil, "restaurant deleted")
}

type HoursRequest struct {
	Hours []struct {
		DayOfWeek int    `json:"dayOfWeek"`
		OpenTime  string `json:"openTime"`
		CloseTime string `json:"closeTime"`
		IsClosed  bool   `json:"isClosed"`
	} `json:"hours" binding:"required"`
}

// SetRestaurantHours replaces the weekly schedule
func (h *Handler) SetRestaurantHours(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	var req HoursRequest
	if !bindJSON(c, &req) {
		return
	}

	seen := map[int]bool{}
	rows := make([]models.RestaurantHours, 0, len(req.Hours))
	for _, entry := range req.Hours {
		if entry.DayOfWeek < 0 || entry.DayOfWeek > 6 {
			fail(c, apperr.New(apperr.Validation, "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)"))
			return
		}
		if seen[entry.DayOfWeek] {
			fail(c, apperr.Newf(apperr.Validation, "duplicate entry for day %d", entry.DayOfWeek))
			return
		}
		seen[entry.DayOfWeek] = true
		if !entry.IsClosed && (!validClockTime(entry.OpenTime) || !validClockTime(entry.CloseTime)) {
			fail(c, apperr.New(apperr.Validation, "openTime and closeTime must be HH:MM"))
			return
		}
		rows = append(rows, models.RestaurantHours{
			RestaurantID: restaurant.ID,
			DayOfWeek:    entry.DayOfWeek,
			OpenTime:     entry.OpenTime,
			CloseTime:    entry.CloseTime,
			IsClosed:     entry.IsClosed,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.RestaurantHours{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to set hours", err))
		return
	}

	respond(c, http.StatusOK, gin.H{"hours": rows}, "hours updated")
}

func validClockTime(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	hh := (int(v[0]-'0'))*10 + int(v[1]-'0')
	mm := (int(v[3]-'0'))*10 + int(v[4]-'0')
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return hh >= 0 && hh <= 23 && mm >= 0 && mm <= 59
}
