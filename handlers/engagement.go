package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
)

type ReviewRequest struct {
	RestaurantID *uint   `json:"restaurantId"`
	ProductID    *uint   `json:"productId"`
	OrderID      *uint   `json:"orderId"`
	Rating       int     `json:"rating" binding:"required,min=1,max=5"`
	Comment      *string `json:"comment"`

	FoodRating     *int `json:"foodRating"`
	ServiceRating  *int `json:"serviceRating"`
	DeliveryRating *int `json:"deliveryRating"`
}

func validSubRating(r *int) bool {
	return r == nil || (*r >= 1 && *r <= 5)
}

// CreateReview attaches a review to any combination of restaurant, product and
// order. The verified-purchase flag is computed from the caller's delivered
// orders, never taken from the request.
func (h *Handler) CreateReview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RestaurantID == nil && req.ProductID == nil && req.OrderID == nil {
		fail(c, apperr.New(apperr.Validation, "review must target a restaurant, product or order"))
		return
	}
	if !validSubRating(req.FoodRating) || !validSubRating(req.ServiceRating) || !validSubRating(req.DeliveryRating) {
		fail(c, apperr.New(apperr.Validation, "sub-ratings must be between 1 and 5"))
		return
	}

	if req.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := h.db.First(&restaurant, *req.RestaurantID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
			return
		}
	}
	if req.ProductID != nil {
		var product models.Product
		if err := h.db.First(&product, *req.ProductID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "product not found"))
			return
		}
	}
	var linkedOrder *models.Order
	if req.OrderID != nil {
		var order models.Order
		if err := h.db.First(&order, *req.OrderID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "order not found"))
			return
		}
		if order.UserID != userID {
			fail(c, apperr.New(apperr.Forbidden, "this order does not belong to you"))
			return
		}
		linkedOrder = &order
	}

	var verified bool
	if req.RestaurantID != nil || req.ProductID != nil {
		var err error
		verified, err = h.hasDeliveredOrder(userID, req.RestaurantID, req.ProductID)
		if err != nil {
			fail(c, err)
			return
		}
	} else if linkedOrder != nil {
		// Order-only review: the linked order itself decides the flag
		verified = linkedOrder.Status == models.StatusDelivered
	}

	review := models.Review{
		UserID:             userID,
		RestaurantID:       req.RestaurantID,
		ProductID:          req.ProductID,
		OrderID:            req.OrderID,
		Rating:             req.Rating,
		Comment:            req.Comment,
		FoodRating:         req.FoodRating,
		ServiceRating:      req.ServiceRating,
		DeliveryRating:     req.DeliveryRating,
		IsVerifiedPurchase: verified,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if review.RestaurantID != nil {
			if err := addRating(tx, &models.Restaurant{}, *review.RestaurantID, review.Rating); err != nil {
				return err
			}
		}
		if review.ProductID != nil {
			if err := addRating(tx, &models.Product{}, *review.ProductID, review.Rating); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create review", err))
		return
	}

	respond(c, http.StatusCreated, gin.H{"review": review}, "review created")
}

// hasDeliveredOrder reports whether the user has a delivered order matching
// the review target: any delivered order at the restaurant, or one containing
// the product when a product is targeted.
func (h *Handler) hasDeliveredOrder(userID uint, restaurantID, productID *uint) (bool, error) {
	query := h.db.Model(&models.Order{}).
		Where("orders.user_id = ? AND orders.status = ?", userID, models.StatusDelivered)
	if productID != nil {
		query = query.
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("order_items.product_id = ?", *productID)
	} else if restaurantID != nil {
		query = query.Where("orders.restaurant_id = ?", *restaurantID)
	} else {
		return false, nil
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperr.Wrap(apperr.Store, "failed to verify purchase", err)
	}
	return count > 0, nil
}

// addRating folds one rating into a target's running average
func addRating(tx *gorm.DB, model any, id uint, rating int) error {
	return tx.Model(model).Where("id = ?", id).Updates(map[string]any{
		"average_rating": gorm.Expr("(average_rating * total_reviews + ?) / (total_reviews + 1)", rating),
		"total_reviews":  gorm.Expr("total_reviews + 1"),
	}).Error
}

// removeRating takes one rating back out of a target's running average
func removeRating(tx *gorm.DB, model any, id uint, rating int) error {
	return tx.Model(model).Where("id = ?", id).Updates(map[string]any{
		"average_rating": gorm.Expr(
			"CASE WHEN total_reviews > 1 THEN (average_rating * total_reviews - ?) / (total_reviews - 1) ELSE 0 END", rating),
		"total_reviews": gorm.Expr("CASE WHEN total_reviews > 0 THEN total_reviews - 1 ELSE 0 END"),
	}).Error
}

// ListRestaurantReviews returns reviews for a restaurant (public)
func (h *Handler) ListRestaurantReviews(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
		return
	}

	reviews := []models.Review{}
	if err := h.db.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to list reviews", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews}, "")
}

// ListProductReviews returns reviews for a product (public)
func (h *Handler) ListProductReviews(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "product not found"))
		return
	}

	reviews := []models.Review{}
	if err := h.db.Where("product_id = ?", product.ID).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to list reviews", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews}, "")
}

// DeleteReview removes the caller's review and rolls its rating back out of
// the target aggregates
func (h *Handler) DeleteReview(c *gin.Context) {
	var review models.Review
	if err := h.db.First(&review, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "review not found"))
		return
	}
	if review.UserID != middleware.GetUserID(c) {
		fail(c, apperr.New(apperr.Forbidden, "this review does not belong to you"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if review.RestaurantID != nil {
			if err := removeRating(tx, &models.Restaurant{}, *review.RestaurantID, review.Rating); err != nil {
				return err
			}
		}
		if review.ProductID != nil {
			if err := removeRating(tx, &models.Product{}, *review.ProductID, review.Rating); err != nil {
				return err
			}
		}
		return tx.Delete(&review).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete review", err))
		return
	}
	respond(c, http.StatusOK, nil, "review deleted")
}

type FavoriteRequest struct {
	RestaurantID *uint `json:"restaurantId"`
	ProductID    *uint `json:"productId"`
}

// CreateFavorite saves a restaurant or a product; exactly one target per row
func (h *Handler) CreateFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req FavoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	if (req.RestaurantID == nil) == (req.ProductID == nil) {
		fail(c, apperr.New(apperr.Validation, "favorite must target exactly one of a restaurant or a product"))
		return
	}

	query := h.db.Model(&models.Favorite{}).Where("user_id = ?", userID)
	if req.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := h.db.First(&restaurant, *req.RestaurantID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
			return
		}
		query = query.Where("restaurant_id = ?", *req.RestaurantID)
	} else {
		var product models.Product
		if err := h.db.First(&product, *req.ProductID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "product not found"))
			return
		}
		query = query.Where("product_id = ?", *req.ProductID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to check favorites", err))
		return
	}
	if count > 0 {
		fail(c, apperr.New(apperr.Conflict, "already in favorites"))
		return
	}

	favorite := models.Favorite{
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		ProductID:    req.ProductID,
	}
	if err := h.db.Create(&favorite).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create favorite", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"favorite": favorite}, "favorite added")
}

// ListFavorites returns the caller's favorites
func (h *Handler) ListFavorites(c *gin.Context) {
	favorites := []models.Favorite{}
	if err := h.db.Where("user_id = ?", middleware.GetUserID(c)).
		Order("created_at desc").Find(&favorites).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to list favorites", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"count": len(favorites), "favorites": favorites}, "")
}

// DeleteFavorite removes one of the caller's favorites
func (h *Handler) DeleteFavorite(c *gin.Context) {
	var favorite models.Favorite
	if err := h.db.First(&favorite, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "favorite not found"))
		return
	}
	if favorite.UserID != middleware.GetUserID(c) {
		fail(c, apperr.New(apperr.Forbidden, "this favorite does not belong to you"))
		return
	}
	if err := h.db.Delete(&favorite).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete favorite", err))
		return
	}
	respond(c, http.StatusOK, nil, "favorite removed")
}
