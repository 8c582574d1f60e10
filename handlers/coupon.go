package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
)

type CouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`

	DiscountType  string          `json:"discountType" binding:"required"`
	DiscountValue decimal.Decimal `json:"discountValue" binding:"required"`

	MinimumOrderAmount decimal.NullDecimal `json:"minimumOrderAmount"`
	MaxDiscountAmount  decimal.NullDecimal `json:"maxDiscountAmount"`
	MaxUsesPerUser     int                 `json:"maxUsesPerUser"`
	MaxTotalUses       *int                `json:"maxTotalUses"`

	RestaurantID *uint `json:"restaurantId"`

	ValidFrom  time.Time `json:"validFrom" binding:"required"`
	ValidUntil time.Time `json:"validUntil" binding:"required"`
	IsActive   *bool     `json:"isActive"`
}

// CreateCoupon registers a new coupon code
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}

	discountType := models.DiscountType(req.DiscountType)
	if discountType != models.DiscountPercentage && discountType != models.DiscountFixed {
		fail(c, apperr.New(apperr.Validation, "discountType must be percentage or fixed"))
		return
	}
	if !req.DiscountValue.IsPositive() {
		fail(c, apperr.New(apperr.Validation, "discountValue must be positive"))
		return
	}
	if discountType == models.DiscountPercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		fail(c, apperr.New(apperr.Validation, "percentage discount cannot exceed 100"))
		return
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		fail(c, apperr.New(apperr.Validation, "validUntil must be after validFrom"))
		return
	}
	if req.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := h.db.First(&restaurant, *req.RestaurantID).Error; err != nil {
			fail(c, apperr.New(apperr.NotFound, "restaurant not found"))
			return
		}
	}

	code := strings.TrimSpace(req.Code)
	var count int64
	if err := h.db.Model(&models.Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to check coupon code", err))
		return
	}
	if count > 0 {
		fail(c, apperr.New(apperr.Conflict, "a coupon with that code already exists"))
		return
	}

	coupon := models.Coupon{
		Code:               code,
		Description:        req.Description,
		DiscountType:       discountType,
		DiscountValue:      req.DiscountValue,
		MinimumOrderAmount: req.MinimumOrderAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		MaxUsesPerUser:     req.MaxUsesPerUser,
		MaxTotalUses:       req.MaxTotalUses,
		RestaurantID:       req.RestaurantID,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
	}
	if coupon.MaxUsesPerUser <= 0 {
		coupon.MaxUsesPerUser = 1
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create coupon", err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"coupon": coupon}, "coupon created")
}

type ValidateCouponRequest struct {
	Code         string          `json:"code" binding:"required"`
	RestaurantID uint            `json:"restaurantId" binding:"required"`
	Subtotal     decimal.Decimal `json:"subtotal" binding:"required"`
}

// ValidateCoupon previews the discount a coupon would apply to a hypothetical
// subtotal. Nothing is redeemed; only order creation mutates the usage counter.
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	discount, err := h.orders.PreviewDiscount(c.Request.Context(),
		req.Code, middleware.GetUserID(c), req.RestaurantID, req.Subtotal)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"code":     strings.TrimSpace(req.Code),
		"discount": discount,
		"valid":    true,
	}, "")
}
