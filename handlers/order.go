package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/orders"
	"food-marketplace-api/statemachine"
)

type PlaceOrderRequest struct {
	RestaurantID  uint   `json:"restaurantId" binding:"required"`
	AddressID     uint   `json:"addressId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	CouponCode    string `json:"couponCode"`
	CustomerNotes string `json:"customerNotes"`
	Items         []struct {
		ProductID           uint   `json:"productId" binding:"required"`
		Quantity            int    `json:"quantity" binding:"required,min=1"`
		OptionIDs           []uint `json:"optionIds"`
		SpecialInstructions string `json:"specialInstructions"`
	} `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := orders.CreateInput{
		UserID:        middleware.GetUserID(c),
		RestaurantID:  req.RestaurantID,
		AddressID:     req.AddressID,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		CouponCode:    req.CouponCode,
		CustomerNotes: req.CustomerNotes,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, orders.ItemInput{
			ProductID:           item.ProductID,
			Quantity:            item.Quantity,
			OptionIDs:           item.OptionIDs,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	order, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"order": order}, "order placed successfully")
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	list, err := h.orders.ListForUser(c.Request.Context(), middleware.GetUserID(c), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"count": len(list), "orders": list}, "")
}

// GetOrderDetail returns a single order with its snapshots (owner only)
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if order.UserID != middleware.GetUserID(c) {
		fail(c, apperr.New(apperr.Forbidden, "this order does not belong to you"))
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order}, "")
}

type UpdateOrderStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	Reason          string `json:"reason"`
	RestaurantNotes string `json:"restaurantNotes"`
}

// UpdateOrderStatus handles the restaurant-side lifecycle transitions
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), orders.TransitionInput{
		OrderID:         orderID,
		Actor:           statemachine.ActorRestaurant,
		To:              models.OrderStatus(req.Status),
		Reason:          req.Reason,
		RestaurantNotes: req.RestaurantNotes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order}, "order status updated")
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelOrder cancels a pending or confirmed order (owner only)
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req CancelOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), orderID, middleware.GetUserID(c), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order}, "order cancelled")
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.Validation, "invalid id")
	}
	return uint(id), nil
}
