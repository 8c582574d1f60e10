// Package orders implements the order lifecycle: transactional creation with
// catalog snapshots, state transitions with per-stage milestones, and
// cancellation with stock and coupon reversal.
package orders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/pricing"
	"food-marketplace-api/statemachine"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

// Service runs order operations against an injected store handle
type Service struct {
	db      *gorm.DB
	taxRate decimal.Decimal
}

func NewService(db *gorm.DB, taxRate decimal.Decimal) *Service {
	return &Service{db: db, taxRate: taxRate}
}

type ItemInput struct {
	ProductID           uint
	Quantity            int
	OptionIDs           []uint
	SpecialInstructions string
}

type CreateInput struct {
	UserID        uint
	RestaurantID  uint
	AddressID     uint
	PaymentMethod models.PaymentMethod
	CouponCode    string
	CustomerNotes string
	Items         []ItemInput
}

var paymentMethods = map[models.PaymentMethod]bool{
	models.PaymentCash:          true,
	models.PaymentCard:          true,
	models.PaymentYape:          true,
	models.PaymentPlin:          true,
	models.PaymentDigitalWallet: true,
}

// Create validates the cart, snapshots catalog state onto order lines, applies
// the delivery fee, tax and at most one coupon, and persists the whole order
// atomically. Stock and coupon usage caps are enforced with guarded UPDATEs so
// concurrent orders cannot both succeed against the same last unit or the same
// exhausted coupon.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "item quantity must be positive")
		}
	}
	if !paymentMethods[in.PaymentMethod] {
		return nil, apperr.New(apperr.Validation, "invalid payment method")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, in.RestaurantID).Error; err != nil {
			return notFoundOr(err, "restaurant not found")
		}
		if restaurant.Status != models.RestaurantActive {
			return apperr.New(apperr.Validation, "restaurant is not accepting orders")
		}
		if !restaurant.IsOpen {
			return apperr.New(apperr.Validation, "restaurant is currently closed")
		}

		var address models.Address
		if err := tx.First(&address, in.AddressID).Error; err != nil {
			return notFoundOr(err, "address not found")
		}
		if address.UserID != in.UserID {
			return apperr.New(apperr.Forbidden, "address does not belong to you")
		}

		var (
			items []models.OrderItem
			lines []pricing.Line
		)
		for _, it := range in.Items {
			item, line, err := s.buildItem(tx, restaurant.ID, it)
			if err != nil {
				return err
			}
			items = append(items, *item)
			lines = append(lines, *line)
		}

		subtotal := pricing.Subtotal(lines)
		if subtotal.LessThan(restaurant.MinimumOrder) {
			return apperr.Newf(apperr.Validation, "order subtotal %s is below the restaurant minimum of %s",
				subtotal.StringFixed(2), restaurant.MinimumOrder.StringFixed(2))
		}
		deliveryFee := restaurant.DeliveryFee
		tax := pricing.Tax(subtotal, s.taxRate)

		discount := decimal.Zero
		var couponID *uint
		var couponCode *string
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			coupon, d, err := s.redeemCoupon(tx, code, in.UserID, restaurant.ID, subtotal, deliveryFee)
			if err != nil {
				return err
			}
			discount = d
			couponID = &coupon.ID
			couponCode = &coupon.Code
		}

		number, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber:   number,
			UserID:        in.UserID,
			RestaurantID:  restaurant.ID,
			AddressID:     address.ID,
			Status:        models.StatusPending,
			Subtotal:      subtotal,
			DeliveryFee:   deliveryFee,
			Discount:      discount,
			Tax:           tax,
			Total:         pricing.Total(subtotal, deliveryFee, tax, discount),
			CouponID:      couponID,
			CouponCode:    couponCode,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: models.PaymentPending,
			Items:         items,
		}
		if notes := strings.TrimSpace(in.CustomerNotes); notes != "" {
			order.CustomerNotes = &notes
		}
		eta := time.Now().Add(time.Duration(restaurant.EstimatedDeliveryTime) * time.Minute)
		order.EstimatedDeliveryTimeAt = &eta

		if err := tx.Create(&order).Error; err != nil {
			return apperr.Wrap(apperr.Store, "failed to place order", err)
		}

		if err := tx.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).
			UpdateColumn("total_orders", gorm.Expr("total_orders + 1")).Error; err != nil {
			return apperr.Wrap(apperr.Store, "failed to update restaurant stats", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("order_id", order.ID).Str("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).Msg("order placed")
	return s.Get(ctx, order.ID)
}

// buildItem validates one cart line against current catalog state, decrements
// stock, bumps product stats and returns the snapshot plus its pricing line.
func (s *Service) buildItem(tx *gorm.DB, restaurantID uint, in ItemInput) (*models.OrderItem, *pricing.Line, error) {
	var product models.Product
	if err := tx.Preload("OptionGroups.Options").First(&product, in.ProductID).Error; err != nil {
		return nil, nil, notFoundOr(err, "product not found")
	}
	if product.RestaurantID != restaurantID {
		return nil, nil, apperr.Newf(apperr.Validation, "product '%s' does not belong to this restaurant", product.Name)
	}
	if !product.IsAvailable {
		return nil, nil, apperr.Newf(apperr.Validation, "product '%s' is not available", product.Name)
	}

	options, modifiers, err := resolveOptions(&product, in.OptionIDs)
	if err != nil {
		return nil, nil, err
	}

	if product.Stock != nil {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock IS NOT NULL AND stock >= ?", product.ID, in.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", in.Quantity))
		if res.Error != nil {
			return nil, nil, apperr.Wrap(apperr.Store, "failed to reserve stock", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil, apperr.Newf(apperr.Validation, "insufficient stock for '%s'", product.Name)
		}
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
		UpdateColumn("total_orders", gorm.Expr("total_orders + ?", in.Quantity)).Error; err != nil {
		return nil, nil, apperr.Wrap(apperr.Store, "failed to update product stats", err)
	}

	item := models.OrderItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.ImageURL,
		Quantity:     in.Quantity,
		UnitPrice:    product.Price,
		TotalPrice:   product.Price.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2),
		Options:      options,
	}
	if instr := strings.TrimSpace(in.SpecialInstructions); instr != "" {
		item.SpecialInstructions = &instr
	}
	line := pricing.Line{UnitPrice: product.Price, OptionModifiers: modifiers, Quantity: in.Quantity}
	return &item, &line, nil
}

// resolveOptions maps selected option IDs onto the product's option groups and
// enforces per-group selection bounds.
func resolveOptions(product *models.Product, optionIDs []uint) ([]models.OrderItemOption, []decimal.Decimal, error) {
	byID := make(map[uint]*models.ProductOption)
	groupOf := make(map[uint]uint)
	for gi := range product.OptionGroups {
		group := &product.OptionGroups[gi]
		for oi := range group.Options {
			opt := &group.Options[oi]
			byID[opt.ID] = opt
			groupOf[opt.ID] = group.ID
		}
	}

	selectedPerGroup := make(map[uint]int)
	seen := make(map[uint]bool)
	var snapshots []models.OrderItemOption
	var modifiers []decimal.Decimal
	for _, id := range optionIDs {
		if seen[id] {
			return nil, nil, apperr.New(apperr.Validation, "duplicate option selection")
		}
		seen[id] = true
		opt, ok := byID[id]
		if !ok {
			return nil, nil, apperr.Newf(apperr.Validation, "option %d does not belong to product '%s'", id, product.Name)
		}
		if !opt.IsAvailable {
			return nil, nil, apperr.Newf(apperr.Validation, "option '%s' is not available", opt.Name)
		}
		selectedPerGroup[groupOf[id]]++
		snapshots = append(snapshots, models.OrderItemOption{
			OptionID:      opt.ID,
			OptionName:    opt.Name,
			PriceModifier: opt.PriceModifier,
		})
		modifiers = append(modifiers, opt.PriceModifier)
	}

	for _, group := range product.OptionGroups {
		n := selectedPerGroup[group.ID]
		if group.IsRequired || n > 0 {
			if n < group.MinSelection || n > group.MaxSelection {
				return nil, nil, apperr.Newf(apperr.Validation,
					"'%s' requires between %d and %d selections for '%s'",
					group.Name, group.MinSelection, group.MaxSelection, product.Name)
			}
		}
	}
	return snapshots, modifiers, nil
}

// redeemCoupon validates the coupon and claims one use with a guarded counter
// increment, so two concurrent orders cannot both redeem the last use.
func (s *Service) redeemCoupon(tx *gorm.DB, code string, userID, restaurantID uint, subtotal, deliveryFee decimal.Decimal) (*models.Coupon, decimal.Decimal, error) {
	var coupon models.Coupon
	if err := tx.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, apperr.New(apperr.Coupon, "invalid coupon code")
		}
		return nil, decimal.Zero, apperr.Wrap(apperr.Store, "failed to look up coupon", err)
	}

	var userUses int64
	if err := tx.Model(&models.Order{}).
		Where("user_id = ? AND coupon_id = ? AND status NOT IN ?", userID, coupon.ID,
			[]models.OrderStatus{models.StatusCancelled, models.StatusRejected}).
		Count(&userUses).Error; err != nil {
		return nil, decimal.Zero, apperr.Wrap(apperr.Store, "failed to count coupon uses", err)
	}

	if err := pricing.ValidateCoupon(&coupon, pricing.CouponContext{
		Now:          time.Now(),
		Subtotal:     subtotal,
		RestaurantID: restaurantID,
		UserUses:     int(userUses),
	}); err != nil {
		return nil, decimal.Zero, err
	}

	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND (max_total_uses IS NULL OR current_uses < max_total_uses)", coupon.ID, true).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if res.Error != nil {
		return nil, decimal.Zero, apperr.Wrap(apperr.Store, "failed to redeem coupon", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, decimal.Zero, apperr.New(apperr.Coupon, "coupon usage limit reached")
	}

	return &coupon, pricing.Discount(&coupon, subtotal, deliveryFee), nil
}

// nextOrderNumber generates a date-based, human-legible number that is unique
// across all orders, e.g. ORD-20250105-A1B2C3.
func nextOrderNumber(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		candidate := fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
		var count int64
		if err := tx.Model(&models.Order{}).Where("order_number = ?", candidate).Count(&count).Error; err != nil {
			return "", apperr.Wrap(apperr.Store, "failed to generate order number", err)
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", apperr.New(apperr.Store, "failed to generate a unique order number")
}

type TransitionInput struct {
	OrderID         uint
	Actor           string
	To              models.OrderStatus
	Reason          string // required when cancelling or rejecting
	RestaurantNotes string
}

// Transition moves an order along the lifecycle graph, stamping the milestone
// for the entered stage. Cancelling or rejecting releases reserved stock and
// reverses the coupon redemption in the same transaction.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, in.OrderID).Error; err != nil {
			return notFoundOr(err, "order not found")
		}
		if err := statemachine.CanTransition(order.Status, in.To, in.Actor); err != nil {
			return err
		}

		terminalRelease := in.To == models.StatusCancelled || in.To == models.StatusRejected
		reason := strings.TrimSpace(in.Reason)
		if terminalRelease && reason == "" {
			return apperr.New(apperr.Validation, "a reason is required")
		}

		now := time.Now()
		updates := map[string]any{"status": in.To}
		if col := statemachine.MilestoneColumn(in.To); col != "" {
			updates[col] = now
		}
		if terminalRelease {
			updates["cancellation_reason"] = reason
			if err := s.release(tx, &order); err != nil {
				return err
			}
		}
		if notes := strings.TrimSpace(in.RestaurantNotes); notes != "" {
			updates["restaurant_notes"] = notes
		}
		// Cash settles on hand-off
		if in.To == models.StatusDelivered && order.PaymentMethod == models.PaymentCash {
			updates["payment_status"] = models.PaymentCompleted
		}

		// Guarded on the status read above; a concurrent transition that wins
		// the race makes this a no-op and the whole transaction rolls back,
		// so release() can never run twice for one order.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return apperr.Wrap(apperr.Store, "failed to update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.State, "order was updated concurrently, please retry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("order_id", order.ID).Str("from", string(order.Status)).
		Str("to", string(in.To)).Str("actor", in.Actor).Msg("order transitioned")
	return s.Get(ctx, in.OrderID)
}

// Cancel is the user-initiated cancellation; only the order's owner may cancel
func (s *Service) Cancel(ctx context.Context, orderID, userID uint, reason string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if order.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "this order does not belong to you")
	}
	return s.Transition(ctx, TransitionInput{
		OrderID: orderID,
		Actor:   statemachine.ActorUser,
		To:      models.StatusCancelled,
		Reason:  reason,
	})
}

// release undoes the creation-time mutations: restores stock, reverses the
// coupon usage increment and rolls back stat counters.
func (s *Service) release(tx *gorm.DB, order *models.Order) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return apperr.Wrap(apperr.Store, "failed to load order items", err)
	}
	for _, item := range items {
		if err := tx.Model(&models.Product{}).
			Where("id = ? AND stock IS NOT NULL", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return apperr.Wrap(apperr.Store, "failed to restore stock", err)
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("total_orders", gorm.Expr("total_orders - ?", item.Quantity)).Error; err != nil {
			return apperr.Wrap(apperr.Store, "failed to update product stats", err)
		}
	}
	if err := tx.Model(&models.Restaurant{}).Where("id = ?", order.RestaurantID).
		UpdateColumn("total_orders", gorm.Expr("total_orders - 1")).Error; err != nil {
		return apperr.Wrap(apperr.Store, "failed to update restaurant stats", err)
	}
	if order.CouponID != nil {
		if err := tx.Model(&models.Coupon{}).
			Where("id = ? AND current_uses > 0", *order.CouponID).
			UpdateColumn("current_uses", gorm.Expr("current_uses - 1")).Error; err != nil {
			return apperr.Wrap(apperr.Store, "failed to reverse coupon use", err)
		}
	}
	return nil
}

// Get loads an order with its line snapshots
func (s *Service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items.Options").
		Preload("Restaurant").
		Preload("Address").
		First(&order, orderID).Error; err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	return &order, nil
}

// ListForUser returns the user's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID uint, status string) ([]models.Order, error) {
	var orders []models.Order
	query := s.db.WithContext(ctx).Preload("Items.Options").Preload("Restaurant").
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.Store, "failed to list orders", err)
	}
	return orders, nil
}

// PreviewDiscount runs the pure coupon validation against a hypothetical
// subtotal and returns the discount that order creation would apply. No
// counter is touched; only redemption inside Create mutates usage.
func (s *Service) PreviewDiscount(ctx context.Context, code string, userID, restaurantID uint, subtotal decimal.Decimal) (decimal.Decimal, error) {
	db := s.db.WithContext(ctx)

	var coupon models.Coupon
	if err := db.Where("code = ?", strings.TrimSpace(code)).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperr.New(apperr.Coupon, "invalid coupon code")
		}
		return decimal.Zero, apperr.Wrap(apperr.Store, "failed to look up coupon", err)
	}

	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return decimal.Zero, notFoundOr(err, "restaurant not found")
	}

	var userUses int64
	if err := db.Model(&models.Order{}).
		Where("user_id = ? AND coupon_id = ? AND status NOT IN ?", userID, coupon.ID,
			[]models.OrderStatus{models.StatusCancelled, models.StatusRejected}).
		Count(&userUses).Error; err != nil {
		return decimal.Zero, apperr.Wrap(apperr.Store, "failed to count coupon uses", err)
	}

	if err := pricing.ValidateCoupon(&coupon, pricing.CouponContext{
		Now:          time.Now(),
		Subtotal:     subtotal,
		RestaurantID: restaurantID,
		UserUses:     int(userUses),
	}); err != nil {
		return decimal.Zero, err
	}
	return pricing.Discount(&coupon, subtotal, restaurant.DeliveryFee), nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, message)
	}
	return apperr.Wrap(apperr.Store, "store query failed", err)
}
