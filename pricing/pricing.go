// Package pricing holds the pure money math for order creation: subtotal and
// tax computation, coupon validation and discount calculation. Nothing here
// touches the store, so coupon checks can back a discount preview without
// redeeming anything.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

// Line is one cart line priced from catalog snapshots
type Line struct {
	UnitPrice       decimal.Decimal
	OptionModifiers []decimal.Decimal
	Quantity        int
}

// Subtotal is the sum over lines of (unit price + option modifiers) x quantity
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		unit := l.UnitPrice
		for _, m := range l.OptionModifiers {
			unit = unit.Add(m)
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return subtotal.Round(2)
}

// Tax applies a flat rate to the subtotal, rounded to 2 fraction digits
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// CouponContext carries everything coupon validation needs besides the coupon
type CouponContext struct {
	Now          time.Time
	Subtotal     decimal.Decimal
	RestaurantID uint
	// Prior successful redemptions by the acting user
	UserUses int
}

// ValidateCoupon checks whether a coupon applies, without side effects. The
// global usage cap check here is advisory; the authoritative check is the
// guarded counter increment inside the order-creation transaction.
func ValidateCoupon(c *models.Coupon, ctx CouponContext) error {
	if !c.IsActive {
		return apperr.New(apperr.Coupon, "coupon is not active")
	}
	if ctx.Now.Before(c.ValidFrom) || ctx.Now.After(c.ValidUntil) {
		return apperr.New(apperr.Coupon, "coupon is outside its validity period")
	}
	if c.RestaurantID != nil && *c.RestaurantID != ctx.RestaurantID {
		return apperr.New(apperr.Coupon, "coupon is not valid for this restaurant")
	}
	if c.MinimumOrderAmount.Valid && ctx.Subtotal.LessThan(c.MinimumOrderAmount.Decimal) {
		return apperr.Newf(apperr.Coupon, "order subtotal is below the coupon minimum of %s", c.MinimumOrderAmount.Decimal.StringFixed(2))
	}
	if ctx.UserUses >= c.MaxUsesPerUser {
		return apperr.New(apperr.Coupon, "coupon usage limit reached for this user")
	}
	if c.MaxTotalUses != nil && c.CurrentUses >= *c.MaxTotalUses {
		return apperr.New(apperr.Coupon, "coupon usage limit reached")
	}
	return nil
}

// Discount computes the deduction for a valid coupon, capped so it never
// exceeds subtotal + delivery fee
func Discount(c *models.Coupon, subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if c.MaxDiscountAmount.Valid && discount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			discount = c.MaxDiscountAmount.Decimal
		}
	case models.DiscountFixed:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}
	if limit := subtotal.Add(deliveryFee); discount.GreaterThan(limit) {
		discount = limit
	}
	return discount.Round(2)
}

// Total is subtotal + deliveryFee + tax - discount, clamped to zero
func Total(subtotal, deliveryFee, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(deliveryFee).Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}
