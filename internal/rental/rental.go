// Package rental prices checkout carts and keeps the number of rented gallons
// inside [0, min(gallons in cart, HardCap)].
package rental

import (
	"errors"
	"fmt"
	"math"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

const (
	HardCap     = 100
	FeePerUnit  = int64(1000)
	DeliveryFee = int64(5000)

	// MaxLineQuantity bounds the units of one product in a single order.
	MaxLineQuantity = 1000
)

var (
	ErrQuantityOutOfRange = errors.New("line quantity is out of range")
	ErrAmountOverflow     = errors.New("order amount is out of range")
)

// maxSubtotal leaves room for the fixed fees on top of the subtotal.
const maxSubtotal = math.MaxInt64 - DeliveryFee - HardCap*FeePerUnit

// Validate rejects lines that Quote cannot price without wrapping around.
func Validate(items []models.LineItem) error {
	var subtotal int64
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: %d units of %s", ErrQuantityOutOfRange, item.Quantity, item.ProductID)
		}
		if item.Price < 0 || item.Price > maxSubtotal/int64(item.Quantity) {
			return fmt.Errorf("%w: price of %s", ErrAmountOverflow, item.ProductID)
		}
		line := item.Price * int64(item.Quantity)
		if line > maxSubtotal-subtotal {
			return ErrAmountOverflow
		}
		subtotal += line
	}
	return nil
}

// Clamp bounds quantity by the rentable units in the cart and HardCap.
func Clamp(quantity, totalUnits int) int {
	upper := min(max(totalUnits, 0), HardCap)
	return max(0, min(quantity, upper))
}

// Counter is the rented-gallon counter of one checkout session. It is not
// safe for concurrent use.
type Counter struct {
	rented     int
	totalUnits int
}

func NewCounter(totalUnits int) *Counter {
	return &Counter{totalUnits: max(totalUnits, 0)}
}

func (c *Counter) Add(delta int) int {
	// saturate before adding so extreme deltas cannot wrap
	switch {
	case delta > HardCap:
		delta = HardCap
	case delta < -HardCap:
		delta = -HardCap
	}
	c.rented = Clamp(c.rented+delta, c.totalUnits)
	return c.rented
}

func (c *Counter) Increment() int { return c.Add(1) }

func (c *Counter) Decrement() int { return c.Add(-1) }

// SetTotalUnits records a cart change and re-clamps the rented quantity.
func (c *Counter) SetTotalUnits(totalUnits int) int {
	c.totalUnits = max(totalUnits, 0)
	c.rented = Clamp(c.rented, c.totalUnits)
	return c.rented
}

func (c *Counter) Rented() int { return c.rented }

func (c *Counter) TotalUnits() int { return c.totalUnits }

func (c *Counter) Max() int { return Clamp(HardCap, c.totalUnits) }

// Exchanged is the number of the customer's own gallons swapped at delivery.
func (c *Counter) Exchanged() int { return c.totalUnits - c.rented }

func (c *Counter) Fee() int64 { return int64(c.rented) * FeePerUnit }

// GallonUnits counts the rentable units among items.
func GallonUnits(items []models.LineItem) int {
	var units int
	for _, item := range items {
		if item.Unit == models.UnitGallon {
			units += item.Quantity
		}
	}
	return units
}

// Quote prices items with the requested rented gallons clamped to the cart.
// Items must pass Validate.
func Quote(items []models.LineItem, requestedRent int) models.Quote {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * int64(item.Quantity)
	}

	counter := NewCounter(GallonUnits(items))
	counter.Add(requestedRent)

	return models.Quote{
		Subtotal:      subtotal,
		DeliveryFee:   DeliveryFee,
		GallonUnits:   counter.TotalUnits(),
		RentedGallons: counter.Rented(),
		Exchanged:     counter.Exchanged(),
		RentalFee:     counter.Fee(),
		Total:         subtotal + DeliveryFee + counter.Fee(),
	}
}
