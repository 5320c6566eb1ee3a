package rental

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	testCases := []struct {
		quantity, total, expected int
	}{
		{5, 12, 5},
		{-3, 12, 0},
		{20, 12, 12},
		{150, 500, HardCap},
		{7, 0, 0},
		{7, -4, 0},
		{math.MaxInt, math.MaxInt, HardCap},
		{math.MinInt, 10, 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Clamp(tc.quantity, tc.total), "Clamp(%d, %d)", tc.quantity, tc.total)
	}
}

func TestCounterStaysInBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for total := 0; total <= 130; total += 7 {
		counter := NewCounter(total)
		for i := 0; i < 500; i++ {
			switch rnd.Intn(4) {
			case 0:
				counter.Increment()
			case 1:
				counter.Decrement()
			case 2:
				counter.Add(rnd.Intn(400) - 200)
			case 3:
				counter.Add(math.MaxInt)
			}

			assert.GreaterOrEqual(t, counter.Rented(), 0)
			assert.LessOrEqual(t, counter.Rented(), min(total, HardCap))
			assert.GreaterOrEqual(t, counter.Exchanged(), 0)
		}
	}
}

func TestCounterReclampsWhenCartShrinks(t *testing.T) {
	counter := NewCounter(12)
	for i := 0; i < 5; i++ {
		counter.Increment()
	}
	assert.Equal(t, 5, counter.Rented())
	assert.Equal(t, 7, counter.Exchanged())

	counter.SetTotalUnits(3)
	assert.Equal(t, 3, counter.Rented())
	assert.Equal(t, 0, counter.Exchanged())
	assert.Equal(t, int64(3000), counter.Fee())

	counter.SetTotalUnits(20)
	assert.Equal(t, 3, counter.Rented(), "growing the cart must not raise the rented quantity")
	assert.Equal(t, 20, counter.Max())
}

func TestCounterMaxHonoursHardCap(t *testing.T) {
	counter := NewCounter(250)
	for i := 0; i < 300; i++ {
		counter.Increment()
	}
	assert.Equal(t, HardCap, counter.Rented())
	assert.Equal(t, 150, counter.Exchanged())
}

func TestQuote(t *testing.T) {
	items := []models.LineItem{
		{ProductID: "1", Unit: models.UnitGallon, Quantity: 3, Price: 25000},
		{ProductID: "2", Unit: "bungkus", Quantity: 2, Price: 20000},
	}

	quote := Quote(items, 5)

	assert.Equal(t, models.Quote{
		Subtotal:      115000,
		DeliveryFee:   DeliveryFee,
		GallonUnits:   3,
		RentedGallons: 3,
		Exchanged:     0,
		RentalFee:     3000,
		Total:         123000,
	}, quote)
}

func TestQuoteWithoutGallons(t *testing.T) {
	quote := Quote([]models.LineItem{{ProductID: "3", Unit: "bungkus", Quantity: 1, Price: 30000}}, 4)

	assert.Equal(t, 0, quote.RentedGallons)
	assert.Equal(t, int64(0), quote.RentalFee)
	assert.Equal(t, int64(35000), quote.Total)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		items []models.LineItem
		err   error
	}{
		{
			name:  "regular cart",
			items: []models.LineItem{{ProductID: "1", Quantity: 3, Price: 25000}, {ProductID: "2", Quantity: MaxLineQuantity, Price: 20000}},
		},
		{
			name:  "zero quantity",
			items: []models.LineItem{{ProductID: "1", Quantity: 0, Price: 25000}},
			err:   ErrQuantityOutOfRange,
		},
		{
			name:  "quantity above the line limit",
			items: []models.LineItem{{ProductID: "1", Quantity: math.MaxInt64 / 10000, Price: 25000}},
			err:   ErrQuantityOutOfRange,
		},
		{
			name:  "line amount wraps",
			items: []models.LineItem{{ProductID: "1", Quantity: 10, Price: math.MaxInt64 / 5}},
			err:   ErrAmountOverflow,
		},
		{
			name: "subtotal wraps",
			items: []models.LineItem{
				{ProductID: "1", Quantity: 1, Price: math.MaxInt64 / 2},
				{ProductID: "2", Quantity: 1, Price: math.MaxInt64 / 2},
			},
			err: ErrAmountOverflow,
		},
		{
			name:  "negative price",
			items: []models.LineItem{{ProductID: "1", Quantity: 1, Price: -1}},
			err:   ErrAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.items)
			if tt.err == nil {
				assert.NoError(t, err)
				assert.Positive(t, Quote(tt.items, 0).Total)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
