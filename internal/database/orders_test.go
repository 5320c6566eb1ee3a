package database

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squash(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func TestConditionalWriteQueries(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		predicates []string
	}{
		{
			name:  "claim",
			query: ClaimOrderQuery,
			predicates: []string{
				"WHERE id = $1",
				"AND status = 'ready_for_pickup'",
				"AND driver_id IS NULL",
				"RETURNING updated_at",
			},
		},
		{
			name:  "advance",
			query: AdvanceOrderStatusQuery,
			predicates: []string{
				"WHERE id = $1",
				"AND status = $2",
				"AND ($4::uuid IS NULL OR driver_id = $4::uuid)",
				"RETURNING updated_at",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := squash(tt.query)
			for _, predicate := range tt.predicates {
				assert.Contains(t, query, predicate)
			}
		})
	}
}

// openTestDatabase connects to TEST_DATABASE_URI and applies the migrations.
func openTestDatabase(t *testing.T) *Database {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	db, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

func createTestUser(t *testing.T, db *Database, role models.Role) string {
	t.Helper()

	user := &UserDB{User: models.User{Login: uuid.NewString() + "@example.com", Hash: "hash", Role: role}}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user.ID
}

func TestConcurrentClaimsAgainstPostgres(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()

	customerID := createTestUser(t, db, models.RoleCustomer)
	supplierID := createTestUser(t, db, models.RoleSupplier)

	order := &OrderDB{
		UserID:          customerID,
		Status:          OrderStatusDB{OrderStatus: models.StatusConfirmed},
		TotalAmount:     30000,
		ShippingAddress: "Jl. Kenanga 1",
		PaymentMethod:   string(models.PaymentCash),
		Items:           []OrderItemDB{{ProductID: "1", Quantity: 1, Price: 25000}},
	}
	require.NoError(t, db.CreateOrder(ctx, order))

	for _, step := range [][2]models.OrderStatus{
		{models.StatusConfirmed, models.StatusPreparing},
		{models.StatusPreparing, models.StatusReadyForPickup},
	} {
		_, err := db.AdvanceOrderStatus(ctx, StatusChange{OrderID: order.ID, From: step[0], To: step[1], ActorID: supplierID})
		require.NoError(t, err)
	}

	_, err := db.AdvanceOrderStatus(ctx, StatusChange{
		OrderID: order.ID,
		From:    models.StatusConfirmed,
		To:      models.StatusPreparing,
		ActorID: supplierID,
	})
	assert.ErrorIs(t, err, ErrStatusConflict)

	drivers := make([]string, 8)
	for i := range drivers {
		drivers[i] = createTestUser(t, db, models.RoleDriver)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for _, driverID := range drivers {
		wg.Add(1)
		go func(driverID string) {
			defer wg.Done()

			_, err := db.ClaimOrder(ctx, order.ID, driverID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, driverID)
			case errors.Is(err, ErrClaimConflict):
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}(driverID)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, len(drivers)-1, conflicts)

	stored, err := db.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, winners[0], *stored.DriverID)
	assert.Equal(t, models.StatusOutForDelivery, stored.Status.OrderStatus)

	var loser string
	for _, driverID := range drivers {
		if driverID != winners[0] {
			loser = driverID
			break
		}
	}
	_, err = db.AdvanceOrderStatus(ctx, StatusChange{
		OrderID:  order.ID,
		From:     models.StatusOutForDelivery,
		To:       models.StatusArrived,
		ActorID:  loser,
		DriverID: &loser,
	})
	assert.ErrorIs(t, err, ErrStatusConflict)

	history, err := db.FindStatusHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusOutForDelivery), history[len(history)-1].To)
}
