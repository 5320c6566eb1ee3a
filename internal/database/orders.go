package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateOrder = errors.New("order for this payment reference already exists")
	// ErrStatusConflict means the conditional update matched no row: the
	// order left the expected status before the write landed.
	ErrStatusConflict = errors.New("order status changed concurrently")
	ErrClaimConflict  = errors.New("order was already claimed")
)

const orderColumns = `
			o.id,
			o.user_id::text,
			o.driver_id::text,
			o.status,
			o.total_amount,
			o.rented_gallons,
			o.shipping_address,
			o.payment_method,
			o.created_at,
			o.updated_at`

const (
	InsertOrderQuery = `
		INSERT INTO
			orders (user_id, status, total_amount, rented_gallons, shipping_address, payment_method, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	InsertOrderItemQuery = `
		INSERT INTO
			order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	InsertStatusHistoryQuery = `
		INSERT INTO
			order_status_history (order_id, from_status, to_status, actor_id)
		VALUES ($1, $2, $3, $4)
	`
	SelectOrderQuery = `
		SELECT` + orderColumns + `
		FROM
			orders o
		WHERE
			o.id = $1
	`
	SelectOrdersByUserQuery = `
		SELECT` + orderColumns + `
		FROM
			orders o
		WHERE
			o.user_id = $1
		ORDER BY
			o.created_at DESC
	`
	SelectOrdersByStatusQuery = `
		SELECT` + orderColumns + `
		FROM
			orders o
		WHERE
			o.status = ANY($1)
		ORDER BY
			o.created_at
	`
	SelectDriverOrdersQuery = `
		SELECT` + orderColumns + `
		FROM
			orders o
		WHERE
			o.status = 'ready_for_pickup'
			OR (o.driver_id = $1 AND o.status IN ('out_for_delivery', 'arrived'))
		ORDER BY
			o.created_at
	`
	SelectOrderItemsQuery = `
		SELECT
			oi.order_id,
			oi.product_id,
			coalesce(p.name, ''),
			coalesce(p.unit, ''),
			oi.quantity,
			oi.price
		FROM
			order_items oi
			LEFT JOIN products p ON p.id = oi.product_id
		WHERE
			oi.order_id = ANY($1)
		ORDER BY
			oi.id
	`
	// AdvanceOrderStatusQuery only matches while the order still has the
	// status the caller validated against.
	AdvanceOrderStatusQuery = `
		UPDATE
			orders
		SET
			status = $3,
			updated_at = now()
		WHERE
			id = $1
			AND status = $2
			AND ($4::uuid IS NULL OR driver_id = $4::uuid)
		RETURNING updated_at
	`
	ClaimOrderQuery = `
		UPDATE
			orders
		SET
			status = 'out_for_delivery',
			driver_id = $2,
			updated_at = now()
		WHERE
			id = $1
			AND status = 'ready_for_pickup'
			AND driver_id IS NULL
		RETURNING updated_at
	`
	SelectStatusHistoryQuery = `
		SELECT
			coalesce(from_status, ''),
			to_status,
			coalesce(actor_id::text, ''),
			changed_at
		FROM
			order_status_history
		WHERE
			order_id = $1
		ORDER BY
			id
	`
)

type OrderDB struct {
	ID               int64
	UserID           string
	DriverID         *string
	Status           OrderStatusDB
	TotalAmount      int64
	RentedGallons    int
	ShippingAddress  string
	PaymentMethod    string
	PaymentReference *string
	Items            []OrderItemDB
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItemDB struct {
	OrderID   int64
	ProductID string
	Name      string
	Unit      string
	Quantity  int
	Price     int64
}

// StatusChange is a conditional status write. DriverID, when set, must match
// the order's assigned driver.
type StatusChange struct {
	OrderID  int64
	From     models.OrderStatus
	To       models.OrderStatus
	ActorID  string
	DriverID *string
}

type StatusHistoryDB struct {
	From      string
	To        string
	ActorID   string
	ChangedAt time.Time
}

type OrderStatusDB struct {
	models.OrderStatus
}

func (s *OrderStatusDB) Scan(value interface{}) error {
	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("order status must be a string, got %T", value)
	}

	*s = OrderStatusDB{models.OrderStatus(strVal)}
	return nil
}

func (s OrderStatusDB) Value() (driver.Value, error) {
	return string(s.OrderStatus), nil
}

// CreateOrder stores the order, its line items and the initial history row in
// one transaction and fills in the generated id and timestamps.
func (d *Database) CreateOrder(ctx context.Context, order *OrderDB) error {
	err := d.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, InsertOrderQuery,
			order.UserID,
			order.Status,
			order.TotalAmount,
			order.RentedGallons,
			order.ShippingAddress,
			order.PaymentMethod,
			order.PaymentReference,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(InsertOrderItemQuery, order.ID, item.ProductID, item.Quantity, item.Price)
		}
		batch.Queue(InsertStatusHistoryQuery, order.ID, nil, order.Status, order.UserID)

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// FindOrder returns nil without error when the order does not exist.
func (d *Database) FindOrder(ctx context.Context, orderID int64) (*OrderDB, error) {
	order, err := scanOrder(d.db.QueryRow(ctx, SelectOrderQuery, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	orders := []OrderDB{*order}
	if err := d.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (d *Database) FindOrdersByUser(ctx context.Context, userID string) ([]OrderDB, error) {
	return d.findOrders(ctx, SelectOrdersByUserQuery, userID)
}

func (d *Database) FindOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]OrderDB, error) {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	return d.findOrders(ctx, SelectOrdersByStatusQuery, values)
}

// FindDriverOrders returns claimable orders plus the driver's active deliveries.
func (d *Database) FindDriverOrders(ctx context.Context, driverID string) ([]OrderDB, error) {
	return d.findOrders(ctx, SelectDriverOrdersQuery, driverID)
}

// AdvanceOrderStatus applies change only if the order still has change.From.
func (d *Database) AdvanceOrderStatus(ctx context.Context, change StatusChange) (time.Time, error) {
	var updatedAt time.Time

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, AdvanceOrderStatusQuery,
			change.OrderID, change.From, change.To, change.DriverID,
		).Scan(&updatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStatusConflict
			}
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if _, err := tx.Exec(ctx, InsertStatusHistoryQuery, change.OrderID, change.From, change.To, change.ActorID); err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})

	return updatedAt, err
}

// ClaimOrder assigns driverID and moves the order out for delivery in a single
// conditional update; only the first of concurrent claims matches.
func (d *Database) ClaimOrder(ctx context.Context, orderID int64, driverID string) (time.Time, error) {
	var updatedAt time.Time

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ClaimOrderQuery, orderID, driverID).Scan(&updatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrClaimConflict
			}
			return fmt.Errorf("failed to claim order: %w", err)
		}

		_, err := tx.Exec(ctx, InsertStatusHistoryQuery,
			orderID, models.StatusReadyForPickup, models.StatusOutForDelivery, driverID)
		if err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})

	return updatedAt, err
}

func (d *Database) FindStatusHistory(ctx context.Context, orderID int64) ([]StatusHistoryDB, error) {
	rows, err := d.db.Query(ctx, SelectStatusHistoryQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var result []StatusHistoryDB
	for rows.Next() {
		var item StatusHistoryDB
		if err := rows.Scan(&item.From, &item.To, &item.ActorID, &item.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status history: %w", err)
	}

	return result, nil
}

func (d *Database) findOrders(ctx context.Context, query string, args ...interface{}) ([]OrderDB, error) {
	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []OrderDB
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		result = append(result, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if err := d.attachItems(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (d *Database) attachItems(ctx context.Context, orders []OrderDB) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		index[order.ID] = i
	}

	rows, err := d.db.Query(ctx, SelectOrderItemsQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItemDB
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Name, &item.Unit, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item row: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	return rows.Err()
}

func scanOrder(row pgx.Row) (*OrderDB, error) {
	order := &OrderDB{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.DriverID,
		&order.Status,
		&order.TotalAmount,
		&order.RentedGallons,
		&order.ShippingAddress,
		&order.PaymentMethod,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
