package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/lifecycle"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/metrics"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition is the lifecycle error so callers can match either.
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrClaimConflict     = errors.New("order was claimed by another driver")
)

// activeStatuses are the statuses suppliers keep an eye on.
var activeStatuses = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReadyForPickup,
	models.StatusOutForDelivery,
	models.StatusArrived,
}

type OrderService struct {
	storage   orderStorage
	publisher updatePublisher
	notifier  notifier
	metrics   *metrics.OrderMetrics
}

type orderStorage interface {
	FindOrder(ctx context.Context, orderID int64) (*database.OrderDB, error)

	FindOrdersByUser(ctx context.Context, userID string) ([]database.OrderDB, error)

	FindOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]database.OrderDB, error)

	FindDriverOrders(ctx context.Context, driverID string) ([]database.OrderDB, error)

	AdvanceOrderStatus(ctx context.Context, change database.StatusChange) (time.Time, error)

	ClaimOrder(ctx context.Context, orderID int64, driverID string) (time.Time, error)

	FindStatusHistory(ctx context.Context, orderID int64) ([]database.StatusHistoryDB, error)
}

type updatePublisher interface {
	Publish(ctx context.Context, u models.OrderUpdate) error
}

type notifier interface {
	Notify(n models.Notification)
}

func NewOrderService(storage orderStorage, publisher updatePublisher, notifier notifier, m *metrics.OrderMetrics) *OrderService {
	return &OrderService{
		storage:   storage,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
	}
}

// GetOrder returns the order if actor is allowed to see it. Orders of other
// customers are reported as not found.
func (o *OrderService) GetOrder(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	order, err := o.findVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	result := toOrder(*order, actor)
	return &result, nil
}

// ListOrders returns what the actor's role works with: a customer's own
// orders, the orders a driver can claim or is delivering, and every active
// order for suppliers.
func (o *OrderService) ListOrders(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	var (
		orders []database.OrderDB
		err    error
	)

	switch actor.Role {
	case models.RoleCustomer:
		orders, err = o.storage.FindOrdersByUser(ctx, actor.ID)
	case models.RoleDriver:
		orders, err = o.storage.FindDriverOrders(ctx, actor.ID)
	case models.RoleSupplier:
		orders, err = o.storage.FindOrdersByStatus(ctx, activeStatuses...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, actor.Role)
	}
	if err != nil {
		return nil, unavailable(err)
	}

	result := make([]models.Order, len(orders))
	for i, order := range orders {
		result[i] = toOrder(order, actor)
	}

	return result, nil
}

// Transition moves the order one step forward on behalf of actor. The write
// only lands if the order still has the status it was validated against.
func (o *OrderService) Transition(ctx context.Context, actor models.Actor, orderID int64, target models.OrderStatus) (*models.Order, error) {
	order, err := o.findVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.OrderStatus == models.StatusReadyForPickup && target == models.StatusOutForDelivery {
		return o.claim(ctx, actor, order)
	}

	from := order.Status.OrderStatus
	err = lifecycle.Validate(lifecycle.Transition{
		From:       from,
		To:         target,
		Actor:      actor,
		CustomerID: order.UserID,
		DriverID:   order.DriverID,
	})
	if err != nil {
		return nil, err
	}

	change := database.StatusChange{
		OrderID: order.ID,
		From:    from,
		To:      target,
		ActorID: actor.ID,
	}
	if from == models.StatusOutForDelivery {
		change.DriverID = &actor.ID
	}

	updatedAt, err := o.storage.AdvanceOrderStatus(ctx, change)
	if err != nil {
		if errors.Is(err, database.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: order %d is no longer %s", ErrInvalidTransition, order.ID, from)
		}
		return nil, unavailable(err)
	}

	order.Status = database.OrderStatusDB{OrderStatus: target}
	order.UpdatedAt = updatedAt

	result := toOrder(*order, actor)
	o.announce(ctx, &result, from)

	return &result, nil
}

// Claim assigns the calling driver to a ready order. Of several concurrent
// claims exactly one succeeds; the others get ErrClaimConflict.
func (o *OrderService) Claim(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	order, err := o.storage.FindOrder(ctx, orderID)
	if err != nil {
		return nil, unavailable(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	return o.claim(ctx, actor, order)
}

func (o *OrderService) claim(ctx context.Context, actor models.Actor, order *database.OrderDB) (*models.Order, error) {
	// A driver that lost the race sees the order as taken, not as missing.
	if actor.Role == models.RoleDriver && order.DriverID != nil && *order.DriverID != actor.ID {
		o.countClaimConflict()
		return nil, ErrClaimConflict
	}
	if !canView(order, actor) {
		return nil, ErrOrderNotFound
	}

	err := lifecycle.Validate(lifecycle.Transition{
		From:       order.Status.OrderStatus,
		To:         models.StatusOutForDelivery,
		Actor:      actor,
		CustomerID: order.UserID,
		DriverID:   order.DriverID,
	})
	if err != nil {
		return nil, err
	}

	updatedAt, err := o.storage.ClaimOrder(ctx, order.ID, actor.ID)
	if err != nil {
		if errors.Is(err, database.ErrClaimConflict) {
			o.countClaimConflict()
			return nil, ErrClaimConflict
		}
		return nil, unavailable(err)
	}

	driverID := actor.ID
	order.DriverID = &driverID
	order.Status = database.OrderStatusDB{OrderStatus: models.StatusOutForDelivery}
	order.UpdatedAt = updatedAt

	result := toOrder(*order, actor)
	o.announce(ctx, &result, models.StatusReadyForPickup)

	return &result, nil
}

func (o *OrderService) History(ctx context.Context, actor models.Actor, orderID int64) ([]models.StatusHistoryEntry, error) {
	if _, err := o.findVisible(ctx, actor, orderID); err != nil {
		return nil, err
	}

	rows, err := o.storage.FindStatusHistory(ctx, orderID)
	if err != nil {
		return nil, unavailable(err)
	}

	result := make([]models.StatusHistoryEntry, len(rows))
	for i, row := range rows {
		entry := models.StatusHistoryEntry{
			To:        models.OrderStatus(row.To),
			ActorID:   row.ActorID,
			ChangedAt: utils.RFC3339Date{Time: row.ChangedAt},
		}
		if row.From != "" {
			from := models.OrderStatus(row.From)
			entry.From = &from
		}
		result[i] = entry
	}

	return result, nil
}

// announce fans an accepted transition out to live observers and the
// customer's notification feed.
func (o *OrderService) announce(ctx context.Context, order *models.Order, from models.OrderStatus) {
	to := order.Status

	if o.metrics != nil {
		o.metrics.Transitions.WithLabelValues(string(from), string(to)).Inc()
	}

	logger.Log.Info("order status changed",
		zap.Int64("orderID", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	update := models.OrderUpdate{
		OrderID:    order.ID,
		Status:     &to,
		PrevStatus: &from,
		DriverID:   order.DriverID,
		UpdatedAt:  order.UpdatedAt.Time,
	}
	if err := o.publisher.Publish(ctx, update); err != nil {
		logger.Log.Error("failed to publish order update", zap.Int64("orderID", order.ID), zap.Error(err))
	}

	o.notifier.Notify(orderNotification(order, to))
}

func (o *OrderService) countClaimConflict() {
	if o.metrics != nil {
		o.metrics.ClaimConflicts.Inc()
	}
}

func (o *OrderService) findVisible(ctx context.Context, actor models.Actor, orderID int64) (*database.OrderDB, error) {
	order, err := o.storage.FindOrder(ctx, orderID)
	if err != nil {
		return nil, unavailable(err)
	}

	if order == nil || !canView(order, actor) {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func canView(order *database.OrderDB, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleSupplier:
		return true
	case models.RoleCustomer:
		return order.UserID == actor.ID
	case models.RoleDriver:
		if order.DriverID != nil {
			return *order.DriverID == actor.ID
		}
		return order.Status.OrderStatus == models.StatusReadyForPickup
	}
	return false
}

// nextStatuses narrows lifecycle.NextFor down to the steps this particular
// actor may take on this order.
func nextStatuses(order database.OrderDB, actor models.Actor) []models.OrderStatus {
	result := []models.OrderStatus{}
	for _, next := range lifecycle.NextFor(order.Status.OrderStatus, actor.Role) {
		err := lifecycle.Validate(lifecycle.Transition{
			From:       order.Status.OrderStatus,
			To:         next,
			Actor:      actor,
			CustomerID: order.UserID,
			DriverID:   order.DriverID,
		})
		if err == nil {
			result = append(result, next)
		}
	}
	return result
}

func toOrder(order database.OrderDB, actor models.Actor) models.Order {
	items := make([]models.LineItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return models.Order{
		ID:              order.ID,
		UserID:          order.UserID,
		DriverID:        order.DriverID,
		Status:          order.Status.OrderStatus,
		TotalAmount:     order.TotalAmount,
		RentedGallons:   order.RentedGallons,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   models.PaymentMethod(order.PaymentMethod),
		Items:           items,
		NextStatuses:    nextStatuses(order, actor),
		CreatedAt:       utils.RFC3339Date{Time: order.CreatedAt},
		UpdatedAt:       utils.RFC3339Date{Time: order.UpdatedAt},
	}
}
