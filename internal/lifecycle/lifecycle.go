// Package lifecycle holds the order status state machine: the fixed forward
// sequence of statuses and the role allowed to take each step.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// Sequence is the forward order every order moves through.
var Sequence = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReadyForPickup,
	models.StatusOutForDelivery,
	models.StatusArrived,
	models.StatusCompleted,
}

// edgeRoles maps a source status to the role that may advance it.
var edgeRoles = map[models.OrderStatus]models.Role{
	models.StatusConfirmed:      models.RoleSupplier,
	models.StatusPreparing:      models.RoleSupplier,
	models.StatusReadyForPickup: models.RoleDriver,
	models.StatusOutForDelivery: models.RoleDriver,
	models.StatusArrived:        models.RoleCustomer,
}

// Transition describes a requested status change of one order.
type Transition struct {
	From       models.OrderStatus
	To         models.OrderStatus
	Actor      models.Actor
	CustomerID string
	DriverID   *string
}

// Ordinal returns the position of status in Sequence.
func Ordinal(status models.OrderStatus) (int, bool) {
	for i, s := range Sequence {
		if s == status {
			return i, true
		}
	}
	return -1, false
}

func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

// Next returns the immediate successor of status.
func Next(status models.OrderStatus) (models.OrderStatus, bool) {
	i, ok := Ordinal(status)
	if !ok || i == len(Sequence)-1 {
		return "", false
	}
	return Sequence[i+1], true
}

// NextFor lists the statuses role may move an order in status to.
func NextFor(status models.OrderStatus, role models.Role) []models.OrderStatus {
	next, ok := Next(status)
	if !ok || edgeRoles[status] != role {
		return []models.OrderStatus{}
	}
	return []models.OrderStatus{next}
}

// Validate checks t against the sequence and the capability table. Every
// rejection wraps ErrInvalidTransition.
func Validate(t Transition) error {
	if IsTerminal(t.From) {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, t.From)
	}

	next, ok := Next(t.From)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, t.From)
	}
	if t.To != next {
		return fmt.Errorf("%w: %s cannot move to %s", ErrInvalidTransition, t.From, t.To)
	}

	if required := edgeRoles[t.From]; t.Actor.Role != required {
		return fmt.Errorf("%w: %s -> %s requires role %s", ErrInvalidTransition, t.From, t.To, required)
	}

	switch t.From {
	case models.StatusReadyForPickup:
		if t.DriverID != nil {
			return fmt.Errorf("%w: order already has a driver", ErrInvalidTransition)
		}
	case models.StatusOutForDelivery:
		if t.DriverID == nil || *t.DriverID != t.Actor.ID {
			return fmt.Errorf("%w: only the assigned driver can mark arrival", ErrInvalidTransition)
		}
	case models.StatusArrived:
		if t.Actor.ID != t.CustomerID {
			return fmt.Errorf("%w: only the ordering customer can complete", ErrInvalidTransition)
		}
	}

	return nil
}
