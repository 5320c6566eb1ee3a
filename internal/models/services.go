package models

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

//go:generate mockgen -destination=mocks/mock_auth.go . AuthService
type AuthService interface {
	Register(ctx context.Context, user UnknownUser) error

	Login(ctx context.Context, user UnknownUser) error

	GetUser(ctx context.Context, login string) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)

	AssignRole(ctx context.Context, actor Actor, userID string, role Role) (*User, error)
}

//go:generate mockgen -destination=mocks/mock_jwt.go . JWTService
type JWTService interface {
	GenerateJWT(user User) (string, error)

	ValidateToken(token string) (*jwt.Token, error)

	GenerateRecoveryToken(userID, stamp string) (string, error)

	ValidateRecoveryToken(token string) (userID, stamp string, err error)
}

//go:generate mockgen -destination=mocks/mock_password.go . PasswordService
type PasswordService interface {
	RequestReset(ctx context.Context, email string) error

	UpdatePassword(ctx context.Context, token, password string) error
}

//go:generate mockgen -destination=mocks/mock_order.go . OrderService
type OrderService interface {
	GetOrder(ctx context.Context, actor Actor, orderID int64) (*Order, error)

	ListOrders(ctx context.Context, actor Actor) ([]Order, error)

	Transition(ctx context.Context, actor Actor, orderID int64, target OrderStatus) (*Order, error)

	Claim(ctx context.Context, actor Actor, orderID int64) (*Order, error)

	History(ctx context.Context, actor Actor, orderID int64) ([]StatusHistoryEntry, error)
}

//go:generate mockgen -destination=mocks/mock_checkout.go . CheckoutService
type CheckoutService interface {
	Checkout(ctx context.Context, actor Actor, request CheckoutRequest) (*CheckoutResult, error)

	HandlePaymentNotification(ctx context.Context, notification PaymentNotification) (PaymentOutcome, error)
}

//go:generate mockgen -destination=mocks/mock_catalog.go . CatalogService
type CatalogService interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

//go:generate mockgen -destination=mocks/mock_profile.go . ProfileService
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error)

	ListAddresses(ctx context.Context, userID string) ([]Address, error)

	CreateAddress(ctx context.Context, address Address) (*Address, error)

	DeleteAddress(ctx context.Context, userID string, addressID int64) error

	ListSavedCards(ctx context.Context, userID string) ([]SavedCard, error)

	SaveCard(ctx context.Context, card SavedCard) (*SavedCard, error)

	DeleteSavedCard(ctx context.Context, userID string, cardID int64) error
}

//go:generate mockgen -destination=mocks/mock_notification.go . NotificationService
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)

	MarkAllRead(ctx context.Context, userID string) error
}
