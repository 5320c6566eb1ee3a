package models

import "github.com/Project-mardianto/algoplus-app/internal/utils"

type Profile struct {
	UserID        string `json:"id"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

type ProfileUpdate struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	AvatarURL     *string `json:"avatar_url"`
	VehicleNumber *string `json:"vehicle_number"`
}

type Address struct {
	ID        int64  `json:"id"`
	UserID    string `json:"-"`
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

type NotificationType string

const (
	NotificationOrder    NotificationType = "order"
	NotificationDelivery NotificationType = "delivery"
	NotificationPromo    NotificationType = "promo"
	NotificationSystem   NotificationType = "system"
)

type Notification struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"-"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	CreatedAt utils.RFC3339Date `json:"time"`
}

// SavedCard is a card the payment gateway tokenized for one-click payments.
// Only the masked number leaves the server; the token stays server side.
type SavedCard struct {
	ID           int64             `json:"id"`
	UserID       string            `json:"-"`
	CardType     string            `json:"card_type"`
	Bank         string            `json:"bank,omitempty"`
	MaskedNumber string            `json:"masked_number"`
	Token        string            `json:"token,omitempty"`
	CreatedAt    utils.RFC3339Date `json:"created_at"`
}
