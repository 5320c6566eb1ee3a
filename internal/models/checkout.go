package models

const UnitGallon = "galon"

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Unit        string `json:"unit"`
}

// Rentable reports whether the product ships in a returnable gallon.
func (p Product) Rentable() bool {
	return p.Unit == UnitGallon
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CartItem    `json:"items"`
	RentedGallons   int           `json:"rented_gallons"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	ShippingAddress string        `json:"shipping_address"`
}

type Quote struct {
	Subtotal      int64 `json:"subtotal"`
	DeliveryFee   int64 `json:"delivery_fee"`
	GallonUnits   int   `json:"gallon_units"`
	RentedGallons int   `json:"rented_gallons"`
	Exchanged     int   `json:"exchanged_gallons"`
	RentalFee     int64 `json:"rental_fee"`
	Total         int64 `json:"total"`
}

// CheckoutSession holds a card checkout until the payment outcome is known.
type CheckoutSession struct {
	Reference       string        `json:"reference"`
	UserID          string        `json:"user_id"`
	Items           []LineItem    `json:"items"`
	Quote           Quote         `json:"quote"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

type CheckoutResult struct {
	Quote       Quote  `json:"quote"`
	Order       *Order `json:"order,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type PaymentOutcome string

const (
	PaymentSuccess   PaymentOutcome = "success"
	PaymentPending   PaymentOutcome = "pending"
	PaymentFailure   PaymentOutcome = "failure"
	PaymentCancelled PaymentOutcome = "cancelled"
)

// PaymentNotification is the asynchronous callback body of the payment gateway.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	SavedTokenID      string `json:"saved_token_id,omitempty"`
	MaskedCard        string `json:"masked_card,omitempty"`
	CardType          string `json:"card_type,omitempty"`
	Bank              string `json:"bank,omitempty"`
}
