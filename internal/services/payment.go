package services

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var (
	ErrUpstreamUnavailable = errors.New("upstream service is unavailable")
	ErrInvalidSignature    = errors.New("payment notification signature mismatch")
)

type TransactionItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type TransactionRequest struct {
	Reference   string
	GrossAmount int64
	Items       []TransactionItem
	Customer    Customer
}

type Transaction struct {
	Token       string
	RedirectURL string
}

type snapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// MidtransGateway opens Snap payments and checks the notifications Midtrans
// posts back.
type MidtransGateway struct {
	client    snapClient
	serverKey string
}

func NewMidtransGateway(serverKey string, env midtrans.EnvironmentType) *MidtransGateway {
	var client snap.Client
	client.New(serverKey, env)

	return &MidtransGateway{client: &client, serverKey: serverKey}
}

// MidtransEnvironment maps "production" to the live API and anything else to
// the sandbox.
func MidtransEnvironment(name string) midtrans.EnvironmentType {
	if strings.EqualFold(name, "production") {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

// CreateTransaction registers a payment for request.Reference and returns the
// token the client hands to the payment popup.
func (g *MidtransGateway) CreateTransaction(ctx context.Context, request TransactionRequest) (*Transaction, error) {
	// The SDK call takes no context; do not start one that is already abandoned.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	items := make([]midtrans.ItemDetails, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Qty:   int32(item.Quantity),
		})
	}

	res, merr := g.client.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  request.Reference,
			GrossAmt: request.GrossAmount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: request.Customer.Name,
			Email: request.Customer.Email,
			Phone: request.Customer.Phone,
		},
	})
	if merr != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, merr.Error())
	}
	if res == nil || res.Token == "" {
		return nil, fmt.Errorf("%w: gateway returned no token", ErrUpstreamUnavailable)
	}

	return &Transaction{Token: res.Token, RedirectURL: res.RedirectURL}, nil
}

// VerifySignature checks the notification's SHA-512 signature over
// order id, status code, gross amount and the server key. midtrans-go has no
// helper for this.
func (g *MidtransGateway) VerifySignature(n models.PaymentNotification) bool {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Outcome maps a gateway transaction status onto the checkout outcome.
func Outcome(n models.PaymentNotification) models.PaymentOutcome {
	switch n.TransactionStatus {
	case "capture":
		switch n.FraudStatus {
		case "", "accept":
			return models.PaymentSuccess
		case "deny":
			return models.PaymentFailure
		}
		return models.PaymentPending
	case "settlement":
		return models.PaymentSuccess
	case "deny", "expire", "failure":
		return models.PaymentFailure
	case "cancel":
		return models.PaymentCancelled
	}
	return models.PaymentPending
}
