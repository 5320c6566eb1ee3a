package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/metrics"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/rental"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCheckout = errors.New("invalid checkout")

type CheckoutService struct {
	storage    checkoutStorage
	sessions   checkoutSessions
	gateway    paymentGateway
	publisher  updatePublisher
	dispatcher dispatcher
	metrics    *metrics.OrderMetrics
}

type checkoutStorage interface {
	FindProductsByID(ctx context.Context, ids []string) (map[string]models.Product, error)

	FindAddresses(ctx context.Context, userID string) ([]models.Address, error)

	FindProfile(ctx context.Context, userID string) (*database.ProfileDB, error)

	FindUserByID(ctx context.Context, id string) (*database.UserDB, error)

	CreateOrder(ctx context.Context, order *database.OrderDB) error

	CreateSavedCard(ctx context.Context, card *models.SavedCard) error
}

type checkoutSessions interface {
	Save(ctx context.Context, session models.CheckoutSession) error

	Take(ctx context.Context, reference string) (*models.CheckoutSession, error)

	Drop(ctx context.Context, reference string) error
}

type paymentGateway interface {
	CreateTransaction(ctx context.Context, request TransactionRequest) (*Transaction, error)

	VerifySignature(n models.PaymentNotification) bool
}

type dispatcher interface {
	Notify(n models.Notification)

	SendEmail(email Email)
}

func NewCheckoutService(
	storage checkoutStorage,
	sessions checkoutSessions,
	gateway paymentGateway,
	publisher updatePublisher,
	dispatcher dispatcher,
	m *metrics.OrderMetrics,
) *CheckoutService {
	return &CheckoutService{
		storage:    storage,
		sessions:   sessions,
		gateway:    gateway,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// Checkout prices the cart and either places a cash order right away or
// opens a card payment. A card order only exists once the gateway reports
// the payment as successful.
func (cs *CheckoutService) Checkout(ctx context.Context, actor models.Actor, request models.CheckoutRequest) (*models.CheckoutResult, error) {
	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers place orders", ErrInvalidCheckout)
	}
	if !request.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidCheckout, request.PaymentMethod)
	}

	lines, err := cs.resolveLines(ctx, request.Items)
	if err != nil {
		return nil, err
	}

	address, err := cs.shippingAddress(ctx, actor.ID, request.ShippingAddress)
	if err != nil {
		return nil, err
	}

	session := models.CheckoutSession{
		UserID:          actor.ID,
		Items:           lines,
		Quote:           rental.Quote(lines, request.RentedGallons),
		ShippingAddress: address,
		PaymentMethod:   request.PaymentMethod,
	}

	if cs.metrics != nil {
		cs.metrics.Checkouts.WithLabelValues(string(request.PaymentMethod)).Inc()
	}

	if request.PaymentMethod == models.PaymentCash {
		order, err := cs.placeOrder(ctx, session, nil)
		if err != nil {
			return nil, err
		}
		return &models.CheckoutResult{Quote: session.Quote, Order: order}, nil
	}

	return cs.openPayment(ctx, session)
}

func (cs *CheckoutService) openPayment(ctx context.Context, session models.CheckoutSession) (*models.CheckoutResult, error) {
	session.Reference = uuid.NewString()

	if err := cs.sessions.Save(ctx, session); err != nil {
		return nil, unavailable(err)
	}

	transaction, err := cs.gateway.CreateTransaction(ctx, TransactionRequest{
		Reference:   session.Reference,
		GrossAmount: session.Quote.Total,
		Items:       transactionItems(session),
		Customer:    cs.customer(ctx, session.UserID),
	})
	if err != nil {
		if dropErr := cs.sessions.Drop(ctx, session.Reference); dropErr != nil {
			logger.Log.Error("failed to drop checkout session", zap.String("reference", session.Reference), zap.Error(dropErr))
		}
		return nil, unavailable(err)
	}

	logger.Log.Info("payment opened", zap.String("reference", session.Reference), zap.Int64("total", session.Quote.Total))

	return &models.CheckoutResult{
		Quote:       session.Quote,
		Reference:   session.Reference,
		Token:       transaction.Token,
		RedirectURL: transaction.RedirectURL,
	}, nil
}

// HandlePaymentNotification settles a card checkout. Repeated notifications
// for a settled payment find no session and change nothing.
func (cs *CheckoutService) HandlePaymentNotification(ctx context.Context, n models.PaymentNotification) (models.PaymentOutcome, error) {
	if !cs.gateway.VerifySignature(n) {
		return "", ErrInvalidSignature
	}

	outcome := Outcome(n)
	if cs.metrics != nil {
		cs.metrics.Payments.WithLabelValues(string(outcome)).Inc()
	}

	logger.Log.Info("payment notification",
		zap.String("reference", n.OrderID),
		zap.String("transactionStatus", n.TransactionStatus),
		zap.String("outcome", string(outcome)),
	)

	switch outcome {
	case models.PaymentSuccess:
		session, err := cs.sessions.Take(ctx, n.OrderID)
		if err != nil {
			return "", unavailable(err)
		}
		if session == nil {
			logger.Log.Info("no pending checkout for payment", zap.String("reference", n.OrderID))
			return outcome, nil
		}

		reference := session.Reference
		if _, err := cs.placeOrder(ctx, *session, &reference); err != nil {
			if errors.Is(err, database.ErrDuplicateOrder) {
				return outcome, nil
			}
			// Put the session back so the gateway's retry can settle it.
			if saveErr := cs.sessions.Save(ctx, *session); saveErr != nil {
				logger.Log.Error("failed to restore checkout session", zap.String("reference", reference), zap.Error(saveErr))
			}
			return "", err
		}
		cs.rememberCard(ctx, session.UserID, n)
	case models.PaymentFailure, models.PaymentCancelled:
		if err := cs.sessions.Drop(ctx, n.OrderID); err != nil {
			return "", unavailable(err)
		}
	}

	return outcome, nil
}

func (cs *CheckoutService) placeOrder(ctx context.Context, session models.CheckoutSession, reference *string) (*models.Order, error) {
	record := &database.OrderDB{
		UserID:           session.UserID,
		Status:           database.OrderStatusDB{OrderStatus: models.StatusConfirmed},
		TotalAmount:      session.Quote.Total,
		RentedGallons:    session.Quote.RentedGallons,
		ShippingAddress:  session.ShippingAddress,
		PaymentMethod:    string(session.PaymentMethod),
		PaymentReference: reference,
	}
	for _, line := range session.Items {
		record.Items = append(record.Items, database.OrderItemDB{
			ProductID: line.ProductID,
			Name:      line.Name,
			Unit:      line.Unit,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	if err := cs.storage.CreateOrder(ctx, record); err != nil {
		if errors.Is(err, database.ErrDuplicateOrder) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	order := toOrder(*record, models.Actor{ID: session.UserID, Role: models.RoleCustomer})

	logger.Log.Info("order placed",
		zap.Int64("orderID", order.ID),
		zap.String("paymentMethod", string(order.PaymentMethod)),
		zap.Int64("total", order.TotalAmount),
	)

	status := order.Status
	update := models.OrderUpdate{OrderID: order.ID, Status: &status, UpdatedAt: order.UpdatedAt.Time}
	if err := cs.publisher.Publish(ctx, update); err != nil {
		logger.Log.Error("failed to publish new order", zap.Int64("orderID", order.ID), zap.Error(err))
	}

	cs.dispatcher.Notify(orderNotification(&order, order.Status))
	cs.sendConfirmation(ctx, &order)

	return &order, nil
}

// rememberCard keeps the card a successful payment tokenized so the user can
// pick it next time.
func (cs *CheckoutService) rememberCard(ctx context.Context, userID string, n models.PaymentNotification) {
	if n.SavedTokenID == "" {
		return
	}

	card := models.SavedCard{
		UserID:       userID,
		CardType:     n.CardType,
		Bank:         n.Bank,
		MaskedNumber: n.MaskedCard,
		Token:        n.SavedTokenID,
	}
	if err := validateCard(&card); err != nil {
		logger.Log.Warn("payment card not saved", zap.String("reference", n.OrderID), zap.Error(err))
		return
	}

	if err := cs.storage.CreateSavedCard(ctx, &card); err != nil {
		logger.Log.Error("failed to save payment card", zap.String("reference", n.OrderID), zap.Error(err))
	}
}

func (cs *CheckoutService) sendConfirmation(ctx context.Context, order *models.Order) {
	user, err := cs.storage.FindUserByID(ctx, order.UserID)
	if err != nil || user == nil {
		logger.Log.Warn("no recipient for order confirmation", zap.Int64("orderID", order.ID), zap.Error(err))
		return
	}

	cs.dispatcher.SendEmail(Email{
		To:      user.Login,
		Subject: fmt.Sprintf("Order #%d confirmed", order.ID),
		Text: fmt.Sprintf("Thank you for your order #%d. Total: Rp %d, paid by %s. Delivery to: %s.",
			order.ID, order.TotalAmount, order.PaymentMethod, order.ShippingAddress),
	})
}

// resolveLines captures current product names, units and prices. Repeated
// products are merged into one line.
func (cs *CheckoutService) resolveLines(ctx context.Context, items []models.CartItem) ([]models.LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidCheckout)
	}

	quantities := make(map[string]int, len(items))
	var ids []string
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity of %s must be positive", ErrInvalidCheckout, item.ProductID)
		}
		merged, ok := quantities[item.ProductID]
		if !ok {
			ids = append(ids, item.ProductID)
		}
		if item.Quantity > rental.MaxLineQuantity-merged {
			return nil, fmt.Errorf("%w: at most %d units of %s per order", ErrInvalidCheckout, rental.MaxLineQuantity, item.ProductID)
		}
		quantities[item.ProductID] = merged + item.Quantity
	}

	products, err := cs.storage.FindProductsByID(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}

	lines := make([]models.LineItem, 0, len(ids))
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %s", ErrInvalidCheckout, id)
		}
		lines = append(lines, models.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Unit:      product.Unit,
			Quantity:  quantities[id],
			Price:     product.Price,
		})
	}

	if err := rental.Validate(lines); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckout, err)
	}

	return lines, nil
}

// shippingAddress falls back to the default saved address, then to the
// profile address.
func (cs *CheckoutService) shippingAddress(ctx context.Context, userID, requested string) (string, error) {
	if address := strings.TrimSpace(requested); address != "" {
		return address, nil
	}

	addresses, err := cs.storage.FindAddresses(ctx, userID)
	if err != nil {
		return "", unavailable(err)
	}
	for _, a := range addresses {
		if a.IsDefault && a.Address != "" {
			return a.Address, nil
		}
	}

	profile, err := cs.storage.FindProfile(ctx, userID)
	if err != nil {
		return "", unavailable(err)
	}
	if profile != nil && strings.TrimSpace(profile.Address) != "" {
		return profile.Address, nil
	}

	return "", fmt.Errorf("%w: shipping address is required", ErrInvalidCheckout)
}

// unavailable reports a storage, session or gateway failure as retryable.
func unavailable(err error) error {
	if errors.Is(err, ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func (cs *CheckoutService) customer(ctx context.Context, userID string) Customer {
	var c Customer

	if user, err := cs.storage.FindUserByID(ctx, userID); err == nil && user != nil {
		c.Email = user.Login
	}
	if profile, err := cs.storage.FindProfile(ctx, userID); err == nil && profile != nil {
		c.Name = profile.FullName
		c.Phone = profile.Phone
	}

	return c
}

// transactionItems itemizes the quote so the items add up to the total, as
// the gateway requires.
func transactionItems(session models.CheckoutSession) []TransactionItem {
	items := make([]TransactionItem, 0, len(session.Items)+2)
	for _, line := range session.Items {
		items = append(items, TransactionItem{
			ID:       line.ProductID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}

	if session.Quote.DeliveryFee > 0 {
		items = append(items, TransactionItem{ID: "delivery", Name: "Delivery fee", Price: session.Quote.DeliveryFee, Quantity: 1})
	}
	if session.Quote.RentedGallons > 0 {
		items = append(items, TransactionItem{
			ID:       "gallon-rent",
			Name:     "Gallon rental",
			Price:    rental.FeePerUnit,
			Quantity: session.Quote.RentedGallons,
		})
	}

	return items
}
