package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

// Checkout answers 201 with the created order for cash, and 200 with the
// payment token for card.
func Checkout(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.CheckoutRequest](w, r)

	checkoutService := middlewares.GetServiceFromContext[models.CheckoutService](w, r, middlewares.CheckoutServiceKey)
	if checkoutService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	result, err := (*checkoutService).Checkout(r.Context(), user.Actor(), data)
	if err != nil {
		writeServiceError(w, r, err, "check out")
		return
	}

	status := http.StatusOK
	if result.Order != nil {
		status = http.StatusCreated
	}

	middlewares.EncodeJSONResponseWithStatus(w, status, result)
}

// HandlePaymentNotification acknowledges gateway callbacks. The gateway
// retries anything that is not 200.
func HandlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.PaymentNotification](w, r)

	checkoutService := middlewares.GetServiceFromContext[models.CheckoutService](w, r, middlewares.CheckoutServiceKey)
	if checkoutService == nil {
		return
	}

	if len(data.OrderID) == 0 {
		http.Error(w, "Notification has no order_id", http.StatusBadRequest)
		return
	}

	outcome, err := (*checkoutService).HandlePaymentNotification(r.Context(), data)
	if err != nil {
		writeServiceError(w, r, err, "handle payment notification")
		return
	}

	middlewares.EncodeJSONResponse(w, map[string]models.PaymentOutcome{"outcome": outcome})
}

func GetProducts(w http.ResponseWriter, r *http.Request) {
	catalogService := middlewares.GetServiceFromContext[models.CatalogService](w, r, middlewares.CatalogServiceKey)
	if catalogService == nil {
		return
	}

	products, err := (*catalogService).ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get products")
		return
	}

	middlewares.EncodeJSONResponse(w, products)
}
