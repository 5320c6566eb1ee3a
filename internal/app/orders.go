package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

// GetOrders lists the orders visible to the current user.
func GetOrders(w http.ResponseWriter, r *http.Request) {
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	orders, err := (*orderService).ListOrders(r.Context(), user.Actor())
	if err != nil {
		writeServiceError(w, r, err, "get orders")
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middlewares.EncodeJSONResponse(w, orders)
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	orderID, ok := int64Param(w, r, "orderID")
	if !ok {
		return
	}

	order, err := (*orderService).GetOrder(r.Context(), user.Actor(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "get order")
		return
	}

	middlewares.EncodeJSONResponse(w, order)
}

func GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	orderID, ok := int64Param(w, r, "orderID")
	if !ok {
		return
	}

	history, err := (*orderService).History(r.Context(), user.Actor(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "get order history")
		return
	}

	middlewares.EncodeJSONResponse(w, history)
}

// TransitionOrder moves an order to the requested status. Rejected moves
// answer 422 and leave the order untouched.
func TransitionOrder(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.TransitionRequest](w, r)

	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	orderID, ok := int64Param(w, r, "orderID")
	if !ok {
		return
	}

	if data.Status == nil || len(*data.Status) == 0 {
		http.Error(w, "Request has no status", http.StatusBadRequest)
		return
	}

	order, err := (*orderService).Transition(r.Context(), user.Actor(), orderID, *data.Status)
	if err != nil {
		writeServiceError(w, r, err, "change order status")
		return
	}

	middlewares.EncodeJSONResponse(w, order)
}

// ClaimOrder assigns a ready order to the calling driver. Losing a concurrent
// claim answers 409.
func ClaimOrder(w http.ResponseWriter, r *http.Request) {
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if orderService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	orderID, ok := int64Param(w, r, "orderID")
	if !ok {
		return
	}

	order, err := (*orderService).Claim(r.Context(), user.Actor(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "claim order")
		return
	}

	middlewares.EncodeJSONResponse(w, order)
}
