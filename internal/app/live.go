package router

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/lifecycle"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/realtime"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients authenticate with the access_token parameter.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamOrder sends the current order and then every update to it. Only
// users who may view the order can subscribe. A driver watching an unclaimed
// order is cut off once another driver claims it.
func (router *Router) StreamOrder(w http.ResponseWriter, r *http.Request) {
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

	var revoked func(models.OrderUpdate) bool
	if user.Role == models.RoleDriver {
		driverID := user.ID
		revoked = func(u models.OrderUpdate) bool {
			return u.DriverID != nil && *u.DriverID != driverID
		}
	}

	router.stream(w, r, order, revoked, realtime.OrderTopic(orderID))
}

// StreamStatus sends updates for orders entering or leaving any of the
// statuses listed in the status query parameter.
func (router *Router) StreamStatus(w http.ResponseWriter, r *http.Request) {
	var topics []string
	for _, value := range r.URL.Query()["status"] {
		for _, raw := range strings.Split(value, ",") {
			status := models.OrderStatus(strings.TrimSpace(raw))
			if _, ok := lifecycle.Ordinal(status); !ok {
				http.Error(w, fmt.Sprintf("Unknown status %q", raw), http.StatusBadRequest)
				return
			}
			topics = append(topics, realtime.StatusTopic(status))
		}
	}

	if len(topics) == 0 {
		http.Error(w, "At least one status is required", http.StatusBadRequest)
		return
	}

	router.stream(w, r, nil, nil, topics...)
}

// stream relays updates until the client leaves. It closes the connection
// when revoked reports that the subscriber may no longer see an update.
func (router *Router) stream(w http.ResponseWriter, r *http.Request, snapshot any, revoked func(models.OrderUpdate) bool, topics ...string) {
	if router.hub == nil {
		http.Error(w, "Live updates are not available", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := router.hub.Subscribe(topics...)
	defer sub.Close()

	if snapshot != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case update, ok := <-sub.Updates():
			if !ok {
				// Dropped for falling behind.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
					time.Now().Add(writeWait))
				return
			}
			if revoked != nil && revoked(update) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "order was claimed by another driver"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames until the client goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
