package middlewares

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

type key int

const (
	AuthServiceKey key = iota
	JwtServiceKey
	PasswordServiceKey
	OrderServiceKey
	CheckoutServiceKey
	CatalogServiceKey
	ProfileServiceKey
	NotificationServiceKey
)

// Services groups everything handlers pull from the request context.
type Services struct {
	Auth         models.AuthService
	JWT          models.JWTService
	Password     models.PasswordService
	Order        models.OrderService
	Checkout     models.CheckoutService
	Catalog      models.CatalogService
	Profile      models.ProfileService
	Notification models.NotificationService
}

func ServiceInjectorMiddleware(services Services) func(http.Handler) http.Handler {
	values := map[key]interface{}{
		AuthServiceKey:         services.Auth,
		JwtServiceKey:          services.JWT,
		PasswordServiceKey:     services.Password,
		OrderServiceKey:        services.Order,
		CheckoutServiceKey:     services.Checkout,
		CatalogServiceKey:      services.Catalog,
		ProfileServiceKey:      services.Profile,
		NotificationServiceKey: services.Notification,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for k, v := range values {
				ctx = context.WithValue(ctx, k, v)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetServiceFromContext writes a 500 and returns nil when the service is
// missing.
func GetServiceFromContext[Service interface{}](w http.ResponseWriter, r *http.Request, serviceKey key) *Service {
	foundService, ok := r.Context().Value(serviceKey).(Service)

	if !ok {
		http.Error(w, fmt.Sprintf("Service wasn't found in context by key %v", serviceKey), http.StatusInternalServerError)
		return nil
	}

	return &foundService
}
