package router

import (
	"context"
	"net/http"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/metrics"
	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

type Config struct {
	// Endpoint is the address the server listens on.
	Endpoint string
	// AllowedOrigins feeds CORS. Empty allows any origin.
	AllowedOrigins []string
	// TrustProxy takes the client IP from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy bool
	// ResetRate limits password reset requests per client IP.
	ResetRate  rate.Limit
	ResetBurst int
}

type Router struct {
	config       Config
	services     middlewares.Services
	hub          *realtime.Hub
	resetLimiter *middlewares.RateLimiter
	server       *http.Server
}

func New(config Config, services middlewares.Services, hub *realtime.Hub) *Router {
	if config.ResetRate == 0 {
		config.ResetRate = rate.Every(time.Minute)
	}
	if config.ResetBurst == 0 {
		config.ResetBurst = 3
	}

	return &Router{
		config:       config,
		services:     services,
		hub:          hub,
		resetLimiter: middlewares.NewRateLimiter(config.ResetRate, config.ResetBurst),
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()

	origins := router.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	if router.config.TrustProxy {
		r.Use(middleware.RealIP)
	}

	r.Use(
		cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
		}).Handler,
		middlewares.ServiceInjectorMiddleware(router.services),
		logger.RequestLogger,
		middlewares.AuthMiddleware().WithExcludedPaths(
			"/api/user/register",
			"/api/user/login",
			"/api/user/password/",
			"/api/products",
			"/api/payments/notification",
			"/metrics",
		).Middleware,
	)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.With(middlewares.JSONMiddleware[models.UnknownUser]).Post("/register", Register)
		r.With(middlewares.JSONMiddleware[models.UnknownUser]).Post("/login", Login)

		r.With(
			router.resetLimiter.Limit,
			middlewares.JSONMiddleware[models.PasswordResetRequest],
		).Post("/password/reset", RequestPasswordReset)
		r.With(middlewares.JSONMiddleware[models.PasswordUpdate]).Post("/password/update", UpdatePassword)
	})

	r.With(
		middlewares.RequireRole(models.RoleSupplier),
		middlewares.JSONMiddleware[models.RoleUpdate],
	).Patch("/api/users/{userID}/role", AssignRole)

	r.Get("/api/products", GetProducts)

	r.With(middlewares.JSONMiddleware[models.PaymentNotification]).Post("/api/payments/notification", HandlePaymentNotification)

	r.With(
		middlewares.RequireRole(models.RoleCustomer),
		middlewares.JSONMiddleware[models.CheckoutRequest],
	).Post("/api/checkout", Checkout)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", GetOrders)
		r.With(middlewares.RequireRole(models.RoleDriver, models.RoleSupplier)).Get("/live", router.StreamStatus)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", GetOrder)
			r.Get("/history", GetOrderHistory)
			r.Get("/live", router.StreamOrder)
			r.With(middlewares.JSONMiddleware[models.TransitionRequest]).Patch("/status", TransitionOrder)
			r.With(middlewares.RequireRole(models.RoleDriver)).Post("/claim", ClaimOrder)
		})
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Get("/", GetProfile)
		r.With(middlewares.JSONMiddleware[models.ProfileUpdate]).Patch("/", UpdateProfile)

		r.Get("/addresses", GetAddresses)
		r.With(middlewares.JSONMiddleware[models.Address]).Post("/addresses", CreateAddress)
		r.Delete("/addresses/{addressID}", DeleteAddress)

		r.Get("/cards", GetSavedCards)
		r.With(middlewares.JSONMiddleware[models.SavedCard]).Post("/cards", SaveCard)
		r.Delete("/cards/{cardID}", DeleteSavedCard)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", GetNotifications)
		r.Post("/read", MarkNotificationsRead)
	})

	return r
}

// Run blocks until the server stops. http.ErrServerClosed is returned after
// Shutdown.
func (router *Router) Run() error {
	router.server = &http.Server{
		Addr:              router.config.Endpoint,
		Handler:           router.get(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	logger.Log.Sugar().Infof("Listening on %s", router.config.Endpoint)

	return router.server.ListenAndServe()
}

func (router *Router) Shutdown(ctx context.Context) error {
	if router.server == nil {
		return nil
	}
	return router.server.Shutdown(ctx)
}
