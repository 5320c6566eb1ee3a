package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP statuses. Zero means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrSavedCardNotFound),
		errors.Is(err, services.ErrUserIsNotExist):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrClaimConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidSignature),
		errors.Is(err, services.ErrRoleChangeForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrTokenIsInvalid),
		errors.Is(err, services.ErrTokenIsExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidCheckout),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidCard),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrPasswordIsTooShort):
		return http.StatusBadRequest
	}
	return 0
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if status := statusFor(err); status != 0 {
		http.Error(w, err.Error(), status)
		return
	}

	logger.Log.Error("Request failed",
		zap.String("action", action),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, fmt.Sprintf("Failed to %s: %s", action, err.Error()), http.StatusInternalServerError)
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || value <= 0 {
		http.Error(w, fmt.Sprintf("Invalid %s", name), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}
