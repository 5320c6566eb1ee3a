package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

// RequestPasswordReset always answers 202 so it never reveals whether a login exists.
func RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.PasswordResetRequest](w, r)

	passwordService := middlewares.GetServiceFromContext[models.PasswordService](w, r, middlewares.PasswordServiceKey)
	if passwordService == nil {
		return
	}

	if data.Email == nil || len(*data.Email) == 0 {
		http.Error(w, "Request has no email", http.StatusBadRequest)
		return
	}

	if err := (*passwordService).RequestReset(r.Context(), *data.Email); err != nil {
		writeServiceError(w, r, err, "request password reset")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func UpdatePassword(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.PasswordUpdate](w, r)

	passwordService := middlewares.GetServiceFromContext[models.PasswordService](w, r, middlewares.PasswordServiceKey)
	if passwordService == nil {
		return
	}

	if data.Token == nil || data.Password == nil || len(*data.Token) == 0 {
		http.Error(w, "Request has no token or password", http.StatusBadRequest)
		return
	}

	if err := (*passwordService).UpdatePassword(r.Context(), *data.Token, *data.Password); err != nil {
		writeServiceError(w, r, err, "update password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
