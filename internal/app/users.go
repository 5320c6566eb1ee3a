package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/go-chi/chi/v5"
)

type userResponse struct {
	ID    string      `json:"id"`
	Login string      `json:"login"`
	Role  models.Role `json:"role"`
}

// AssignRole appoints drivers and suppliers. Registration only creates
// customers.
func AssignRole(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.RoleUpdate](w, r)

	authService := middlewares.GetServiceFromContext[models.AuthService](w, r, middlewares.AuthServiceKey)
	if authService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	if data.Role == nil {
		http.Error(w, "Request has no role", http.StatusBadRequest)
		return
	}

	updated, err := (*authService).AssignRole(r.Context(), user.Actor(), chi.URLParam(r, "userID"), *data.Role)
	if err != nil {
		writeServiceError(w, r, err, "assign role")
		return
	}

	middlewares.EncodeJSONResponse(w, userResponse{ID: updated.ID, Login: updated.Login, Role: updated.Role})
}
