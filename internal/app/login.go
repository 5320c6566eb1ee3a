package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/services"
)

type sessionResponse struct {
	Token string      `json:"token"`
	ID    string      `json:"id"`
	Login string      `json:"login"`
	Role  models.Role `json:"role"`
}

func IsUnknownUserDataValid(data models.UnknownUser) bool {
	return data.Login != nil && data.Password != nil && len(*data.Login) > 0 && len(*data.Password) > 0
}

func Register(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.UnknownUser](w, r)

	authService := middlewares.GetServiceFromContext[models.AuthService](w, r, middlewares.AuthServiceKey)
	jwtService := middlewares.GetServiceFromContext[models.JWTService](w, r, middlewares.JwtServiceKey)
	if authService == nil || jwtService == nil {
		return
	}

	if ok := IsUnknownUserDataValid(data); !ok {
		http.Error(w, "Request has no login or password", http.StatusBadRequest)
		return
	}

	if err := (*authService).Register(r.Context(), data); err != nil {
		if errors.Is(err, services.ErrUserIsAlreadyRegistered) {
			http.Error(w, "User is already registered", http.StatusConflict)
			return
		}

		writeServiceError(w, r, err, "register user")
		return
	}

	authorize(w, r, *authService, *jwtService, *data.Login)
}

// Login returns a JWT both in the Authorization header and in the body.
func Login(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.UnknownUser](w, r)

	authService := middlewares.GetServiceFromContext[models.AuthService](w, r, middlewares.AuthServiceKey)
	jwtService := middlewares.GetServiceFromContext[models.JWTService](w, r, middlewares.JwtServiceKey)
	if authService == nil || jwtService == nil {
		return
	}

	if ok := IsUnknownUserDataValid(data); !ok {
		http.Error(w, "Request has no login or password", http.StatusBadRequest)
		return
	}

	if err := (*authService).Login(r.Context(), data); err != nil {
		if errors.Is(err, services.ErrUserIsNotExist) {
			http.Error(w, fmt.Sprintf("User with login %s does not exist", *data.Login), http.StatusUnauthorized)
			return
		}

		if errors.Is(err, services.ErrPasswordIsIncorrect) {
			http.Error(w, "Password is incorrect", http.StatusUnauthorized)
			return
		}

		writeServiceError(w, r, err, "log in")
		return
	}

	authorize(w, r, *authService, *jwtService, *data.Login)
}

func authorize(w http.ResponseWriter, r *http.Request, authService models.AuthService, jwtService models.JWTService, login string) {
	user, err := authService.GetUser(r.Context(), login)
	if err != nil {
		writeServiceError(w, r, err, "load user")
		return
	}

	token, err := jwtService.GenerateJWT(*user)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate JWT: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token))
	middlewares.EncodeJSONResponse(w, sessionResponse{
		Token: token,
		ID:    user.ID,
		Login: user.Login,
		Role:  user.Role,
	})
}
