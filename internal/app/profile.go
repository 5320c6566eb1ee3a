package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

func GetProfile(w http.ResponseWriter, r *http.Request) {
	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	profile, err := (*profileService).GetProfile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "get profile")
		return
	}

	middlewares.EncodeJSONResponse(w, profile)
}

func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.ProfileUpdate](w, r)

	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	profile, err := (*profileService).UpdateProfile(r.Context(), user.ID, data)
	if err != nil {
		writeServiceError(w, r, err, "update profile")
		return
	}

	middlewares.EncodeJSONResponse(w, profile)
}

func GetAddresses(w http.ResponseWriter, r *http.Request) {
	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	addresses, err := (*profileService).ListAddresses(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "get addresses")
		return
	}

	middlewares.EncodeJSONResponse(w, addresses)
}

func CreateAddress(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.Address](w, r)

	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	data.UserID = user.ID
	address, err := (*profileService).CreateAddress(r.Context(), data)
	if err != nil {
		writeServiceError(w, r, err, "create address")
		return
	}

	middlewares.EncodeJSONResponseWithStatus(w, http.StatusCreated, address)
}

func DeleteAddress(w http.ResponseWriter, r *http.Request) {
	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	addressID, ok := int64Param(w, r, "addressID")
	if !ok {
		return
	}

	if err := (*profileService).DeleteAddress(r.Context(), user.ID, addressID); err != nil {
		writeServiceError(w, r, err, "delete address")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func GetNotifications(w http.ResponseWriter, r *http.Request) {
	notificationService := middlewares.GetServiceFromContext[models.NotificationService](w, r, middlewares.NotificationServiceKey)
	if notificationService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	notifications, err := (*notificationService).ListNotifications(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "get notifications")
		return
	}

	middlewares.EncodeJSONResponse(w, notifications)
}

func MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	notificationService := middlewares.GetServiceFromContext[models.NotificationService](w, r, middlewares.NotificationServiceKey)
	if notificationService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	if err := (*notificationService).MarkAllRead(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err, "mark notifications as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
