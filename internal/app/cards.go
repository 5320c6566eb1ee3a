package router

import (
	"net/http"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
)

func GetSavedCards(w http.ResponseWriter, r *http.Request) {
	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	cards, err := (*profileService).ListSavedCards(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "get saved cards")
		return
	}

	middlewares.EncodeJSONResponse(w, cards)
}

// SaveCard stores the card token the payment popup returned after a
// successful card registration.
func SaveCard(w http.ResponseWriter, r *http.Request) {
	data := middlewares.GetParsedJSONData[models.SavedCard](w, r)

	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	data.UserID = user.ID
	card, err := (*profileService).SaveCard(r.Context(), data)
	if err != nil {
		writeServiceError(w, r, err, "save card")
		return
	}

	middlewares.EncodeJSONResponseWithStatus(w, http.StatusCreated, card)
}

func DeleteSavedCard(w http.ResponseWriter, r *http.Request) {
	profileService := middlewares.GetServiceFromContext[models.ProfileService](w, r, middlewares.ProfileServiceKey)
	if profileService == nil {
		return
	}

	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return
	}

	cardID, ok := int64Param(w, r, "cardID")
	if !ok {
		return
	}

	if err := (*profileService).DeleteSavedCard(r.Context(), user.ID, cardID); err != nil {
		writeServiceError(w, r, err, "delete saved card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
