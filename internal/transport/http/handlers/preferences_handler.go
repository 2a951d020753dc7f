package handlers

import (
	"context"
	"net/http"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	prefsvc "github.com/ivankudzin/sparkmatch/internal/services/preferences"
	"github.com/ivankudzin/sparkmatch/internal/transport/http/dto"
)

type PreferenceService interface {
	Get(ctx context.Context, userID string) (model.Preference, error)
	Save(ctx context.Context, userID string, upd prefsvc.Update) (model.Preference, error)
}

type PreferencesHandler struct {
	service PreferenceService
}

func NewPreferencesHandler(service PreferenceService) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	pref, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "preferences fetched", pref)
}

func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.PreferenceRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	pref, err := h.service.Save(r.Context(), userID, prefsvc.Update{
		ProfileType: req.ProfileType,
		Genders:     req.Genders,
		MinAge:      req.MinAge,
		MaxAge:      req.MaxAge,
		MaxDistance: req.MaxDistance,
		Interests:   req.Interests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "preferences saved", pref)
}
