package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
)

type MatchService interface {
	List(ctx context.Context, requesterID string, overrides rules.FilterOverrides, page, limit int) ([]model.Card, error)
	LikesReceived(ctx context.Context, requesterID string, page, limit int) ([]model.Card, error)
	LikesSent(ctx context.Context, requesterID string, page, limit int) ([]model.Card, error)
	Profile(ctx context.Context, userID string) (model.Profile, error)
}

type MatchesHandler struct {
	service MatchService
}

func NewMatchesHandler(service MatchService) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	cards, err := h.service.List(r.Context(), userID, parseOverrides(r), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "matches fetched", cards)
}

func (h *MatchesHandler) LikesReceived(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	cards, err := h.service.LikesReceived(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "likes received fetched", cards)
}

func (h *MatchesHandler) LikesSent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	cards, err := h.service.LikesSent(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "likes sent fetched", cards)
}

func (h *MatchesHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "user fetched", profile)
}
