package handlers

import (
	"context"
	"net/http"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	feedsvc "github.com/ivankudzin/sparkmatch/internal/services/feed"
)

type FeedBuilder interface {
	Build(ctx context.Context, req feedsvc.Request) ([]model.Card, error)
}

type FeedHandler struct {
	service FeedBuilder
}

func NewFeedHandler(service FeedBuilder) *FeedHandler {
	return &FeedHandler{service: service}
}

// Feed serves the saved-preference feed without per-request filters.
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	cards, err := h.service.Build(r.Context(), feedsvc.Request{
		RequesterID: userID,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "feed fetched", cards)
}

// PreferenceUsers serves the feed with query overrides and like flags.
func (h *FeedHandler) PreferenceUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	cards, err := h.service.Build(r.Context(), feedsvc.Request{
		RequesterID:   userID,
		Overrides:     parseOverrides(r),
		Page:          page,
		Limit:         limit,
		WithLikeFlags: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "users fetched", cards)
}
