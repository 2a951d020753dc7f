package handlers

import (
	"context"
	"net/http"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
	swipesvc "github.com/ivankudzin/sparkmatch/internal/services/swipes"
	"github.com/ivankudzin/sparkmatch/internal/transport/http/dto"
)

type SwipeRecorder interface {
	RecordSwipe(ctx context.Context, swiperID, targetID, rawAction string) (swipesvc.Result, error)
}

type SwipeHandler struct {
	service SwipeRecorder
}

func NewSwipeHandler(service SwipeRecorder) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.SwipeActionLike, "liked")
}

func (h *SwipeHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.SwipeActionDislike, "disliked")
}

func (h *SwipeHandler) SuperLike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, enums.SwipeActionSuperLike, "super liked")
}

func (h *SwipeHandler) handle(w http.ResponseWriter, r *http.Request, action enums.SwipeAction, verb string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.RecordSwipe(r.Context(), userID, req.TargetID, string(action))
	if err != nil {
		writeError(w, err)
		return
	}

	message := "user " + verb
	if result.IsMatch {
		message = "it's a match"
	}
	resp := dto.SwipeResponse{SwipeID: result.SwipeID, IsMatch: result.IsMatch}
	if result.MatchID != "" {
		matchID := result.MatchID
		resp.MatchID = &matchID
	}
	writeOK(w, message, resp)
}
