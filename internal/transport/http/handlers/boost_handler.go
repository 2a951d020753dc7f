package handlers

import (
	"context"
	"net/http"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	boostsvc "github.com/ivankudzin/sparkmatch/internal/services/boost"
	"github.com/ivankudzin/sparkmatch/internal/transport/http/dto"
)

type BoostService interface {
	Status(ctx context.Context, userID string) (boostsvc.Status, error)
	Packages() []model.BoostPackage
	Purchase(ctx context.Context, userID, packageCode, transactionID string, durationMinutes int) (boostsvc.PurchaseResult, error)
	Activate(ctx context.Context, userID string, durationMinutes int) (boostsvc.Status, error)
	Deactivate(ctx context.Context, userID string) (boostsvc.Status, error)
}

type BoostHandler struct {
	service BoostService
}

func NewBoostHandler(service BoostService) *BoostHandler {
	return &BoostHandler{service: service}
}

func (h *BoostHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "boost status fetched", status)
}

func (h *BoostHandler) Packages(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	writeOK(w, "boost packages fetched", h.service.Packages())
}

func (h *BoostHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.BoostPurchaseRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Purchase(r.Context(), userID, req.PackageID, req.TransactionID, req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	message := "boost purchased and activated"
	if result.AlreadyProcessed {
		message = "transaction already processed"
	}
	writeOK(w, message, result)
}

func (h *BoostHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.BoostActivateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.service.Activate(r.Context(), userID, req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "boost activated", status)
}

func (h *BoostHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := h.service.Deactivate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "boost deactivated", status)
}
