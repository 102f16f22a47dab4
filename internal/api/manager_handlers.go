package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"roombooking/internal/auth"
	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/service"
)

type ManagerHandler struct {
	base
	Service *service.BookingService
}

func NewManagerHandler(svc *service.BookingService, log *logrus.Logger) *ManagerHandler {
	return &ManagerHandler{base: base{log: log}, Service: svc}
}

func (h *ManagerHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPending(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *ManagerHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListApproved(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *ManagerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *ManagerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

type decisionFunc func(ctx context.Context, actor entities.Actor, id string, req entities.DecisionRequest) (*db.Booking, error)

// decide accepts an empty body; the justification is optional.
func (h *ManagerHandler) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc) {
	actor, _ := auth.ActorFrom(r.Context())
	var req entities.DecisionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := fn(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}
