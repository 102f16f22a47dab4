package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/service"
	"roombooking/internal/utils"
)

type RoomHandler struct {
	base
	Service *service.RoomService
}

func NewRoomHandler(svc *service.RoomService, log *logrus.Logger) *RoomHandler {
	return &RoomHandler{base: base{log: log}, Service: svc}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minCapacity, err := intParam(q.Get("min_capacity"), "min_capacity")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rooms, err := h.Service.ListRooms(r.Context(), entities.RoomFilter{
		Type:        q.Get("type"),
		MinCapacity: minCapacity,
		Search:      q.Get("q"),
		Status:      q.Get("status"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newList(rooms))
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.Service.GetRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	participants, err := intParam(q.Get("participants"), "participants")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rooms, err := h.Service.AvailableRooms(r.Context(), entities.AvailabilityQuery{Participants: participants, Type: q.Get("type")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newList(rooms))
}

func (h *RoomHandler) ListExtras(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, newList(utils.ExtraResources))
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Invalid(field, "must be an integer")
	}
	return n, nil
}
