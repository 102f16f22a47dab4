package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"roombooking/internal/auth"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/service"
)

type AdminHandler struct {
	base
	Rooms    *service.RoomService
	Bookings *service.BookingService
	Users    *service.UserService
}

func NewAdminHandler(rooms *service.RoomService, bookings *service.BookingService, users *service.UserService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{base: base{log: log}, Rooms: rooms, Bookings: bookings, Users: users}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Bookings.ListBookings(r.Context(), entities.BookingFilter{
		UserID:   q.Get("user_id"),
		RoomID:   q.Get("room_id"),
		Status:   q.Get("status"),
		Date:     q.Get("date"),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req entities.RoomRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.Rooms.CreateRoom(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, room)
}

func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var patch entities.RoomPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.Rooms.UpdateRoom(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, room)
}

func (h *AdminHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.Rooms.DeleteRoom(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UpdateRoomStatus(w http.ResponseWriter, r *http.Request) {
	var req entities.RoomStatusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.Rooms.UpdateRoomStatus(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, room)
}

// UploadRoomImage expects a multipart form with the file in the "image" field.
func (h *AdminHandler) UploadRoomImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageSize+maxBodyBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperrors.Invalid("image", "multipart field is required and must be at most 5 MiB"))
		return
	}
	defer file.Close()

	room, err := h.Rooms.UploadRoomImage(r.Context(), mux.Vars(r)["id"], file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, room)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newList(users))
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	var req entities.RoleRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.Users.UpdateUserRole(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// OccupancyReport serves ?month=2006-01 as JSON, or CSV with ?format=csv.
func (h *AdminHandler) OccupancyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := q.Get("month")
	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" {
		h.writeError(w, r, apperrors.Invalid("format", "must be json or csv"))
		return
	}
	report, err := h.Bookings.Occupancy(r.Context(), month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if format != "csv" {
		h.writeJSON(w, http.StatusOK, newList(report))
		return
	}
	var buf bytes.Buffer
	if err := service.WriteOccupancyCSV(&buf, report); err != nil {
		h.writeError(w, r, err)
		return
	}
	name := "ocupacao.csv"
	if month != "" {
		name = fmt.Sprintf("ocupacao-%s.csv", month)
	}
	writeAttachment(w, "text/csv; charset=utf-8", name, buf.Bytes())
}
