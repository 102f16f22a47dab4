package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"roombooking/internal/auth"
	"roombooking/internal/entities"
	"roombooking/internal/service"
)

type BookingHandler struct {
	base
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{base: base{log: log}, Service: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	var req entities.BookingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.Service.CreateBooking(r.Context(), actor, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	list, err := h.Service.ListMyBookings(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *BookingHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	stats, err := h.Service.MyStats(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	b, err := h.Service.CancelBooking(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	b, err := h.Service.CheckIn(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) BookingCalendar(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	id := mux.Vars(r)["id"]
	cal, err := h.Service.ExportICS(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", fmt.Sprintf("reserva-%s.ics", id), []byte(cal))
}

func (h *BookingHandler) ExportMyCalendar(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	cal, err := h.Service.ExportMyICS(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", "minhas-reservas.ics", []byte(cal))
}

func (h *BookingHandler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	var buf bytes.Buffer
	if err := h.Service.ReportCSV(r.Context(), actor, &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "minhas-reservas.csv", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
