package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"roombooking/internal/auth"
	"roombooking/internal/db"
	"roombooking/internal/metrics"
)

type Handlers struct {
	Auth     *AuthHandler
	Rooms    *RoomHandler
	Bookings *BookingHandler
	Manager  *ManagerHandler
	Admin    *AdminHandler
	Realtime *RealtimeHandler
}

type RouterConfig struct {
	Authenticator *auth.Authenticator
	LoginLimiter  *IPRateLimiter
	CORSOrigins   []string
	Log           *logrus.Logger
	// Uploads serves locally stored images under UploadsPrefix when set.
	Uploads       http.Handler
	UploadsPrefix string
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	}).Methods(http.MethodGet)
	if cfg.Uploads != nil && cfg.UploadsPrefix != "" {
		r.PathPrefix(cfg.UploadsPrefix).Handler(cfg.Uploads).Methods(http.MethodGet, http.MethodHead)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/auth/login", cfg.LoginLimiter.Middleware(http.HandlerFunc(h.Auth.Login))).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/rooms", h.Rooms.ListRooms).Methods(http.MethodGet)
	api.HandleFunc("/extras", h.Rooms.ListExtras).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(cfg.Authenticator.Middleware)
	authed.HandleFunc("/rooms/available", h.Rooms.AvailableRooms).Methods(http.MethodGet)
	authed.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	authed.HandleFunc("/bookings", h.Bookings.ListMyBookings).Methods(http.MethodGet)
	authed.HandleFunc("/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost)
	authed.HandleFunc("/bookings/stats", h.Bookings.MyStats).Methods(http.MethodGet)
	authed.HandleFunc("/bookings/export.ics", h.Bookings.ExportMyCalendar).Methods(http.MethodGet)
	authed.HandleFunc("/bookings/report.csv", h.Bookings.ReportCSV).Methods(http.MethodGet)
	authed.HandleFunc("/bookings/{id}/cancel", h.Bookings.CancelBooking).Methods(http.MethodPost)
	authed.HandleFunc("/bookings/{id}/checkin", h.Bookings.CheckIn).Methods(http.MethodPost)
	authed.HandleFunc("/bookings/{id}/calendar.ics", h.Bookings.BookingCalendar).Methods(http.MethodGet)
	authed.HandleFunc("/realtime", h.Realtime.Subscribe).Methods(http.MethodGet)

	// registered after /rooms/available so the literal path wins
	api.HandleFunc("/rooms/{id}", h.Rooms.GetRoom).Methods(http.MethodGet)

	manager := r.PathPrefix("/manager").Subrouter()
	manager.Use(cfg.Authenticator.Middleware, auth.RequireRole(db.RoleManager, db.RoleAdmin))
	manager.HandleFunc("/bookings/pending", h.Manager.ListPending).Methods(http.MethodGet)
	manager.HandleFunc("/bookings/approved", h.Manager.ListApproved).Methods(http.MethodGet)
	manager.HandleFunc("/bookings/{id}/approve", h.Manager.Approve).Methods(http.MethodPost)
	manager.HandleFunc("/bookings/{id}/reject", h.Manager.Reject).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(cfg.Authenticator.Middleware, auth.RequireRole(db.RoleAdmin))
	admin.HandleFunc("/bookings", h.Admin.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/rooms", h.Admin.CreateRoom).Methods(http.MethodPost)
	admin.HandleFunc("/rooms/{id}", h.Admin.UpdateRoom).Methods(http.MethodPut)
	admin.HandleFunc("/rooms/{id}", h.Admin.DeleteRoom).Methods(http.MethodDelete)
	admin.HandleFunc("/rooms/{id}/status", h.Admin.UpdateRoomStatus).Methods(http.MethodPut)
	admin.HandleFunc("/rooms/{id}/image", h.Admin.UploadRoomImage).Methods(http.MethodPost)
	admin.HandleFunc("/users", h.Admin.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/role", h.Admin.UpdateUserRole).Methods(http.MethodPut)
	admin.HandleFunc("/reports/occupancy", h.Admin.OccupancyReport).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(cfg.Log), handlers.PrintRecoveryStack(true))(handler)
	handler = handlers.CombinedLoggingHandler(cfg.Log.WriterLevel(logrus.InfoLevel), handler)
	return handlers.ProxyHeaders(handler)
}
