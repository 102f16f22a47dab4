package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"roombooking/internal/auth"
	"roombooking/internal/entities"
	"roombooking/internal/service"
)

type AuthHandler struct {
	base
	service service.AuthService
	users   *service.UserService
}

func NewAuthHandler(svc service.AuthService, users *service.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{base: base{log: log}, service: svc, users: users}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Me returns the caller's profile; the client uses its role to show the
// manager and admin menus.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	profile, err := h.users.Me(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}
