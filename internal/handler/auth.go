package handler

import (
	"log/slog"
	"net/http"

	"github.com/aleksej-tulko/foodgram/internal/service"
)

// AuthHandler serves token login and logout.
type AuthHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// HandleLogin exchanges email and password for an access token.
//
// POST /api/auth/token/login/
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

// HandleLogout acknowledges the logout. Tokens are stateless; the client
// discards its copy.
//
// POST /api/auth/token/logout/
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
