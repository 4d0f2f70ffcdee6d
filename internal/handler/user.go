package handler

import (
	"log/slog"
	"net/http"

	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/service"
)

// UserHandler serves registration, profiles and account settings.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// registeredResponse is the signup response shape; no viewer-relative fields.
type registeredResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// publicProfile rewrites the stored avatar path to its public URL.
func publicProfile(p model.Profile) model.Profile {
	p.Avatar = mediaURL(p.Avatar)
	return p
}

// HandleRegister creates an account.
//
// POST /api/users/
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registeredResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// HandleList returns the paginated user list.
//
// GET /api/users/
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profiles, total, err := h.users.List(r.Context(), viewerID, listOptions(page, limit))
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]model.Profile, len(profiles))
	for i, p := range profiles {
		results[i] = publicProfile(p)
	}
	writeJSON(w, http.StatusOK, paginate(r, total, page, limit, results))
}

// HandleProfile returns one user's profile.
//
// GET /api/users/{id}/
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.Profile(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(*profile))
}

// HandleMe returns the authenticated user's own profile.
//
// GET /api/users/me/
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.Profile(r.Context(), userID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicProfile(*profile))
}

// HandleChangePassword sets a new password after verifying the current one.
//
// POST /api/users/set_password/
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		NewPassword     string `json:"new_password"`
		CurrentPassword string `json:"current_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetAvatar stores a new avatar image.
//
// PUT /api/users/me/avatar/
func (h *UserHandler) HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	path, err := h.users.SetAvatar(r.Context(), userID, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar": mediaURL(path)})
}

// HandleRemoveAvatar clears the avatar.
//
// DELETE /api/users/me/avatar/
func (h *UserHandler) HandleRemoveAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.RemoveAvatar(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
