package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/service"
)

// SubscriptionHandler serves the follow endpoints.
type SubscriptionHandler struct {
	subs   *service.SubscriptionService
	logger *slog.Logger
}

func NewSubscriptionHandler(subs *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger}
}

// recipesLimitParam reads the recipes_limit query parameter; 0 means no
// limit. A non-numeric value is a client error.
func recipesLimitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed("recipes_limit", "recipes_limit must be a non-negative integer")
	}
	return n, nil
}

func publicEntry(e model.SubscriptionEntry) model.SubscriptionEntry {
	e.Profile = publicProfile(e.Profile)
	summaries := make([]model.RecipeSummary, len(e.Recipes))
	for i, s := range e.Recipes {
		summaries[i] = publicSummary(s)
	}
	e.Recipes = summaries
	return e
}

// HandleList returns the viewer's subscriptions with recipe previews.
//
// GET /api/users/subscriptions/?recipes_limit=
func (h *SubscriptionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recipesLimit, err := recipesLimitParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, total, err := h.subs.List(r.Context(), userID, listOptions(page, limit), recipesLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]model.SubscriptionEntry, len(entries))
	for i, e := range entries {
		results[i] = publicEntry(e)
	}
	writeJSON(w, http.StatusOK, paginate(r, total, page, limit, results))
}

// HandleSubscribe follows the user in the path.
//
// POST /api/users/{id}/subscribe/
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	recipesLimit, err := recipesLimitParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.subs.Subscribe(r.Context(), userID, r.PathValue("id"), recipesLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, publicEntry(*entry))
}

// HandleUnsubscribe unfollows the user in the path.
//
// DELETE /api/users/{id}/subscribe/
func (h *SubscriptionHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.subs.Unsubscribe(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
