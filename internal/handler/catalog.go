package handler

import (
	"log/slog"
	"net/http"

	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/service"
)

// CatalogHandler serves the read-only tag and ingredient endpoints. Neither
// is paginated; clients always get the full (filtered) set.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleListTags returns every tag.
//
// GET /api/tags/
func (h *CatalogHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleGetTag returns one tag.
//
// GET /api/tags/{id}/
func (h *CatalogHandler) HandleGetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.catalog.Tag(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HandleListIngredients returns ingredients, optionally filtered by the name
// query parameter. Prefix matches sort before substring matches.
//
// GET /api/ingredients/?name=
func (h *CatalogHandler) HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// HandleGetIngredient returns one ingredient.
//
// GET /api/ingredients/{id}/
func (h *CatalogHandler) HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	ingredient, err := h.catalog.Ingredient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}
