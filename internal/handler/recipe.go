package handler

import (
	"log/slog"
	"net/http"

	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
	"github.com/aleksej-tulko/foodgram/internal/service"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping cart actions,
// the shopping list download and short links.
type RecipeHandler struct {
	recipes     *service.RecipeService
	collections *service.CollectionService
	shopping    *service.ShoppingListService
	baseURL     string
	logger      *slog.Logger
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	collections *service.CollectionService,
	shopping *service.ShoppingListService,
	baseURL string,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		collections: collections,
		shopping:    shopping,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// recipeRequest is the recipe write payload.
type recipeRequest struct {
	Name        string                   `json:"name"`
	Text        string                   `json:"text"`
	CookingTime int                      `json:"cooking_time"`
	Image       string                   `json:"image"`
	Ingredients []model.IngredientAmount `json:"ingredients"`
	Tags        []string                 `json:"tags"`
}

func (req recipeRequest) toInput() service.RecipeInput {
	return service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Ingredients: req.Ingredients,
		TagIDs:      req.Tags,
	}
}

// publicDetail rewrites stored media paths to public URLs.
func publicDetail(d model.RecipeDetail) model.RecipeDetail {
	d.Image = mediaURL(d.Image)
	d.Author = publicProfile(d.Author)
	return d
}

func publicSummary(s model.RecipeSummary) model.RecipeSummary {
	s.Image = mediaURL(s.Image)
	return s
}

// HandleList returns filtered recipes, newest first.
//
// GET /api/recipes/?author=&tags=&is_favorited=1&is_in_shopping_cart=1&name=
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	query := r.URL.Query()
	filter := repository.RecipeFilter{
		ListOptions: listOptions(page, limit),
		ViewerID:    viewerID,
		AuthorID:    query.Get("author"),
		TagSlugs:    query["tags"],
		Name:        query.Get("name"),
	}
	// The membership filters only mean something for a logged-in viewer.
	if viewerID != "" {
		if query.Get("is_favorited") == "1" {
			filter.FavoritedBy = viewerID
		}
		if query.Get("is_in_shopping_cart") == "1" {
			filter.InCartOf = viewerID
		}
	}

	details, total, err := h.recipes.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]model.RecipeDetail, len(details))
	for i, d := range details {
		results[i] = publicDetail(d)
	}
	writeJSON(w, http.StatusOK, paginate(r, total, page, limit, results))
}

// HandleCreate creates a recipe owned by the authenticated user.
//
// POST /api/recipes/
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.recipes.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, publicDetail(*detail))
}

// HandleGet returns one recipe.
//
// GET /api/recipes/{id}/
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	detail, err := h.recipes.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicDetail(*detail))
}

// HandleUpdate replaces a recipe's content and associations.
//
// PATCH /api/recipes/{id}/
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.recipes.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicDetail(*detail))
}

// HandleDelete removes a recipe.
//
// DELETE /api/recipes/{id}/
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.recipes.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddToCollection adds the recipe to the viewer's favorites or cart.
//
// POST /api/recipes/{id}/favorite/ and /api/recipes/{id}/shopping_cart/
func (h *RecipeHandler) HandleAddToCollection(kind repository.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())

		summary, err := h.collections.Add(r.Context(), kind, userID, r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, publicSummary(*summary))
	}
}

// HandleRemoveFromCollection removes the recipe from the viewer's favorites
// or cart.
//
// DELETE /api/recipes/{id}/favorite/ and /api/recipes/{id}/shopping_cart/
func (h *RecipeHandler) HandleRemoveFromCollection(kind repository.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFromContext(r.Context())

		if err := h.collections.Remove(r.Context(), kind, userID, r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDownloadShoppingCart renders the viewer's aggregated cart as a PDF.
//
// GET /api/recipes/download_shopping_cart/
func (h *RecipeHandler) HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	doc, err := h.shopping.Download(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.Error("writing shopping list", "error", err)
	}
}

// HandleGetLink mints a short link for the recipe.
//
// GET /api/recipes/{id}/get-link/
func (h *RecipeHandler) HandleGetLink(w http.ResponseWriter, r *http.Request) {
	token, err := h.recipes.ShortLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"short-link": h.baseURL + "/s/" + token})
}

// HandleResolveShortLink redirects a short link to the recipe page.
//
// GET /s/{hash}
func (h *RecipeHandler) HandleResolveShortLink(w http.ResponseWriter, r *http.Request) {
	recipeID, err := h.recipes.ResolveShortLink(r.Context(), r.PathValue("hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/recipes/"+recipeID, http.StatusFound)
}
