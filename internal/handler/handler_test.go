package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/handler"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
	sqliteRepo "github.com/aleksej-tulko/foodgram/internal/repository/sqlite"
	"github.com/aleksej-tulko/foodgram/internal/service"
	"github.com/aleksej-tulko/foodgram/internal/storage"
	"github.com/aleksej-tulko/foodgram/internal/validate"
)

const onePixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// testEnv wires the handlers over an in-memory database with the same routes
// the server registers.
type testEnv struct {
	router *chi.Mux
	db     *sqliteRepo.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(4)
	images, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)
	rules := validate.DefaultRules()

	userService := service.NewUserService(db, db, passwords, tokens, images, rules, logger)
	recipeService := service.NewRecipeService(db, db, db, db, images, rules, logger)
	collectionService := service.NewCollectionService(db, db, logger)
	subscriptionService := service.NewSubscriptionService(db, db, db, logger)
	shoppingService := service.NewShoppingListService(db, logger)
	catalogService := service.NewCatalogService(db, db)

	authHandler := handler.NewAuthHandler(userService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	recipeHandler := handler.NewRecipeHandler(
		recipeService, collectionService, shoppingService, "http://test", logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	router := chi.NewRouter()
	router.Get("/s/{hash}", recipeHandler.HandleResolveShortLink)
	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/login/", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/users/", userHandler.HandleRegister)
			r.Get("/users/", userHandler.HandleList)
			r.Get("/users/{id}/", userHandler.HandleProfile)
			r.Get("/tags/", catalogHandler.HandleListTags)
			r.Get("/tags/{id}/", catalogHandler.HandleGetTag)
			r.Get("/ingredients/", catalogHandler.HandleListIngredients)
			r.Get("/ingredients/{id}/", catalogHandler.HandleGetIngredient)
			r.Get("/recipes/", recipeHandler.HandleList)
			r.Get("/recipes/{id}/", recipeHandler.HandleGet)
			r.Get("/recipes/{id}/get-link/", recipeHandler.HandleGetLink)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/auth/token/logout/", authHandler.HandleLogout)
			r.Get("/users/me/", userHandler.HandleMe)
			r.Post("/users/set_password/", userHandler.HandleChangePassword)
			r.Put("/users/me/avatar/", userHandler.HandleSetAvatar)
			r.Delete("/users/me/avatar/", userHandler.HandleRemoveAvatar)
			r.Get("/users/subscriptions/", subscriptionHandler.HandleList)
			r.Post("/users/{id}/subscribe/", subscriptionHandler.HandleSubscribe)
			r.Delete("/users/{id}/subscribe/", subscriptionHandler.HandleUnsubscribe)
			r.Post("/recipes/", recipeHandler.HandleCreate)
			r.Patch("/recipes/{id}/", recipeHandler.HandleUpdate)
			r.Delete("/recipes/{id}/", recipeHandler.HandleDelete)
			r.Post("/recipes/{id}/favorite/",
				recipeHandler.HandleAddToCollection(repository.KindFavorite))
			r.Delete("/recipes/{id}/favorite/",
				recipeHandler.HandleRemoveFromCollection(repository.KindFavorite))
			r.Post("/recipes/{id}/shopping_cart/",
				recipeHandler.HandleAddToCollection(repository.KindShoppingCart))
			r.Delete("/recipes/{id}/shopping_cart/",
				recipeHandler.HandleRemoveFromCollection(repository.KindShoppingCart))
			r.Get("/recipes/download_shopping_cart/", recipeHandler.HandleDownloadShoppingCart)
		})
	})

	return &testEnv{router: router, db: db}
}

// do performs a request against the router. token may be empty.
func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

// registerAndLogin creates an account over the API and returns its token and ID.
func (e *testEnv) registerAndLogin(t *testing.T, username string) (token, userID string) {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/users/", "",
		`{"email":"`+username+`@example.com","username":"`+username+`",`+
			`"first_name":"Test","last_name":"User","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody[map[string]any](t, rr)

	rr = e.do(t, http.MethodPost, "/api/auth/token/login/", "",
		`{"email":"`+username+`@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decodeBody[map[string]string](t, rr)

	return login["auth_token"], created["id"].(string)
}

// seedCatalog inserts one tag and one ingredient directly.
func (e *testEnv) seedCatalog(t *testing.T) (*model.Tag, *model.Ingredient) {
	t.Helper()
	tag := &model.Tag{Name: "dinner", Slug: "dinner"}
	require.NoError(t, e.db.CreateTag(context.Background(), tag))
	ing := &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, e.db.CreateIngredient(context.Background(), ing))
	return tag, ing
}

// createRecipe posts a valid recipe and returns its decoded response.
func (e *testEnv) createRecipe(t *testing.T, token, name string, tag *model.Tag, ing *model.Ingredient) map[string]any {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/recipes/", token,
		`{"name":"`+name+`","text":"Cook it.","cooking_time":30,`+
			`"image":"`+onePixelPNG+`",`+
			`"ingredients":[{"id":"`+ing.ID+`","amount":200}],`+
			`"tags":["`+tag.ID+`"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[map[string]any](t, rr)
}
