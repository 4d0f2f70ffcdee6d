package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/storage"
	"github.com/aleksej-tulko/foodgram/internal/validate"
)

// onePixelPNG is a valid 1x1 PNG, base64-encoded, for image upload paths.
const onePixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImageStore(t *testing.T) *storage.ImageStore {
	t.Helper()
	images, err := storage.NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	return images
}

func newTestUserService(t *testing.T, store *fakeStore) *UserService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewUserService(
		store, store,
		auth.NewPasswordServiceForTest(4),
		tokens,
		testImageStore(t),
		validate.DefaultRules(),
		testLogger(),
	)
}

func newTestRecipeService(t *testing.T, store *fakeStore) *RecipeService {
	t.Helper()
	return NewRecipeService(
		store, store, store, store,
		testImageStore(t),
		validate.DefaultRules(),
		testLogger(),
	)
}

func registerUser(t *testing.T, svc *UserService, username string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}
	return user
}

func seedCatalog(t *testing.T, store *fakeStore) (*model.Tag, *model.Ingredient) {
	t.Helper()
	tag := &model.Tag{Name: "dinner", Slug: "dinner"}
	if err := store.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	ing := &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	if err := store.CreateIngredient(context.Background(), ing); err != nil {
		t.Fatalf("creating ingredient: %v", err)
	}
	return tag, ing
}

func validRecipeInput(tag *model.Tag, ing *model.Ingredient) RecipeInput {
	return RecipeInput{
		Name:        "Bread",
		Text:        "Mix and bake.",
		CookingTime: 90,
		Image:       onePixelPNG,
		Ingredients: []model.IngredientAmount{{ID: ing.ID, Amount: 500}},
		TagIDs:      []string{tag.ID},
	}
}
