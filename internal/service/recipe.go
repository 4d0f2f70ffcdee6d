package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
	"github.com/aleksej-tulko/foodgram/internal/storage"
	"github.com/aleksej-tulko/foodgram/internal/validate"
)

const (
	shortLinkLength   = 3
	shortLinkAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	shortLinkRetries  = 5
)

// RecipeService handles the recipe write pipeline, reads and short links.
type RecipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	users       repository.UserRepository
	images      *storage.ImageStore
	rules       validate.Rules
	logger      *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	users repository.UserRepository,
	images *storage.ImageStore,
	rules validate.Rules,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		users:       users,
		images:      images,
		rules:       rules,
		logger:      logger,
	}
}

// RecipeInput is the recipe write payload after JSON decoding. Image is a
// base64 data URI; on update an empty Image keeps the stored file.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Ingredients []model.IngredientAmount
	TagIDs      []string
}

// validateInput runs the shared field checks on the write payload.
func (s *RecipeService) validateInput(ctx context.Context, input RecipeInput) error {
	if input.Name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if err := s.rules.RecipeName(input.Name); err != nil {
		return err
	}
	if input.Text == "" {
		return apperror.ValidationFailed("text", "text is required")
	}
	if err := s.rules.Description(input.Text); err != nil {
		return err
	}
	if err := s.rules.CookingTime(input.CookingTime); err != nil {
		return err
	}

	ingredientIDs := make([]string, len(input.Ingredients))
	for i, line := range input.Ingredients {
		ingredientIDs[i] = line.ID
	}
	if err := validate.TagsAndIngredients(input.TagIDs, ingredientIDs); err != nil {
		return err
	}
	for _, line := range input.Ingredients {
		if line.Amount <= 0 {
			return apperror.ValidationFailed("amount",
				fmt.Sprintf("amount for ingredient %s must be positive", line.ID))
		}
	}

	// Referencing an unknown tag or ingredient is a client error on the
	// write path, not a missing resource.
	for _, id := range input.TagIDs {
		if _, err := s.tags.GetTagByID(ctx, id); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ValidationFailed("tags", fmt.Sprintf("tag %s does not exist", id))
			}
			return err
		}
	}
	for _, line := range input.Ingredients {
		if _, err := s.ingredients.GetIngredientByID(ctx, line.ID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ValidationFailed("ingredients",
					fmt.Sprintf("ingredient %s does not exist", line.ID))
			}
			return err
		}
	}
	return nil
}

// Create validates the payload, stores the image and persists the recipe.
// Returns the full read shape as seen by the author.
func (s *RecipeService) Create(ctx context.Context, authorID string, input RecipeInput) (*model.RecipeDetail, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.Image == "" {
		return nil, apperror.ValidationFailed("image", "image is required")
	}

	// Pre-check for a friendlier error; the unique constraint on
	// (author_id, name) catches the race between two identical submissions.
	exists, err := s.recipes.ExistsByAuthorAndName(ctx, authorID, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict(fmt.Sprintf("a recipe with the name %s already exists", input.Name))
	}

	imagePath, err := s.images.SaveDataURI("recipes", input.Image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Image:       imagePath,
		Text:        input.Text,
		CookingTime: input.CookingTime,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe, input.Ingredients, input.TagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("recipe created", "recipe_id", recipe.ID, "author_id", authorID)
	return s.recipes.GetRecipeDetail(ctx, recipe.ID, authorID)
}

// Update validates the payload and replaces the recipe. Only the author,
// staff or a superuser may update; the author never changes.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID string, input RecipeInput) (*model.RecipeDetail, error) {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanEdit(recipe.AuthorID) {
		return nil, apperror.Forbidden("you do not have permission to edit this recipe")
	}

	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	if input.Name != recipe.Name {
		exists, err := s.recipes.ExistsByAuthorAndName(ctx, recipe.AuthorID, input.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.Conflict(fmt.Sprintf("a recipe with the name %s already exists", input.Name))
		}
	}

	imagePath := recipe.Image
	if input.Image != "" {
		imagePath, err = s.images.SaveDataURI("recipes", input.Image)
		if err != nil {
			return nil, err
		}
	}

	recipe.Name = input.Name
	recipe.Image = imagePath
	recipe.Text = input.Text
	recipe.CookingTime = input.CookingTime
	if err := s.recipes.ReplaceRecipe(ctx, recipe, input.Ingredients, input.TagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", "recipe_id", recipeID, "user_id", userID)
	return s.recipes.GetRecipeDetail(ctx, recipeID, userID)
}

// Delete removes the recipe after the ownership check.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CanEdit(recipe.AuthorID) {
		return apperror.Forbidden("you do not have permission to delete this recipe")
	}

	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	s.logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", userID)
	return nil
}

// Get returns the read shape with viewer-relative flags. viewerID may be
// empty.
func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID string) (*model.RecipeDetail, error) {
	return s.recipes.GetRecipeDetail(ctx, recipeID, viewerID)
}

// List returns filtered recipe details newest-first plus the total count.
func (s *RecipeService) List(ctx context.Context, filter repository.RecipeFilter) ([]model.RecipeDetail, int, error) {
	return s.recipes.ListRecipes(ctx, filter)
}

// ShortLink mints a fresh short-link token for the recipe on every call,
// retrying on token collisions. The previous token stops resolving.
func (s *RecipeService) ShortLink(ctx context.Context, recipeID string) (string, error) {
	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return "", err
	}

	for attempt := 0; attempt < shortLinkRetries; attempt++ {
		token, err := mintShortToken()
		if err != nil {
			return "", err
		}
		err = s.recipes.SetShortHash(ctx, recipeID, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("service: exhausted short link token attempts for %s", recipeID)
}

// ResolveShortLink returns the recipe ID behind a short-link token.
func (s *RecipeService) ResolveShortLink(ctx context.Context, token string) (string, error) {
	return s.recipes.GetIDByShortHash(ctx, token)
}

func mintShortToken() (string, error) {
	token := make([]byte, shortLinkLength)
	for i := range token {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shortLinkAlphabet))))
		if err != nil {
			return "", fmt.Errorf("service: minting short link token: %w", err)
		}
		token[i] = shortLinkAlphabet[n.Int64()]
	}
	return string(token), nil
}
