package service

import (
	"context"
	"log/slog"

	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

// CollectionService handles the two per-user recipe sets, favorites and the
// shopping cart. Both behave identically; the relation kind picks the set.
type CollectionService struct {
	recipes   repository.RecipeRepository
	relations repository.RelationRepository
	logger    *slog.Logger
}

func NewCollectionService(
	recipes repository.RecipeRepository,
	relations repository.RelationRepository,
	logger *slog.Logger,
) *CollectionService {
	return &CollectionService{
		recipes:   recipes,
		relations: relations,
		logger:    logger,
	}
}

// Add puts the recipe into the user's set and returns its compact shape.
// An unknown recipe is a 404; a repeated add is a conflict.
func (s *CollectionService) Add(ctx context.Context, kind repository.RelationKind, userID, recipeID string) (*model.RecipeSummary, error) {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.AddRelation(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}

	s.logger.Info("recipe added to collection", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return &model.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}, nil
}

// Remove takes the recipe out of the user's set. An unknown recipe is a 404;
// removing a recipe that is not in the set is a client error.
func (s *CollectionService) Remove(ctx context.Context, kind repository.RelationKind, userID, recipeID string) error {
	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return err
	}
	if err := s.relations.RemoveRelation(ctx, kind, userID, recipeID); err != nil {
		return err
	}

	s.logger.Info("recipe removed from collection", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return nil
}
