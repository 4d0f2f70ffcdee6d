package service

import (
	"context"

	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

// CatalogService serves the read-only tag and ingredient reference data.
type CatalogService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
}

func NewCatalogService(tags repository.TagRepository, ingredients repository.IngredientRepository) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients}
}

func (s *CatalogService) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.ListTags(ctx)
}

func (s *CatalogService) Tag(ctx context.Context, id string) (*model.Tag, error) {
	return s.tags.GetTagByID(ctx, id)
}

func (s *CatalogService) Ingredients(ctx context.Context, name string) ([]model.Ingredient, error) {
	return s.ingredients.SearchIngredients(ctx, name)
}

func (s *CatalogService) Ingredient(ctx context.Context, id string) (*model.Ingredient, error) {
	return s.ingredients.GetIngredientByID(ctx, id)
}
