package service

import (
	"context"
	"log/slog"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

// SubscriptionService handles follower → followee edges and the subscription
// list with its recipe previews.
type SubscriptionService struct {
	subs    repository.SubscriptionRepository
	users   repository.UserRepository
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subs:    subs,
		users:   users,
		recipes: recipes,
		logger:  logger,
	}
}

// Subscribe creates the edge and returns the followee annotated with their
// recipe count and a preview limited to recipesLimit (<= 0 means all).
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followeeID string, recipesLimit int) (*model.SubscriptionEntry, error) {
	if followerID == followeeID {
		return nil, apperror.ValidationFailed("followee", "you cannot subscribe to yourself")
	}

	followee, err := s.users.GetByID(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	if err := s.subs.AddSubscription(ctx, followerID, followeeID); err != nil {
		return nil, err
	}

	count, err := s.recipes.CountByAuthor(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	preview, err := s.recipes.SummariesByAuthor(ctx, followeeID, recipesLimit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscribed", "follower_id", followerID, "followee_id", followeeID)
	return &model.SubscriptionEntry{
		Profile:      model.ProfileOf(followee, true),
		RecipesCount: count,
		Recipes:      preview,
	}, nil
}

// Unsubscribe removes the edge. An unknown followee is a 404; a missing edge
// is a client error.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followeeID string) error {
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	if err := s.subs.RemoveSubscription(ctx, followerID, followeeID); err != nil {
		return err
	}

	s.logger.Info("unsubscribed", "follower_id", followerID, "followee_id", followeeID)
	return nil
}

// List returns the follower's subscriptions ordered by followee username,
// each with a recipe preview limited to recipesLimit (<= 0 means all).
func (s *SubscriptionService) List(ctx context.Context, followerID string, opts repository.ListOptions, recipesLimit int) ([]model.SubscriptionEntry, int, error) {
	entries, total, err := s.subs.ListSubscriptions(ctx, followerID, opts)
	if err != nil {
		return nil, 0, err
	}

	for i := range entries {
		preview, err := s.recipes.SummariesByAuthor(ctx, entries[i].ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		entries[i].Recipes = preview
	}
	return entries, total, nil
}
