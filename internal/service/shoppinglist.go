package service

import (
	"context"
	"log/slog"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/pdf"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

// ShoppingListService renders the cart download.
type ShoppingListService struct {
	relations repository.RelationRepository
	logger    *slog.Logger
}

func NewShoppingListService(relations repository.RelationRepository, logger *slog.Logger) *ShoppingListService {
	return &ShoppingListService{relations: relations, logger: logger}
}

// Download aggregates the user's cart and renders it as a PDF. An empty cart
// is a client error rather than an empty document.
func (s *ShoppingListService) Download(ctx context.Context, userID string) ([]byte, error) {
	lines, err := s.relations.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.ValidationFailed("shopping_cart", "the shopping cart is empty")
	}

	items := AggregateCartLines(lines)
	doc, err := pdf.ShoppingList(items)
	if err != nil {
		return nil, err
	}

	s.logger.Info("shopping list downloaded", "user_id", userID, "items", len(items))
	return doc, nil
}

// AggregateCartLines merges cart rows by ingredient name, summing amounts.
// Items keep the order the names first appeared in; when the same name occurs
// with different units the last-seen unit wins.
func AggregateCartLines(lines []model.CartLine) []model.ShoppingItem {
	index := make(map[string]int, len(lines))
	items := make([]model.ShoppingItem, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.Name]; ok {
			items[i].Amount += line.Amount
			items[i].Unit = line.Unit
			continue
		}
		index[line.Name] = len(items)
		items = append(items, model.ShoppingItem{
			Name:   line.Name,
			Amount: line.Amount,
			Unit:   line.Unit,
		})
	}
	return items
}
