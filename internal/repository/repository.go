// Package repository defines the data-access interfaces the service layer
// depends on. The sqlite subpackage is the storage implementation; tests use
// in-memory substitutes.
package repository

import (
	"context"

	"github.com/aleksej-tulko/foodgram/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// RecipeFilter narrows recipe listings. Zero values mean "no constraint".
// ViewerID drives the is_favorited / is_in_shopping_cart flags and may be
// empty for anonymous requests.
type RecipeFilter struct {
	ListOptions
	ViewerID    string
	AuthorID    string
	TagSlugs    []string
	Name        string // prefix match on recipe name
	FavoritedBy string // only recipes favorited by this user
	InCartOf    string // only recipes in this user's cart
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, int, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
}

// Method names are prefixed per entity (CreateTag, CreateRecipe, ...) so a
// single storage type can implement every repository interface, the way the
// sqlite.DB does.

type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByID(ctx context.Context, id string) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type IngredientRepository interface {
	CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error
	GetIngredientByID(ctx context.Context, id string) (*model.Ingredient, error)
	// SearchIngredients lists ingredients ordered by name; when name is
	// non-empty, prefix matches come before other substring matches.
	SearchIngredients(ctx context.Context, name string) ([]model.Ingredient, error)
}

type RecipeRepository interface {
	// CreateRecipe persists the recipe, its ingredient lines and its tag set
	// in a single transaction.
	CreateRecipe(ctx context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error
	// ReplaceRecipe updates the recipe row and rewrites the ingredient and
	// tag associations wholesale: existing rows are deleted and the
	// submitted sets inserted, even when nothing changed.
	ReplaceRecipe(ctx context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error
	DeleteRecipe(ctx context.Context, id string) error
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	GetRecipeDetail(ctx context.Context, id, viewerID string) (*model.RecipeDetail, error)
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]model.RecipeDetail, int, error)
	ExistsByAuthorAndName(ctx context.Context, authorID, name string) (bool, error)
	SetShortHash(ctx context.Context, id, hash string) error
	GetIDByShortHash(ctx context.Context, hash string) (string, error)
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	SummariesByAuthor(ctx context.Context, authorID string, limit int) ([]model.RecipeSummary, error)
}

// RelationKind selects one of the two user↔recipe membership sets.
type RelationKind string

const (
	KindFavorite     RelationKind = "favorite"
	KindShoppingCart RelationKind = "shopping_cart"
)

// RelationRepository is the shared set-membership store behind favorites and
// the shopping cart.
type RelationRepository interface {
	// AddRelation inserts the (user, recipe) pair; a duplicate yields a
	// conflict.
	AddRelation(ctx context.Context, kind RelationKind, userID, recipeID string) error
	// RemoveRelation deletes the pair; a missing pair yields a validation
	// error.
	RemoveRelation(ctx context.Context, kind RelationKind, userID, recipeID string) error
	RelationExists(ctx context.Context, kind RelationKind, userID, recipeID string) (bool, error)
	// CartLines returns every (ingredient name, unit, amount) row across the
	// user's cart, unaggregated, in stable cart-then-recipe order.
	CartLines(ctx context.Context, userID string) ([]model.CartLine, error)
}

type SubscriptionRepository interface {
	AddSubscription(ctx context.Context, followerID, followeeID string) error
	RemoveSubscription(ctx context.Context, followerID, followeeID string) error
	SubscriptionExists(ctx context.Context, followerID, followeeID string) (bool, error)
	// ListSubscriptions returns the follower's outgoing edges ordered by
	// followee username, each annotated with the followee's recipe count.
	// Recipe previews are filled in by the service.
	ListSubscriptions(ctx context.Context, followerID string, opts ListOptions) ([]model.SubscriptionEntry, int, error)
}
