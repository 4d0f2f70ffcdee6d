package model

import "time"

// Recipe is the stored form of a recipe. Tag and ingredient associations live
// in junction tables and are loaded into RecipeDetail for reads.
//
// Ownership is immutable: AuthorID is set at creation and never updated.
// Name is unique per (author, name), not globally.
type Recipe struct {
	ID          string
	AuthorID    string
	Name        string
	Image       string // media path; required
	Text        string
	CookingTime int // minutes
	ShortHash   string
	CreatedAt   time.Time
}

// IngredientAmount is one submitted (ingredient, amount) pair on the write
// path. Amount must be strictly positive.
type IngredientAmount struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

// IngredientLine is the read shape of a junction row: the full ingredient
// plus the quantity used in this recipe.
type IngredientLine struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	MeasurementUnit string  `json:"measurement_unit"`
	Amount          float64 `json:"amount"`
}

// RecipeDetail is the full read representation. IsFavorited and
// IsInShoppingCart are computed at read time against the viewer's identity;
// anonymous viewers always see false.
type RecipeDetail struct {
	ID               string           `json:"id"`
	Author           Profile          `json:"author"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
	Ingredients      []IngredientLine `json:"ingredients"`
	Tags             []Tag            `json:"tags"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
}

// RecipeSummary is the compact shape returned by favorite/cart adds and
// subscription previews.
type RecipeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// CartLine is one raw row of the viewer's shopping cart join, before
// aggregation: an ingredient name, its unit and the amount from one recipe.
type CartLine struct {
	Name   string
	Unit   string
	Amount float64
}

// ShoppingItem is one aggregated shopping-list entry. Amounts are summed by
// ingredient name; the unit comes from the last-seen row for that name.
type ShoppingItem struct {
	Name   string
	Amount float64
	Unit   string
}
