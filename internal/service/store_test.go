package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

// fakeStore is an in-memory implementation of the repository interfaces for
// service tests. Semantics match the sqlite implementation where the services
// depend on them; everything else is the simplest thing that works.
type fakeStore struct {
	users       map[string]*model.User
	tags        map[string]*model.Tag
	ingredients map[string]*model.Ingredient
	recipes     map[string]*model.Recipe
	recipeLines map[string][]model.IngredientAmount
	recipeTags  map[string][]string
	relations   map[string]bool // kind|userID|recipeID
	subs        map[string]bool // followerID|followeeID

	nextID int

	// createRecipeErr, when set, overrides CreateRecipe's result once. Used
	// to simulate the constraint firing after a passing pre-check.
	createRecipeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*model.User),
		tags:        make(map[string]*model.Tag),
		ingredients: make(map[string]*model.Ingredient),
		recipes:     make(map[string]*model.Recipe),
		recipeLines: make(map[string][]model.IngredientAmount),
		recipeTags:  make(map[string][]string),
		relations:   make(map[string]bool),
		subs:        make(map[string]bool),
	}
}

func (f *fakeStore) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func relKey(kind repository.RelationKind, userID, recipeID string) string {
	return string(kind) + "|" + userID + "|" + recipeID
}

// --- UserRepository ---

func (f *fakeStore) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("a user with this username or email already exists")
		}
	}
	user.ID = f.genID()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) List(_ context.Context, opts repository.ListOptions) ([]model.User, int, error) {
	var users []model.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, len(users), nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) UpdateAvatar(_ context.Context, id, avatar string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Avatar = avatar
	return nil
}

// --- TagRepository ---

func (f *fakeStore) CreateTag(_ context.Context, tag *model.Tag) error {
	tag.ID = f.genID()
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeStore) GetTagByID(_ context.Context, id string) (*model.Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	return t, nil
}

func (f *fakeStore) ListTags(_ context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	for _, t := range f.tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// --- IngredientRepository ---

func (f *fakeStore) CreateIngredient(_ context.Context, ing *model.Ingredient) error {
	ing.ID = f.genID()
	f.ingredients[ing.ID] = ing
	return nil
}

func (f *fakeStore) GetIngredientByID(_ context.Context, id string) (*model.Ingredient, error) {
	i, ok := f.ingredients[id]
	if !ok {
		return nil, apperror.NotFound("ingredient", id)
	}
	return i, nil
}

func (f *fakeStore) SearchIngredients(_ context.Context, name string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, i := range f.ingredients {
		out = append(out, *i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- RecipeRepository ---

func (f *fakeStore) CreateRecipe(_ context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error {
	if f.createRecipeErr != nil {
		err := f.createRecipeErr
		f.createRecipeErr = nil
		return err
	}
	for _, r := range f.recipes {
		if r.AuthorID == recipe.AuthorID && r.Name == recipe.Name {
			return apperror.Conflict(fmt.Sprintf("a recipe with the name %s already exists", recipe.Name))
		}
	}
	recipe.ID = f.genID()
	f.recipes[recipe.ID] = recipe
	f.recipeLines[recipe.ID] = lines
	f.recipeTags[recipe.ID] = tagIDs
	return nil
}

func (f *fakeStore) ReplaceRecipe(_ context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error {
	if _, ok := f.recipes[recipe.ID]; !ok {
		return apperror.NotFound("recipe", recipe.ID)
	}
	f.recipes[recipe.ID] = recipe
	f.recipeLines[recipe.ID] = lines
	f.recipeTags[recipe.ID] = tagIDs
	return nil
}

func (f *fakeStore) DeleteRecipe(_ context.Context, id string) error {
	if _, ok := f.recipes[id]; !ok {
		return apperror.NotFound("recipe", id)
	}
	delete(f.recipes, id)
	delete(f.recipeLines, id)
	delete(f.recipeTags, id)
	return nil
}

func (f *fakeStore) GetRecipe(_ context.Context, id string) (*model.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", id)
	}
	clone := *r
	return &clone, nil
}

func (f *fakeStore) GetRecipeDetail(ctx context.Context, id, viewerID string) (*model.RecipeDetail, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", id)
	}
	author := f.users[r.AuthorID]
	detail := &model.RecipeDetail{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Author: model.ProfileOf(author,
			viewerID != "" && f.subs[viewerID+"|"+r.AuthorID]),
		IsFavorited:      viewerID != "" && f.relations[relKey(repository.KindFavorite, viewerID, id)],
		IsInShoppingCart: viewerID != "" && f.relations[relKey(repository.KindShoppingCart, viewerID, id)],
		Ingredients:      []model.IngredientLine{},
		Tags:             []model.Tag{},
	}
	for _, line := range f.recipeLines[id] {
		ing := f.ingredients[line.ID]
		detail.Ingredients = append(detail.Ingredients, model.IngredientLine{
			ID:              ing.ID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	for _, tagID := range f.recipeTags[id] {
		detail.Tags = append(detail.Tags, *f.tags[tagID])
	}
	return detail, nil
}

func (f *fakeStore) ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]model.RecipeDetail, int, error) {
	var ids []string
	for id, r := range f.recipes {
		if filter.AuthorID != "" && r.AuthorID != filter.AuthorID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var details []model.RecipeDetail
	for _, id := range ids {
		d, err := f.GetRecipeDetail(ctx, id, filter.ViewerID)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *d)
	}
	return details, len(details), nil
}

func (f *fakeStore) ExistsByAuthorAndName(_ context.Context, authorID, name string) (bool, error) {
	for _, r := range f.recipes {
		if r.AuthorID == authorID && r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetShortHash(_ context.Context, id, hash string) error {
	r, ok := f.recipes[id]
	if !ok {
		return apperror.NotFound("recipe", id)
	}
	for _, other := range f.recipes {
		if other.ID != id && other.ShortHash == hash {
			return apperror.Conflict("short link token collision")
		}
	}
	r.ShortHash = hash
	return nil
}

func (f *fakeStore) GetIDByShortHash(_ context.Context, hash string) (string, error) {
	for id, r := range f.recipes {
		if r.ShortHash == hash {
			return id, nil
		}
	}
	return "", apperror.NotFound("short link", hash)
}

func (f *fakeStore) CountByAuthor(_ context.Context, authorID string) (int, error) {
	count := 0
	for _, r := range f.recipes {
		if r.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SummariesByAuthor(_ context.Context, authorID string, limit int) ([]model.RecipeSummary, error) {
	var ids []string
	for id, r := range f.recipes {
		if r.AuthorID == authorID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	summaries := []model.RecipeSummary{}
	for _, id := range ids {
		if limit > 0 && len(summaries) == limit {
			break
		}
		r := f.recipes[id]
		summaries = append(summaries, model.RecipeSummary{
			ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime,
		})
	}
	return summaries, nil
}

// --- RelationRepository ---

func (f *fakeStore) AddRelation(_ context.Context, kind repository.RelationKind, userID, recipeID string) error {
	key := relKey(kind, userID, recipeID)
	if f.relations[key] {
		return apperror.Conflict(fmt.Sprintf("the recipe has already been added to %s", kind))
	}
	f.relations[key] = true
	return nil
}

func (f *fakeStore) RemoveRelation(_ context.Context, kind repository.RelationKind, userID, recipeID string) error {
	key := relKey(kind, userID, recipeID)
	if !f.relations[key] {
		return apperror.ValidationFailed("recipe", fmt.Sprintf("the recipe is not in %s", kind))
	}
	delete(f.relations, key)
	return nil
}

func (f *fakeStore) RelationExists(_ context.Context, kind repository.RelationKind, userID, recipeID string) (bool, error) {
	return f.relations[relKey(kind, userID, recipeID)], nil
}

func (f *fakeStore) CartLines(_ context.Context, userID string) ([]model.CartLine, error) {
	var recipeIDs []string
	for key := range f.relations {
		prefix := string(repository.KindShoppingCart) + "|" + userID + "|"
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			recipeIDs = append(recipeIDs, key[len(prefix):])
		}
	}
	sort.Strings(recipeIDs)
	var lines []model.CartLine
	for _, recipeID := range recipeIDs {
		for _, line := range f.recipeLines[recipeID] {
			ing := f.ingredients[line.ID]
			lines = append(lines, model.CartLine{
				Name:   ing.Name,
				Unit:   ing.MeasurementUnit,
				Amount: line.Amount,
			})
		}
	}
	return lines, nil
}

// --- SubscriptionRepository ---

func (f *fakeStore) AddSubscription(_ context.Context, followerID, followeeID string) error {
	key := followerID + "|" + followeeID
	if f.subs[key] {
		return apperror.Conflict("you are already subscribed to this user")
	}
	f.subs[key] = true
	return nil
}

func (f *fakeStore) RemoveSubscription(_ context.Context, followerID, followeeID string) error {
	key := followerID + "|" + followeeID
	if !f.subs[key] {
		return apperror.ValidationFailed("followee", "you are not subscribed to this user")
	}
	delete(f.subs, key)
	return nil
}

func (f *fakeStore) SubscriptionExists(_ context.Context, followerID, followeeID string) (bool, error) {
	return f.subs[followerID+"|"+followeeID], nil
}

func (f *fakeStore) ListSubscriptions(_ context.Context, followerID string, opts repository.ListOptions) ([]model.SubscriptionEntry, int, error) {
	var entries []model.SubscriptionEntry
	for key := range f.subs {
		prefix := followerID + "|"
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			followee := f.users[key[len(prefix):]]
			count, _ := f.CountByAuthor(context.Background(), followee.ID)
			entries = append(entries, model.SubscriptionEntry{
				Profile:      model.ProfileOf(followee, true),
				RecipesCount: count,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	return entries, len(entries), nil
}

var (
	_ repository.UserRepository         = (*fakeStore)(nil)
	_ repository.TagRepository          = (*fakeStore)(nil)
	_ repository.IngredientRepository   = (*fakeStore)(nil)
	_ repository.RecipeRepository       = (*fakeStore)(nil)
	_ repository.RelationRepository     = (*fakeStore)(nil)
	_ repository.SubscriptionRepository = (*fakeStore)(nil)
)
