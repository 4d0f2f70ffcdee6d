package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/aleksej-tulko/foodgram/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
	}
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return u
}

func createTestTag(t *testing.T, db *DB, name string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Slug: name}
	if err := db.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("creating tag %s: %v", name, err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *DB, name, unit string) *model.Ingredient {
	t.Helper()
	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.CreateIngredient(context.Background(), ing); err != nil {
		t.Fatalf("creating ingredient %s: %v", name, err)
	}
	return ing
}

func createTestRecipe(t *testing.T, db *DB, authorID, name string, lines []model.IngredientAmount, tagIDs []string) *model.Recipe {
	t.Helper()
	r := &model.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "media/recipes/" + name + ".png",
		Text:        "Cook it.",
		CookingTime: 30,
	}
	if err := db.CreateRecipe(context.Background(), r, lines, tagIDs); err != nil {
		t.Fatalf("creating recipe %s: %v", name, err)
	}
	return r
}

func countRows(t *testing.T, db *DB, table string, args ...any) int {
	t.Helper()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if len(args) > 0 {
		query += " WHERE recipe_id = ?"
	}
	var n int
	if err := db.conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("counting rows in %s: %v", table, err)
	}
	return n
}
