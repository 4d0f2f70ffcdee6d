package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

var (
	_ repository.TagRepository        = (*DB)(nil)
	_ repository.IngredientRepository = (*DB)(nil)
)

// Tag and ingredient rows are reference data: created by the seed command or
// an administrator, read-only through the public API.

func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.Slug,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("tag %q already exists", tag.Name))
		}
		return fmt.Errorf("sqlite: inserting tag %s: %w", tag.Name, err)
	}
	return nil
}

func (db *DB) GetTagByID(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, slug FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}
	return &t, nil
}

func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

func (db *DB) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	ingredient.ID = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, measurement_unit) VALUES (?, ?, ?)`,
		ingredient.ID, ingredient.Name, ingredient.MeasurementUnit,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf(
				"ingredient %q (%s) already exists", ingredient.Name, ingredient.MeasurementUnit))
		}
		return fmt.Errorf("sqlite: inserting ingredient %s: %w", ingredient.Name, err)
	}
	return nil
}

func (db *DB) GetIngredientByID(ctx context.Context, id string) (*model.Ingredient, error) {
	var i model.Ingredient
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
	).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("ingredient", id)
		}
		return nil, fmt.Errorf("sqlite: getting ingredient %s: %w", id, err)
	}
	return &i, nil
}

// SearchIngredients lists ingredients by name. With a search term, names
// starting with the term sort before names merely containing it, both groups
// alphabetical.
func (db *DB) SearchIngredients(ctx context.Context, name string) ([]model.Ingredient, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if name == "" {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT id, name, measurement_unit FROM ingredients ORDER BY name`)
	} else {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT id, name, measurement_unit FROM ingredients
			 WHERE name LIKE '%' || ? || '%'
			 ORDER BY CASE WHEN name LIKE ? || '%' THEN 0 ELSE 1 END, name`,
			name, name,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.Ingredient
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ingredients: %w", err)
	}
	return ingredients, nil
}
