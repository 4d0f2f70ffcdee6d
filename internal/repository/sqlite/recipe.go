package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

var _ repository.RecipeRepository = (*DB)(nil)

// CreateRecipe inserts the recipe row, its ingredient lines and its tag set
// in one transaction, so a failure partway through leaves no partial recipe.
//
// A duplicate (author, name) is reported as a conflict. The constraint is
// the backstop for the service-level pre-check, which can lose a race
// between two identical concurrent submissions.
func (db *DB) CreateRecipe(ctx context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error {
	recipe.ID = xid.New().String()
	recipe.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, author_id, name, image, text, cooking_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID,
		recipe.AuthorID,
		recipe.Name,
		recipe.Image,
		recipe.Text,
		recipe.CookingTime,
		recipe.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("a recipe with the name %s already exists", recipe.Name))
		}
		return fmt.Errorf("sqlite: inserting recipe %s: %w", recipe.Name, err)
	}

	if err := insertAssociations(ctx, tx, recipe.ID, lines, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// ReplaceRecipe updates the recipe row and rewrites every association:
// the existing junction rows are deleted and the submitted sets inserted,
// never diffed. A no-op update still rewrites every row.
func (db *DB) ReplaceRecipe(ctx context.Context, recipe *model.Recipe, lines []model.IngredientAmount, tagIDs []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE recipes SET name = ?, image = ?, text = ?, cooking_time = ?
		 WHERE id = ?`,
		recipe.Name,
		recipe.Image,
		recipe.Text,
		recipe.CookingTime,
		recipe.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("a recipe with the name %s already exists", recipe.Name))
		}
		return fmt.Errorf("sqlite: updating recipe %s: %w", recipe.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("recipe", recipe.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("sqlite: clearing ingredient lines for %s: %w", recipe.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recipe_tags WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("sqlite: clearing tags for %s: %w", recipe.ID, err)
	}

	if err := insertAssociations(ctx, tx, recipe.ID, lines, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// insertAssociations bulk-inserts the junction rows for one recipe inside an
// open transaction. Multi-row VALUES keeps it to one statement per table.
func insertAssociations(ctx context.Context, tx *sql.Tx, recipeID string, lines []model.IngredientAmount, tagIDs []string) error {
	if len(lines) > 0 {
		placeholders := make([]string, 0, len(lines))
		args := make([]any, 0, len(lines)*3)
		for _, line := range lines {
			placeholders = append(placeholders, "(?, ?, ?)")
			args = append(args, recipeID, line.ID, line.Amount)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES `+
				strings.Join(placeholders, ", "),
			args...,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting ingredient lines for %s: %w", recipeID, err)
		}
	}

	if len(tagIDs) > 0 {
		placeholders := make([]string, 0, len(tagIDs))
		args := make([]any, 0, len(tagIDs)*2)
		for _, tagID := range tagIDs {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, recipeID, tagID)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES `+
				strings.Join(placeholders, ", "),
			args...,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting tags for %s: %w", recipeID, err)
		}
	}

	return nil
}

// DeleteRecipe removes the recipe; junction rows, favorites and cart entries
// cascade.
func (db *DB) DeleteRecipe(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("recipe", id)
	}
	return nil
}

// GetRecipe returns the stored form, used for ownership checks and updates.
func (db *DB) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var (
		r    model.Recipe
		hash sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, author_id, name, image, text, cooking_time, short_hash, created_at
		 FROM recipes WHERE id = ?`, id,
	).Scan(&r.ID, &r.AuthorID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &hash, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %s: %w", id, err)
	}
	r.ShortHash = hash.String
	return &r, nil
}

// recipeDetailColumns selects the detail shape in one pass. The three
// placeholders are all the viewer ID; an empty viewer matches no rows, so
// every flag reads false for anonymous requests.
const recipeDetailColumns = `
	r.id, r.name, r.image, r.text, r.cooking_time,
	u.id, u.username, u.email, u.first_name, u.last_name, u.avatar,
	EXISTS (SELECT 1 FROM favorites f
	        WHERE f.user_id = ? AND f.recipe_id = r.id),
	EXISTS (SELECT 1 FROM shopping_cart c
	        WHERE c.user_id = ? AND c.recipe_id = r.id),
	EXISTS (SELECT 1 FROM subscriptions s
	        WHERE s.follower_id = ? AND s.followee_id = u.id)`

func scanRecipeDetail(scanner interface{ Scan(...any) error }) (*model.RecipeDetail, error) {
	var d model.RecipeDetail
	err := scanner.Scan(
		&d.ID, &d.Name, &d.Image, &d.Text, &d.CookingTime,
		&d.Author.ID, &d.Author.Username, &d.Author.Email,
		&d.Author.FirstName, &d.Author.LastName, &d.Author.Avatar,
		&d.IsFavorited, &d.IsInShoppingCart, &d.Author.IsSubscribed,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetRecipeDetail returns the read-optimized shape with nested ingredients,
// tags and the viewer-relative flags. viewerID may be empty for anonymous
// viewers.
func (db *DB) GetRecipeDetail(ctx context.Context, id, viewerID string) (*model.RecipeDetail, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recipeDetailColumns+`
		 FROM recipes r JOIN users u ON u.id = r.author_id
		 WHERE r.id = ?`,
		viewerID, viewerID, viewerID, id,
	)
	detail, err := scanRecipeDetail(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe detail %s: %w", id, err)
	}

	if err := db.loadAssociations(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// loadAssociations fills the nested ingredient and tag lists of one detail.
func (db *DB) loadAssociations(ctx context.Context, detail *model.RecipeDetail) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = ?
		 ORDER BY ri.rowid`,
		detail.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading ingredient lines for %s: %w", detail.ID, err)
	}
	defer rows.Close()

	detail.Ingredients = []model.IngredientLine{}
	for rows.Next() {
		var line model.IngredientLine
		if err := rows.Scan(&line.ID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			return fmt.Errorf("sqlite: scanning ingredient line: %w", err)
		}
		detail.Ingredients = append(detail.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating ingredient lines: %w", err)
	}

	tagRows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.name, t.slug
		 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = ?
		 ORDER BY t.name`,
		detail.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading tags for %s: %w", detail.ID, err)
	}
	defer tagRows.Close()

	detail.Tags = []model.Tag{}
	for tagRows.Next() {
		var t model.Tag
		if err := tagRows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return fmt.Errorf("sqlite: scanning tag: %w", err)
		}
		detail.Tags = append(detail.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return nil
}

// ListRecipes returns recipe details newest-first, filtered per the list
// parameters, plus the total matching count for the pagination envelope.
func (db *DB) ListRecipes(ctx context.Context, filter repository.RecipeFilter) ([]model.RecipeDetail, int, error) {
	var (
		where     []string
		whereArgs []any
	)

	if filter.AuthorID != "" {
		where = append(where, "r.author_id = ?")
		whereArgs = append(whereArgs, filter.AuthorID)
	}
	if filter.Name != "" {
		where = append(where, "r.name LIKE ? || '%'")
		whereArgs = append(whereArgs, filter.Name)
	}
	if filter.FavoritedBy != "" {
		where = append(where,
			"EXISTS (SELECT 1 FROM favorites ff WHERE ff.user_id = ? AND ff.recipe_id = r.id)")
		whereArgs = append(whereArgs, filter.FavoritedBy)
	}
	if filter.InCartOf != "" {
		where = append(where,
			"EXISTS (SELECT 1 FROM shopping_cart cc WHERE cc.user_id = ? AND cc.recipe_id = r.id)")
		whereArgs = append(whereArgs, filter.InCartOf)
	}
	if len(filter.TagSlugs) > 0 {
		placeholders := make([]string, len(filter.TagSlugs))
		for i, slug := range filter.TagSlugs {
			placeholders[i] = "?"
			whereArgs = append(whereArgs, slug)
		}
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			 WHERE rt.recipe_id = r.id AND t.slug IN (%s))`,
			strings.Join(placeholders, ", ")))
	}

	whereClause := "1=1"
	if len(where) > 0 {
		whereClause = strings.Join(where, " AND ")
	}

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes r WHERE `+whereClause,
		whereArgs...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting recipes: %w", err)
	}

	limit, offset := clampPage(filter.ListOptions)

	// Placeholders bind in query order: three viewer IDs for the detail
	// columns, then the filter, then LIMIT/OFFSET.
	args := []any{filter.ViewerID, filter.ViewerID, filter.ViewerID}
	args = append(args, whereArgs...)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+recipeDetailColumns+`
		 FROM recipes r JOIN users u ON u.id = r.author_id
		 WHERE `+whereClause+`
		 ORDER BY r.created_at DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing recipes: %w", err)
	}
	defer rows.Close()

	details := make([]model.RecipeDetail, 0, limit)
	for rows.Next() {
		detail, err := scanRecipeDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}
		details = append(details, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating recipes: %w", err)
	}

	for i := range details {
		if err := db.loadAssociations(ctx, &details[i]); err != nil {
			return nil, 0, err
		}
	}

	return details, total, nil
}

func (db *DB) ExistsByAuthorAndName(ctx context.Context, authorID, name string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipes WHERE author_id = ? AND name = ?)`,
		authorID, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking recipe name: %w", err)
	}
	return exists, nil
}

// SetShortHash stores a freshly minted short-link token. A collision with an
// existing token is a conflict the caller may retry with a new token.
func (db *DB) SetShortHash(ctx context.Context, id, hash string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE recipes SET short_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("short link token collision")
		}
		return fmt.Errorf("sqlite: setting short hash for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("recipe", id)
	}
	return nil
}

func (db *DB) GetIDByShortHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM recipes WHERE short_hash = ?`, hash,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("short link", hash)
		}
		return "", fmt.Errorf("sqlite: resolving short hash %s: %w", hash, err)
	}
	return id, nil
}

func (db *DB) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE author_id = ?`, authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting recipes for %s: %w", authorID, err)
	}
	return count, nil
}

// SummariesByAuthor returns the author's newest recipes in compact form.
// limit <= 0 means no limit.
func (db *DB) SummariesByAuthor(ctx context.Context, authorID string, limit int) ([]model.RecipeSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, image, cooking_time FROM recipes
		 WHERE author_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		authorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recipes for %s: %w", authorID, err)
	}
	defer rows.Close()

	summaries := []model.RecipeSummary{}
	for rows.Next() {
		var s model.RecipeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.CookingTime); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recipe summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipe summaries: %w", err)
	}
	return summaries, nil
}
