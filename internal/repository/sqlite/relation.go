package sqlite

import (
	"context"
	"fmt"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

var _ repository.RelationRepository = (*DB)(nil)

// relationTables whitelists the membership tables; the kind never reaches the
// SQL text unvalidated.
var relationTables = map[repository.RelationKind]string{
	repository.KindFavorite:     "favorites",
	repository.KindShoppingCart: "shopping_cart",
}

func relationTable(kind repository.RelationKind) (string, error) {
	table, ok := relationTables[kind]
	if !ok {
		return "", fmt.Errorf("sqlite: unknown relation kind %q", kind)
	}
	return table, nil
}

// AddRelation inserts the (user, recipe) membership row. Membership is a
// set: a duplicate insert is a conflict, not a silent no-op.
func (db *DB) AddRelation(ctx context.Context, kind repository.RelationKind, userID, recipeID string) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, recipe_id) VALUES (?, ?)`,
		userID, recipeID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("the recipe has already been added to %s", kind))
		}
		return fmt.Errorf("sqlite: adding %s row: %w", kind, err)
	}
	return nil
}

// RemoveRelation deletes the membership row. A missing row is a client
// error, not a 404.
func (db *DB) RemoveRelation(ctx context.Context, kind repository.RelationKind, userID, recipeID string) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s row: %w", kind, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.ValidationFailed("recipe",
			fmt.Sprintf("the recipe is not in %s", kind))
	}
	return nil
}

func (db *DB) RelationExists(ctx context.Context, kind repository.RelationKind, userID, recipeID string) (bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = ? AND recipe_id = ?)`,
		userID, recipeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s row: %w", kind, err)
	}
	return exists, nil
}

// CartLines returns the raw ingredient rows across every recipe in the
// user's cart, ordered by cart insertion then junction order. The service
// aggregates them; keeping the order stable makes "last-seen unit wins"
// deterministic.
func (db *DB) CartLines(ctx context.Context, userID string) ([]model.CartLine, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.name, i.measurement_unit, ri.amount
		 FROM shopping_cart sc
		 JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sc.user_id = ?
		 ORDER BY sc.created_at, sc.recipe_id, ri.rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.Name, &line.Unit, &line.Amount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cart lines: %w", err)
	}
	return lines, nil
}
