package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
	"github.com/aleksej-tulko/foodgram/internal/model"
	"github.com/aleksej-tulko/foodgram/internal/repository"
)

var _ repository.SubscriptionRepository = (*DB)(nil)

func (db *DB) AddSubscription(ctx context.Context, followerID, followeeID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO subscriptions (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		followerID, followeeID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("you are already subscribed to this user")
		}
		if isCheckViolation(err) {
			return apperror.ValidationFailed("followee", "you cannot subscribe to yourself")
		}
		return fmt.Errorf("sqlite: adding subscription: %w", err)
	}
	return nil
}

func (db *DB) RemoveSubscription(ctx context.Context, followerID, followeeID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.ValidationFailed("followee", "you are not subscribed to this user")
	}
	return nil
}

func (db *DB) SubscriptionExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking subscription: %w", err)
	}
	return exists, nil
}

// ListSubscriptions pages through the follower's followees ordered by
// username, each carrying the followee's total recipe count. The service
// attaches recipe previews afterwards.
func (db *DB) ListSubscriptions(ctx context.Context, followerID string, opts repository.ListOptions) ([]model.SubscriptionEntry, int, error) {
	limit, offset := clampPage(opts)

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE follower_id = ?`,
		followerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting subscriptions: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.avatar,
		        (SELECT COUNT(*) FROM recipes r WHERE r.author_id = u.id)
		 FROM subscriptions s
		 JOIN users u ON u.id = s.followee_id
		 WHERE s.follower_id = ?
		 ORDER BY u.username
		 LIMIT ? OFFSET ?`,
		followerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing subscriptions: %w", err)
	}
	defer rows.Close()

	entries := make([]model.SubscriptionEntry, 0, limit)
	for rows.Next() {
		var e model.SubscriptionEntry
		if err := rows.Scan(
			&e.ID, &e.Username, &e.Email, &e.FirstName, &e.LastName, &e.Avatar,
			&e.RecipesCount,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning subscription row: %w", err)
		}
		// Every row is an edge the follower owns.
		e.IsSubscribed = true
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating subscriptions: %w", err)
	}

	return entries, total, nil
}
