// Package sqlite implements the repository interfaces on SQLite via the pure
// Go modernc.org/sqlite driver. Use ":memory:" for throwaway databases in
// tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, enables WAL and foreign keys, and runs
// the schema migration.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pool connection to ":memory:" gets its own empty database, so
	// the pool must stay at one connection for the schema to be visible.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write, which a web server needs.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the recipe cascades
	// depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to run
// on every start.
//
// Uniqueness rules enforced here are the race backstop for the pre-checks in
// the service layer: (author_id, name) on recipes, the composite primary keys
// on the membership tables, and the self-follow check on subscriptions.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_staff      INTEGER NOT NULL DEFAULT 0,
			is_superuser  INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS ingredients (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			measurement_unit TEXT NOT NULL,
			UNIQUE (name, measurement_unit)
		);
		CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name);

		CREATE TABLE IF NOT EXISTS recipes (
			id           TEXT PRIMARY KEY,
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			image        TEXT NOT NULL,
			text         TEXT NOT NULL,
			cooking_time INTEGER NOT NULL,
			short_hash   TEXT UNIQUE,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (author_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes(author_id);
		CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);

		CREATE TABLE IF NOT EXISTS recipe_ingredients (
			recipe_id     TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			ingredient_id TEXT NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
			amount        REAL NOT NULL CHECK (amount > 0),
			PRIMARY KEY (recipe_id, ingredient_id)
		);

		CREATE TABLE IF NOT EXISTS recipe_tags (
			recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			tag_id    TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (recipe_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS favorites (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, recipe_id)
		);

		CREATE TABLE IF NOT EXISTS shopping_cart (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, recipe_id)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			followee_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id),
			CHECK (follower_id <> followee_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// the driver. modernc.org/sqlite surfaces constraint errors as formatted
// strings, so this matches on the stable message prefix SQLite itself emits.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isCheckViolation reports whether err is a CHECK constraint failure.
func isCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
