package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore mirrors the user set into PostgreSQL. The whole set is
// rewritten in one transaction per mutation, matching the document-rewrite
// semantics of the file store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assistant_users (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			mood TEXT NOT NULL,
			permissions TEXT[] NOT NULL DEFAULT '{}',
			trustable BOOLEAN NOT NULL DEFAULT FALSE,
			position INT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assistant_users_position ON assistant_users (position);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, role, mood, permissions, trustable
		 FROM assistant_users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Mood, &u.Permissions, &u.Trustable); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Save(ctx context.Context, users []User) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM assistant_users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for i, u := range users {
		_, err := tx.Exec(ctx,
			`INSERT INTO assistant_users (id, name, role, mood, permissions, trustable, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.Name, u.Role, u.Mood, u.Permissions, u.Trustable, i)
		if err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
