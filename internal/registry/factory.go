package registry

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise the
// JSON file store.
func NewStore(ctx context.Context, databaseURL, usersFile string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFileStore(usersFile), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
