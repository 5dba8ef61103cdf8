package registry

import "context"

// Store is the durable mirror of the user set. The full set is loaded once at
// process start and rewritten whole on every mutation (write-through).
type Store interface {
	Load(ctx context.Context) ([]User, error)
	Save(ctx context.Context, users []User) error
	Close() error
}
