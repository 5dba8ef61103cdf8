package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrDuplicateID = errors.New("user id already exists")
)

// Registry is the authoritative in-memory view of all user records, loaded
// once at process start and written through to the durable store on every
// mutation. Mutations serialize through one mutex around the whole
// read-modify-persist sequence. A mutation is applied to a copy of the set
// first and only installed in memory after the durable write succeeds, so a
// failed write never leaves memory and storage divergent.
type Registry struct {
	mu    sync.RWMutex
	users []User
	store Store
}

func NewRegistry(ctx context.Context, store Store) (*Registry, error) {
	users, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user registry: %w", err)
	}
	return &Registry{users: users, store: store}, nil
}

// GetByID returns a copy of the record with the given id.
func (r *Registry) GetByID(id int64) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			return cloneUser(r.users[i]), true
		}
	}
	return User{}, false
}

// FindByName returns the first record whose name matches case-insensitively.
// Names are not unique; with duplicates the first in storage order wins.
func (r *Registry) FindByName(name string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if strings.EqualFold(r.users[i].Name, name) {
			return cloneUser(r.users[i]), true
		}
	}
	return User{}, false
}

// Create appends a new record and persists the set. Missing role and mood
// default to User/neutral. Duplicate ids are rejected: persisting one would
// silently break id-based lookup.
func (r *Registry) Create(ctx context.Context, u User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Mood == "" {
		u.Mood = MoodNeutral
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == u.ID {
			return fmt.Errorf("create user %d: %w", u.ID, ErrDuplicateID)
		}
	}

	next := cloneUsers(r.users)
	next = append(next, u)
	if err := r.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist user registry: %w", err)
	}
	r.users = next
	return nil
}

// Update applies the non-nil fields of p to the record with the given id and
// persists the whole set before the in-memory view changes.
func (r *Registry) Update(ctx context.Context, id int64, p Partial) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.users {
		if r.users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	next := cloneUsers(r.users)
	p.apply(&next[idx])
	if err := r.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist user registry: %w", err)
	}
	r.users = next
	return nil
}

// Delete removes every record with the given id and persists.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]User, 0, len(r.users))
	for i := range r.users {
		if r.users[i].ID != id {
			next = append(next, cloneUser(r.users[i]))
		}
	}
	if len(next) == len(r.users) {
		return ErrNotFound
	}

	if err := r.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist user registry: %w", err)
	}
	r.users = next
	return nil
}

// ListAll returns an independent snapshot of every record in storage order.
func (r *Registry) ListAll() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneUsers(r.users)
}

// IsTrustable reports whether the id belongs to a trusted identity.
// Unknown ids are untrusted.
func (r *Registry) IsTrustable(id int64) bool {
	u, ok := r.GetByID(id)
	return ok && u.Trustable
}

// GetRole returns the stored role, or User when the id is unknown.
func (r *Registry) GetRole(id int64) Role {
	if u, ok := r.GetByID(id); ok {
		return u.Role
	}
	return RoleUser
}

// GetMood returns the stored mood, or neutral when the id is unknown.
func (r *Registry) GetMood(id int64) Mood {
	if u, ok := r.GetByID(id); ok {
		return u.Mood
	}
	return MoodNeutral
}

func cloneUser(u User) User {
	c := u
	c.Permissions = append([]string(nil), u.Permissions...)
	return c
}

func cloneUsers(users []User) []User {
	out := make([]User, len(users))
	for i := range users {
		out[i] = cloneUser(users[i])
	}
	return out
}
