package memory

import (
	"context"
	"sort"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/id"
	"stockpos/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo is the in-memory user store.
type UserRepo struct {
	store *Store
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.users[user.ID]
	if !ok {
		return apperror.NewNotFound("user", user.ID)
	}
	cp := *user
	cp.Version = current.Version + 1
	r.store.users[user.ID] = &cp
	user.Version = cp.Version
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*auth.User
	for _, u := range r.store.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}
