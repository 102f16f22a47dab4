package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"roombooking/internal/db"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(d *DB) repository.UserRepository {
	return &userRepository{db: d}
}

func (r *userRepository) Create(_ context.Context, profile *db.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, p := range r.db.profiles {
		if strings.EqualFold(p.Email, profile.Email) {
			return fmt.Errorf("profile %s: %w", profile.Email, apperrors.ErrEmailTaken)
		}
	}
	profile.CreatedAt = r.db.now()
	stored := *profile
	stored.Role = ""
	r.db.profiles[profile.ID] = stored
	r.db.roles[profile.ID] = []string{profile.Role}
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*db.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.profiles {
		if strings.EqualFold(p.Email, email) {
			p.Role = r.db.effectiveRole(p.ID)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", email, apperrors.ErrNotFound)
}

func (r *userRepository) GetByID(_ context.Context, id string) (*db.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, apperrors.ErrNotFound)
	}
	p.Role = r.db.effectiveRole(p.ID)
	return &p, nil
}

func (r *userRepository) List(_ context.Context) ([]db.Profile, error) {
	return r.filter(func(db.Profile) bool { return true }), nil
}

func (r *userRepository) ListByRole(_ context.Context, roles ...string) ([]db.Profile, error) {
	return r.filter(func(p db.Profile) bool { return contains(roles, p.Role) }), nil
}

func (r *userRepository) filter(keep func(db.Profile) bool) []db.Profile {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []db.Profile{}
	for _, p := range r.db.profiles {
		p.Role = r.db.effectiveRole(p.ID)
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func (r *userRepository) ReplaceRole(_ context.Context, userID, role string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.profiles[userID]; !ok {
		return fmt.Errorf("profile %s: %w", userID, apperrors.ErrNotFound)
	}
	r.db.roles[userID] = []string{role}
	return nil
}
