package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

// User is a registered account.  PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRepo keeps users under "user:<id>" and an email index under
// "email:<email>".  The mutex serialises index updates within the process.
type UserRepo struct {
	store Store
	mu    sync.Mutex
}

func NewUserRepo(store Store) *UserRepo { return &UserRepo{store: store} }

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userKey(id string) string     { return "user:" + id }
func emailKey(email string) string { return "email:" + NormalizeEmail(email) }

// Create stores u.  ErrConflict is returned when the email is taken.
func (r *UserRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = NormalizeEmail(u.Email)
	if err := r.claimEmail(ctx, u.Email, u.ID); err != nil {
		return err
	}
	return r.store.Set(ctx, userKey(u.ID), u)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	var id string
	if err := r.store.Get(ctx, emailKey(email), &id); err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.store.Get(ctx, userKey(id), &u)
	return u, err
}

// Update replaces the stored user.  When the email changes the index is
// moved, failing with ErrConflict if another account owns the new address.
func (r *UserRepo) Update(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Email != old.Email {
		if err := r.claimEmail(ctx, u.Email, u.ID); err != nil {
			return err
		}
		if err := r.store.Remove(ctx, emailKey(old.Email)); err != nil {
			return err
		}
	}
	return r.store.Set(ctx, userKey(u.ID), u)
}

func (r *UserRepo) claimEmail(ctx context.Context, email, id string) error {
	var owner string
	found, err := GetOr(ctx, r.store, emailKey(email), &owner)
	if err != nil {
		return err
	}
	if found && owner != id {
		return ErrConflict
	}
	return r.store.Set(ctx, emailKey(email), id)
}
