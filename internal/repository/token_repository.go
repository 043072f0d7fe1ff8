package repository

import (
	"context"
	"time"
)

type refreshRecord struct {
	UserID    string     `json:"user_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// TokenRepo persists refresh token hashes under "refresh:<hash>" and keeps
// a per-user list of hashes so every session can be revoked at once.
type TokenRepo struct {
	store Store
	now   func() time.Time
}

func NewTokenRepo(store Store) *TokenRepo { return &TokenRepo{store: store, now: time.Now} }

func refreshKey(hash string) string    { return "refresh:" + hash }
func userTokensKey(uid string) string { return "refresh_user:" + uid }

// StoreRefresh records a refresh token hash.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	if err := r.store.Set(ctx, refreshKey(tokenHash), refreshRecord{UserID: userID, ExpiresAt: exp}); err != nil {
		return err
	}
	hashes := []string{}
	if _, err := GetOr(ctx, r.store, userTokensKey(userID), &hashes); err != nil {
		return err
	}
	return r.store.Set(ctx, userTokensKey(userID), append(r.live(ctx, hashes), tokenHash))
}

// live drops hashes whose records are gone, expired or revoked.
func (r *TokenRepo) live(ctx context.Context, hashes []string) []string {
	out := hashes[:0]
	for _, h := range hashes {
		if _, err := r.ValidateRefresh(ctx, h); err == nil {
			out = append(out, h)
		}
	}
	return out
}

// ValidateRefresh returns the owner of a non-revoked, non-expired token.
// ErrNotFound covers every invalid case.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var rec refreshRecord
	if err := r.store.Get(ctx, refreshKey(tokenHash), &rec); err != nil {
		return "", err
	}
	if rec.RevokedAt != nil || r.now().UTC().After(rec.ExpiresAt) {
		return "", ErrNotFound
	}
	return rec.UserID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	var rec refreshRecord
	found, err := GetOr(ctx, r.store, refreshKey(tokenHash), &rec)
	if err != nil || !found || rec.RevokedAt != nil {
		return err
	}
	at := r.now().UTC()
	rec.RevokedAt = &at
	return r.store.Set(ctx, refreshKey(tokenHash), rec)
}

// RevokeAllForUser revokes all the user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	hashes := []string{}
	if _, err := GetOr(ctx, r.store, userTokensKey(userID), &hashes); err != nil {
		return err
	}
	for _, h := range hashes {
		if err := r.RevokeByHash(ctx, h); err != nil {
			return err
		}
	}
	return r.store.Remove(ctx, userTokensKey(userID))
}
