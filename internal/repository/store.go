package repository

import (
	"context"
	"encoding/json"
	"errors"
)

// Store is a JSON key-value store.  Get decodes the stored document into
// dest and returns ErrNotFound when the key is absent.  Set replaces the
// whole document.  Remove is idempotent.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// GetOr loads key into dest and reports whether a value was found.  A
// missing key is not an error; dest is left untouched in that case.
func GetOr(ctx context.Context, s Store, key string, dest any) (bool, error) {
	err := s.Get(ctx, key, dest)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Scoped prefixes every key with ns + ":" before delegating, so independent
// owners (one per browser session, one per user) can share a backend.
func Scoped(s Store, ns string) Store {
	return scoped{inner: s, ns: ns}
}

type scoped struct {
	inner Store
	ns    string
}

func (s scoped) key(k string) string { return s.ns + ":" + k }

func (s scoped) Get(ctx context.Context, key string, dest any) error {
	return s.inner.Get(ctx, s.key(key), dest)
}

func (s scoped) Set(ctx context.Context, key string, value any) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.key(key))
}

func encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

func decode(raw []byte, dest any) error {
	return json.Unmarshal(raw, dest)
}
