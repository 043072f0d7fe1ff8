// Package prefs stores small per-visitor preferences such as the colour
// theme.
package prefs

import (
	"context"
	"encoding/json"

	"github.com/iliyamo/cineverse/internal/repository"
)

const (
	prefsKey = "cineverse_prefs"
	themeKey = "theme"
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when nothing valid is stored.
const DefaultTheme = ThemeLight

// ParseTheme returns t when it names a known theme.
func ParseTheme(t string) (Theme, bool) {
	switch Theme(t) {
	case ThemeLight, ThemeDark:
		return Theme(t), true
	}
	return "", false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Prefs is a visitor's preference map.  The store should be scoped to the
// visitor.
type Prefs struct {
	store repository.Store
}

func New(store repository.Store) *Prefs { return &Prefs{store: store} }

// All returns every stored preference.
func (p *Prefs) All(ctx context.Context) (map[string]json.RawMessage, error) {
	m := map[string]json.RawMessage{}
	if _, err := repository.GetOr(ctx, p.store, prefsKey, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get decodes the preference key into dest and reports whether it was set.
func (p *Prefs) Get(ctx context.Context, key string, dest any) (bool, error) {
	m, err := p.All(ctx)
	if err != nil {
		return false, err
	}
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

// Set stores value under key, keeping the other preferences.
func (p *Prefs) Set(ctx context.Context, key string, value any) error {
	m, err := p.All(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return p.store.Set(ctx, prefsKey, m)
}

// Theme returns the stored theme, or DefaultTheme.
func (p *Prefs) Theme(ctx context.Context) (Theme, error) {
	var s string
	if _, err := p.Get(ctx, themeKey, &s); err != nil {
		return DefaultTheme, err
	}
	if t, ok := ParseTheme(s); ok {
		return t, nil
	}
	return DefaultTheme, nil
}

// SetTheme stores t.
func (p *Prefs) SetTheme(ctx context.Context, t Theme) error {
	return p.Set(ctx, themeKey, string(t))
}

// ToggleTheme flips the theme and returns the new one.
func (p *Prefs) ToggleTheme(ctx context.Context) (Theme, error) {
	cur, err := p.Theme(ctx)
	if err != nil {
		return cur, err
	}
	next := cur.Toggle()
	return next, p.SetTheme(ctx, next)
}
