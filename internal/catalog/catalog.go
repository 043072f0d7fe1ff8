// Package catalog loads the movies and theaters a visitor can book.  The
// catalog is read-only reference data supplied as a JSON file.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iliyamo/cineverse/internal/pricing"
)

// ErrDataLoad is returned when the catalog file cannot be read or parsed.
var ErrDataLoad = errors.New("catalog unavailable")

// ErrNotFound is returned for unknown movie or theater ids.
var ErrNotFound = errors.New("catalog entry not found")

// Movie is a bookable title.  Price is keyed by pricing format key.
type Movie struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Genre     string         `json:"genre,omitempty"`
	Duration  string         `json:"duration,omitempty"`
	Rating    float64        `json:"rating,omitempty"`
	Languages []string       `json:"languages,omitempty"`
	Formats   []string       `json:"formats,omitempty"`
	Poster    string         `json:"poster,omitempty"`
	Price     map[string]int `json:"price,omitempty"`
}

// Pricing returns the pricing view of the movie.
func (m Movie) Pricing() *pricing.Movie {
	return &pricing.Movie{ID: m.ID, Title: m.Title, Price: m.Price}
}

// Theater is a venue with its daily showtimes.
type Theater struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	City      string   `json:"city,omitempty"`
	Location  string   `json:"location,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	Showtimes []string `json:"showtimes,omitempty"`
}

// Catalog indexes movies and theaters by id.
type Catalog struct {
	movies   []Movie
	theaters []Theater
	byMovie  map[string]int
	byTheatr map[string]int
}

type file struct {
	Movies   []Movie   `json:"movies"`
	Theaters []Theater `json:"theaters"`
}

// Load reads a catalog JSON file of the form {"movies": [...], "theaters": [...]}.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	return Parse(raw)
}

// Parse decodes a catalog from JSON bytes.  Entries without an id are
// dropped; later duplicates replace earlier ones.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	return New(f.Movies, f.Theaters), nil
}

// New builds a catalog from in-memory data.
func New(movies []Movie, theaters []Theater) *Catalog {
	c := &Catalog{byMovie: map[string]int{}, byTheatr: map[string]int{}}
	for _, m := range movies {
		if m.ID == "" {
			continue
		}
		if i, ok := c.byMovie[m.ID]; ok {
			c.movies[i] = m
			continue
		}
		c.byMovie[m.ID] = len(c.movies)
		c.movies = append(c.movies, m)
	}
	for _, t := range theaters {
		if t.ID == "" {
			continue
		}
		if i, ok := c.byTheatr[t.ID]; ok {
			c.theaters[i] = t
			continue
		}
		c.byTheatr[t.ID] = len(c.theaters)
		c.theaters = append(c.theaters, t)
	}
	return c
}

// Movies returns all movies in file order.
func (c *Catalog) Movies() []Movie { return append([]Movie(nil), c.movies...) }

// Theaters returns all theaters in file order.
func (c *Catalog) Theaters() []Theater { return append([]Theater(nil), c.theaters...) }

// Movie looks up a movie by id.
func (c *Catalog) Movie(id string) (Movie, error) {
	i, ok := c.byMovie[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return c.movies[i], nil
}

// Theater looks up a theater by id.
func (c *Catalog) Theater(id string) (Theater, error) {
	i, ok := c.byTheatr[id]
	if !ok {
		return Theater{}, ErrNotFound
	}
	return c.theaters[i], nil
}

// Search returns up to limit movies whose title contains q, ignoring case.
// Titles starting with q are listed first.
func (c *Catalog) Search(q string, limit int) []Movie {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []Movie{}
	}
	type hit struct {
		m      Movie
		prefix bool
		pos    int
	}
	var hits []hit
	for i, m := range c.movies {
		title := strings.ToLower(m.Title)
		if idx := strings.Index(title, q); idx >= 0 {
			hits = append(hits, hit{m: m, prefix: idx == 0, pos: i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		return hits[i].pos < hits[j].pos
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Movie, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.m)
	}
	return out
}
