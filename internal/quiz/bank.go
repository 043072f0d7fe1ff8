package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
)

// DefaultCategory is served when a requested category has no questions.
const DefaultCategory = "html"

// ErrDataLoad is returned when the question bank cannot be read or holds no
// usable questions for the requested category or the default one.
var ErrDataLoad = errors.New("question bank unavailable")

// Question is an immutable multiple-choice question.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// valid reports whether the correct index points at an option.
func (q Question) valid() bool {
	return q.Text != "" && len(q.Options) > 1 && q.Correct >= 0 && q.Correct < len(q.Options)
}

// Bank maps a category name to its questions in file order.
type Bank map[string][]Question

// LoadBank reads a JSON question bank of the form
// {"html": [{"question": "...", "options": [...], "correct": 0}], ...}.
// Questions whose correct index does not address an option are skipped.
func LoadBank(path string) (Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	return ParseBank(raw)
}

// ParseBank decodes a bank from JSON bytes.
func ParseBank(raw []byte) (Bank, error) {
	var parsed map[string][]Question
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	bank := make(Bank, len(parsed))
	for cat, qs := range parsed {
		kept := make([]Question, 0, len(qs))
		for _, q := range qs {
			if q.valid() {
				kept = append(kept, q)
			}
		}
		bank[cat] = kept
	}
	return bank, nil
}

// Categories lists, in name order, the categories that have at least one
// question.
func (b Bank) Categories() []string {
	out := make([]string, 0, len(b))
	for cat, qs := range b {
		if len(qs) > 0 {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve returns the category actually served for cat together with its
// questions.  Unknown or empty categories resolve to DefaultCategory.
func (b Bank) Resolve(cat string) (string, []Question, error) {
	if qs := b[cat]; len(qs) > 0 {
		return cat, qs, nil
	}
	if qs := b[DefaultCategory]; len(qs) > 0 {
		return DefaultCategory, qs, nil
	}
	return "", nil, fmt.Errorf("%w: no questions for %q", ErrDataLoad, cat)
}

// Shuffle returns a Fisher-Yates permutation of qs.  The input is not
// modified.
func Shuffle(qs []Question, rng *rand.Rand) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
