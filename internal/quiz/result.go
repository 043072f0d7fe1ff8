package quiz

import (
	"context"
	"strings"
	"time"
)

// Result summarises a finished session.
type Result struct {
	Category  string    `json:"category"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Accuracy  int       `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// ResultSink receives finished results, typically a ranking board.
type ResultSink interface {
	Record(ctx context.Context, r Result) error
}

// NewResult computes accuracy as score/total in percent, rounded half up.
// A zero total gives zero accuracy.
func NewResult(category string, score, total int, at time.Time) Result {
	acc := 0
	if total > 0 {
		acc = (score*200 + total) / (2 * total)
	}
	return Result{Category: category, Score: score, Total: total, Accuracy: acc, Timestamp: at}
}

// Grade is the display letter for an accuracy percentage.
func Grade(accuracy int) string {
	switch {
	case accuracy >= 90:
		return "A+"
	case accuracy >= 80:
		return "A"
	case accuracy >= 70:
		return "B+"
	case accuracy >= 60:
		return "B"
	case accuracy >= 50:
		return "C"
	default:
		return "D"
	}
}

// Badge is the short status label shown next to a result.
func Badge(accuracy int) string {
	switch {
	case accuracy >= 80:
		return "EXCELLENT WORK"
	case accuracy >= 60:
		return "GOOD JOB"
	default:
		return "KEEP PRACTICING"
	}
}

// Feedback is the longer encouragement message for a result.
func Feedback(accuracy int) string {
	switch {
	case accuracy == 100:
		return "Perfect score! You are a true master!"
	case accuracy >= 80:
		return "Great job! You have excellent knowledge!"
	case accuracy >= 40:
		return "Keep practicing! You can do better!"
	default:
		return "Don't give up! Review the basics and try again!"
	}
}

var categoryNames = map[string]string{
	"html":       "HTML5",
	"css":        "CSS3",
	"javascript": "JavaScript",
}

// DisplayName returns the human label for a category.
func DisplayName(category string) string {
	if n, ok := categoryNames[category]; ok {
		return n
	}
	return strings.ToUpper(category)
}
