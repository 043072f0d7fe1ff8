package quiz_test

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/quiz"
)

func testBank() quiz.Bank {
	return quiz.Bank{
		"html": {
			{Text: "Which tag links a stylesheet?", Options: []string{"<style>", "<link>", "<css>", "<script>"}, Correct: 1},
			{Text: "Which attribute sets alt text?", Options: []string{"title", "src", "alt", "name"}, Correct: 2},
			{Text: "Which element is block-level?", Options: []string{"<div>", "<span>", "<a>", "<em>"}, Correct: 0},
		},
		"css": {
			{Text: "Which property sets text color?", Options: []string{"font", "color", "fill", "text"}, Correct: 1},
		},
	}
}

func started(t *testing.T, category string) *quiz.Session {
	t.Helper()
	s := quiz.NewSession().WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() })
	ev, err := s.Load(testBank(), category, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Equal(t, quiz.EventStarted, ev.Kind)
	return s
}

func correctOf(s *quiz.Session) int {
	v := s.View()
	for i, opt := range v.Options {
		for _, q := range testBank()[s.Category()] {
			if q.Text == v.Question && q.Options[q.Correct] == opt {
				return i
			}
		}
	}
	return -1
}

func TestLoad_ResetsState(t *testing.T) {
	s := started(t, "html")

	v := s.View()
	assert.Equal(t, quiz.PhaseInProgress, v.Phase)
	assert.Equal(t, "html", v.Category)
	assert.Equal(t, "HTML5", v.DisplayName)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, quiz.QuestionSeconds, v.TimeLeft)
	assert.False(t, v.Answered)
	assert.Equal(t, quiz.NoSelection, v.CorrectIndex, "correct answer hidden before answering")
}

func TestLoad_UnknownCategoryFallsBack(t *testing.T) {
	s := started(t, "rust")
	assert.Equal(t, quiz.DefaultCategory, s.Category())
}

func TestLoad_NoQuestions(t *testing.T) {
	s := quiz.NewSession()
	_, err := s.Load(quiz.Bank{"css": nil}, "css", rand.New(rand.NewPCG(1, 2)))

	assert.ErrorIs(t, err, quiz.ErrDataLoad)
	assert.Equal(t, quiz.PhaseLoading, s.Phase())
}

func TestSelectAnswer_Correct(t *testing.T) {
	s := started(t, "css")

	ev := s.SelectAnswer(1)

	assert.Equal(t, quiz.EventCorrect, ev.Kind)
	assert.Equal(t, 1, ev.CorrectIndex)
	assert.Equal(t, 1, s.Score())
	assert.True(t, s.Answered())
}

func TestSelectAnswer_IncorrectRevealsAnswer(t *testing.T) {
	s := started(t, "css")

	ev := s.SelectAnswer(3)

	assert.Equal(t, quiz.EventIncorrect, ev.Kind)
	assert.Equal(t, 3, ev.Selected)
	assert.Equal(t, 1, ev.CorrectIndex)
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 1, s.View().CorrectIndex)
}

func TestSelectAnswer_OnlyFirstCounts(t *testing.T) {
	s := started(t, "css")

	first := s.SelectAnswer(1)
	second := s.SelectAnswer(0)
	third := s.SelectAnswer(1)

	assert.Equal(t, quiz.EventCorrect, first.Kind)
	assert.Equal(t, quiz.EventIgnored, second.Kind)
	assert.Equal(t, quiz.EventIgnored, third.Kind)
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, 1, s.View().Selected)
}

func TestSelectAnswer_OutOfRangeIgnored(t *testing.T) {
	s := started(t, "css")

	assert.Equal(t, quiz.EventIgnored, s.SelectAnswer(-1).Kind)
	assert.Equal(t, quiz.EventIgnored, s.SelectAnswer(4).Kind)
	assert.False(t, s.Answered())
}

func TestTick_CountsDown(t *testing.T) {
	s := started(t, "css")

	ev := s.Tick()

	assert.Equal(t, quiz.EventTick, ev.Kind)
	assert.Equal(t, quiz.QuestionSeconds-1, ev.TimeLeft)
}

func TestTick_TimeoutAnswersWithoutScore(t *testing.T) {
	s := started(t, "css")

	var ev quiz.Event
	for i := 0; i < quiz.QuestionSeconds; i++ {
		ev = s.Tick()
	}

	assert.Equal(t, quiz.EventTimeout, ev.Kind)
	assert.Equal(t, 0, ev.TimeLeft)
	assert.Equal(t, quiz.NoSelection, ev.Selected)
	assert.Equal(t, 1, ev.CorrectIndex)
	assert.Equal(t, 2000, ev.AutoAdvanceMs)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"auto_advance_ms":2000`)
	assert.True(t, s.Answered())
	assert.Equal(t, 0, s.Score())

	assert.Equal(t, quiz.EventIgnored, s.Tick().Kind, "ticks after timeout are ignored")
	assert.Equal(t, quiz.EventIgnored, s.SelectAnswer(1).Kind, "late answers are ignored")
	assert.Equal(t, 0, s.Score())
}

func TestTick_IgnoredAfterAnswer(t *testing.T) {
	s := started(t, "css")
	s.Tick()
	s.SelectAnswer(0)

	ev := s.Tick()

	assert.Equal(t, quiz.EventIgnored, ev.Kind)
	assert.Equal(t, quiz.QuestionSeconds-1, s.TimeLeft())
}

func TestAdvance_RequiresAnswer(t *testing.T) {
	s := started(t, "html")

	assert.Equal(t, quiz.EventIgnored, s.Advance().Kind)
	assert.Equal(t, 0, s.Index())
}

func TestAdvance_ResetsCountdown(t *testing.T) {
	s := started(t, "html")
	s.Tick()
	s.Tick()
	s.SelectAnswer(0)

	ev := s.Advance()

	assert.Equal(t, quiz.EventNext, ev.Kind)
	assert.Equal(t, 1, ev.Index)
	assert.Equal(t, quiz.QuestionSeconds, ev.TimeLeft)
	assert.False(t, s.Answered())
	assert.Equal(t, quiz.NoSelection, s.View().Selected)
}

func TestFullRun_ProducesResult(t *testing.T) {
	s := started(t, "html")

	var ev quiz.Event
	for i := 0; i < 3; i++ {
		if i < 2 {
			s.SelectAnswer(correctOf(s))
		} else {
			for s.Tick().Kind != quiz.EventTimeout {
			}
		}
		ev = s.Advance()
	}

	require.Equal(t, quiz.EventFinished, ev.Kind)
	require.NotNil(t, ev.Result)
	assert.Equal(t, quiz.Result{
		Category:  "html",
		Score:     2,
		Total:     3,
		Accuracy:  67,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}, *ev.Result)
	assert.Equal(t, quiz.PhaseFinished, s.Phase())
	assert.Equal(t, quiz.EventIgnored, s.Advance().Kind)

	again := s.Finalize()
	assert.Equal(t, ev.Result, again.Result)
}

func TestTerminate(t *testing.T) {
	s := started(t, "html")

	ev := s.Terminate()

	assert.Equal(t, quiz.EventTerminated, ev.Kind)
	assert.Equal(t, quiz.PhaseTerminated, s.Phase())
	_, ok := s.Result()
	assert.False(t, ok)
	assert.Equal(t, quiz.EventIgnored, s.SelectAnswer(0).Kind)
	assert.Equal(t, quiz.EventIgnored, s.Finalize().Kind)
}

func TestShuffle_IsPermutation(t *testing.T) {
	qs := testBank()["html"]
	out := quiz.Shuffle(qs, rand.New(rand.NewPCG(9, 9)))

	assert.ElementsMatch(t, qs, out)
	assert.Equal(t, testBank()["html"], qs, "input untouched")
}
