// Package quiz implements a timed, single-question-at-a-time quiz.  A
// Session is a pure state machine: callers feed it answers, ticks and
// advance requests and render from its observable state.  Wall-clock timers
// live outside the session (see Countdown).
package quiz

import (
	"math/rand/v2"
	"time"
)

// QuestionSeconds is the countdown each question starts with.
const QuestionSeconds = 30

// AutoAdvanceDelay is how long the host should wait after a timeout before
// calling Advance.
const AutoAdvanceDelay = 2 * time.Second

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseLoading    Phase = "LOADING"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseFinished   Phase = "FINISHED"
	PhaseTerminated Phase = "TERMINATED"
)

// EventKind classifies the outcome of a session operation.
type EventKind string

const (
	EventIgnored    EventKind = "IGNORED"
	EventStarted    EventKind = "STARTED"
	EventTick       EventKind = "TICK"
	EventCorrect    EventKind = "CORRECT"
	EventIncorrect  EventKind = "INCORRECT"
	EventTimeout    EventKind = "TIMEOUT"
	EventNext       EventKind = "NEXT"
	EventFinished   EventKind = "FINISHED"
	EventTerminated EventKind = "TERMINATED"
)

// Event is returned by every transition.  CorrectIndex is set for answer and
// timeout events so the correct option can be revealed; AutoAdvanceMs is set
// only on timeouts; Result only on EventFinished.
type Event struct {
	Kind          EventKind `json:"kind"`
	Index         int       `json:"index"`
	TimeLeft      int       `json:"time_left"`
	Selected      int       `json:"selected"`
	CorrectIndex  int       `json:"correct_index"`
	AutoAdvanceMs int       `json:"auto_advance_ms,omitempty"`
	Result        *Result   `json:"result,omitempty"`
}

// NoSelection marks an answered question without a chosen option.
const NoSelection = -1

// Session is one run through a category.  It is not safe for concurrent
// use; every call must be serialised by the owner.
type Session struct {
	category  string
	questions []Question
	index     int
	score     int
	answered  bool
	selected  int
	timeLeft  int
	phase     Phase
	result    *Result
	now       func() time.Time
}

// NewSession creates an empty session in the loading phase.
func NewSession() *Session {
	return &Session{phase: PhaseLoading, selected: NoSelection, now: time.Now}
}

// WithClock overrides the clock used to timestamp results.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Load selects the questions for category from bank, shuffles them once and
// starts the first question.  Unknown categories fall back to
// DefaultCategory; ErrDataLoad is returned when nothing can be served, in
// which case the session stays in the loading phase.
func (s *Session) Load(bank Bank, category string, rng *rand.Rand) (Event, error) {
	resolved, qs, err := bank.Resolve(category)
	if err != nil {
		return Event{Kind: EventIgnored}, err
	}
	s.category = resolved
	s.questions = Shuffle(qs, rng)
	s.index = 0
	s.score = 0
	s.result = nil
	s.phase = PhaseInProgress
	s.enter()
	return s.event(EventStarted), nil
}

// enter resets per-question state for the current index.
func (s *Session) enter() {
	s.answered = false
	s.selected = NoSelection
	s.timeLeft = QuestionSeconds
}

func (s *Session) event(kind EventKind) Event {
	ev := Event{Kind: kind, Index: s.index, TimeLeft: s.timeLeft, Selected: s.selected, CorrectIndex: NoSelection}
	if kind == EventCorrect || kind == EventIncorrect || kind == EventTimeout {
		ev.CorrectIndex = s.questions[s.index].Correct
	}
	return ev
}

func (s *Session) ignored() Event {
	return Event{Kind: EventIgnored, Index: s.index, TimeLeft: s.timeLeft, Selected: s.selected, CorrectIndex: NoSelection}
}

// SelectAnswer locks in option i for the current question.  It is a no-op
// once the question is answered, outside the in-progress phase, or when i
// does not address an option.
func (s *Session) SelectAnswer(i int) Event {
	if s.phase != PhaseInProgress || s.answered {
		return s.ignored()
	}
	q := s.questions[s.index]
	if i < 0 || i >= len(q.Options) {
		return s.ignored()
	}
	s.answered = true
	s.selected = i
	if i == q.Correct {
		s.score++
		return s.event(EventCorrect)
	}
	return s.event(EventIncorrect)
}

// Tick consumes one second of the current question's countdown.  When the
// countdown reaches zero on an unanswered question the question is answered
// with no selection and EventTimeout is returned; the host is expected to
// call Advance after AutoAdvanceDelay.
func (s *Session) Tick() Event {
	if s.phase != PhaseInProgress || s.answered {
		return s.ignored()
	}
	s.timeLeft--
	if s.timeLeft > 0 {
		return s.event(EventTick)
	}
	s.timeLeft = 0
	s.answered = true
	s.selected = NoSelection
	ev := s.event(EventTimeout)
	ev.AutoAdvanceMs = int(AutoAdvanceDelay / time.Millisecond)
	return ev
}

// Advance moves to the next question, or finishes the session after the
// last one.  It is a no-op until the current question is answered.
func (s *Session) Advance() Event {
	if s.phase != PhaseInProgress || !s.answered {
		return s.ignored()
	}
	if s.index+1 >= len(s.questions) {
		return s.Finalize()
	}
	s.index++
	s.enter()
	return s.event(EventNext)
}

// Finalize ends an in-progress session and produces its Result from the
// current score and the number of questions.  Calling it twice returns the
// same result.
func (s *Session) Finalize() Event {
	switch s.phase {
	case PhaseFinished:
		ev := s.ignored()
		ev.Kind = EventFinished
		ev.Result = s.result
		return ev
	case PhaseInProgress:
	default:
		return s.ignored()
	}
	r := NewResult(s.category, s.score, len(s.questions), s.now())
	s.result = &r
	s.phase = PhaseFinished
	ev := s.ignored()
	ev.Kind = EventFinished
	ev.Result = s.result
	return ev
}

// Terminate aborts the session without producing a result.
func (s *Session) Terminate() Event {
	if s.phase == PhaseFinished || s.phase == PhaseTerminated {
		return s.ignored()
	}
	s.phase = PhaseTerminated
	return Event{Kind: EventTerminated, Index: s.index, TimeLeft: s.timeLeft, Selected: s.selected, CorrectIndex: NoSelection}
}

// View is a read-only rendering of the session.  CorrectIndex is only
// revealed once the current question is answered.
type View struct {
	Category     string   `json:"category"`
	DisplayName  string   `json:"display_name"`
	Phase        Phase    `json:"phase"`
	Index        int      `json:"index"`
	Total        int      `json:"total"`
	Progress     int      `json:"progress"`
	Score        int      `json:"score"`
	TimeLeft     int      `json:"time_left"`
	Answered     bool     `json:"answered"`
	Selected     int      `json:"selected"`
	CorrectIndex int      `json:"correct_index"`
	Question     string   `json:"question,omitempty"`
	Options      []string `json:"options,omitempty"`
	Result       *Result  `json:"result,omitempty"`
}

// View renders the current state.
func (s *Session) View() View {
	v := View{
		Category:     s.category,
		DisplayName:  DisplayName(s.category),
		Phase:        s.phase,
		Index:        s.index,
		Total:        len(s.questions),
		Score:        s.score,
		TimeLeft:     s.timeLeft,
		Answered:     s.answered,
		Selected:     s.selected,
		CorrectIndex: NoSelection,
		Result:       s.result,
	}
	if s.phase == PhaseInProgress && s.index < len(s.questions) {
		q := s.questions[s.index]
		v.Question = q.Text
		v.Options = append([]string(nil), q.Options...)
		v.Progress = (s.index + 1) * 100 / len(s.questions)
		if s.answered {
			v.CorrectIndex = q.Correct
		}
	}
	return v
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Category returns the category being served.
func (s *Session) Category() string { return s.category }

// Index returns the current question index.
func (s *Session) Index() int { return s.index }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// TimeLeft returns the remaining seconds on the current question.
func (s *Session) TimeLeft() int { return s.timeLeft }

// Answered reports whether the current question is locked.
func (s *Session) Answered() bool { return s.answered }

// Result returns the result once finished.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}
