package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cineverse/internal/quiz"
	"github.com/iliyamo/cineverse/internal/ranking"
	"github.com/iliyamo/cineverse/internal/repository"
)

// ErrQuizNotFound is returned for unknown or foreign quiz ids.
var ErrQuizNotFound = errors.New("quiz session not found")

// QuizUpdate pairs a transition with the state it produced.
type QuizUpdate struct {
	Event quiz.Event `json:"event"`
	View  quiz.View  `json:"view"`
}

// quizRun is one live session.  mu guards everything below it and is the
// lock the countdown requires.
type quizRun struct {
	id  string
	sid string

	mu        sync.Mutex
	session   *quiz.Session
	countdown *quiz.Countdown
	advance   *time.Timer
	progress  *quiz.ProgressStore
	board     *ranking.Board
	subs      map[chan QuizUpdate]struct{}
	touched   time.Time
}

// broadcast must be called with mu held.
func (r *quizRun) broadcast(ev quiz.Event) QuizUpdate {
	up := QuizUpdate{Event: ev, View: r.session.View()}
	if ev.Kind == quiz.EventIgnored {
		return up
	}
	for ch := range r.subs {
		select {
		case ch <- up:
		default: // slow subscriber, drop
		}
	}
	return up
}

func (r *quizRun) closeSubs() {
	for ch := range r.subs {
		close(ch)
	}
	r.subs = map[chan QuizUpdate]struct{}{}
}

// QuizService hosts quiz sessions in memory.  Each session gets its own
// countdown; a timeout schedules the advance after quiz.AutoAdvanceDelay.
// Snapshots go to the session store, results to a ranking board in the
// durable store.
type QuizService struct {
	bank     quiz.Bank
	sessions repository.Store
	durable  repository.Store

	mu    sync.Mutex
	runs  map[string]*quizRun
	bySID map[string]string

	tick        time.Duration
	autoAdvance time.Duration
	newRand     func() *rand.Rand
	now         func() time.Time
}

func NewQuizService(bank quiz.Bank, sessions, durable repository.Store) *QuizService {
	return &QuizService{
		bank:        bank,
		sessions:    sessions,
		durable:     durable,
		runs:        map[string]*quizRun{},
		bySID:       map[string]string{},
		tick:        time.Second,
		autoAdvance: quiz.AutoAdvanceDelay,
		newRand:     func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) },
		now:         time.Now,
	}
}

// Category describes a playable category.
type Category struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

// Categories lists the categories in the bank.
func (s *QuizService) Categories() []Category {
	keys := s.bank.Categories()
	out := make([]Category, 0, len(keys))
	for _, k := range keys {
		out = append(out, Category{Key: k, Name: quiz.DisplayName(k), Questions: len(s.bank[k])})
	}
	return out
}

// Board returns the ranking of a signed-in user, or of the visitor session.
func (s *QuizService) Board(sid, uid string) *ranking.Board {
	ns := "session:" + sid
	if uid != "" {
		ns = "user:" + uid
	}
	return ranking.NewBoard(repository.Scoped(s.durable, ns))
}

// Progress returns the visitor's resumable snapshot, if any.
func (s *QuizService) Progress(ctx context.Context, sid string) (quiz.Progress, bool, error) {
	return s.progressStore(sid).Load(ctx)
}

func (s *QuizService) progressStore(sid string) *quiz.ProgressStore {
	return quiz.NewProgressStore(repository.Scoped(s.sessions, "session:"+sid))
}

// Start begins a new session for the visitor, ending any previous one.
func (s *QuizService) Start(ctx context.Context, sid, uid, category string) (string, QuizUpdate, error) {
	sess := quiz.NewSession().WithClock(s.now)
	ev, err := sess.Load(s.bank, category, s.newRand())
	if err != nil {
		return "", QuizUpdate{}, err
	}
	run := &quizRun{
		id:        uuid.NewString(),
		sid:       sid,
		session:   sess,
		countdown: quiz.NewCountdown(s.tick),
		progress:  s.progressStore(sid),
		board:     s.Board(sid, uid),
		subs:      map[chan QuizUpdate]struct{}{},
		touched:   s.now(),
	}

	s.mu.Lock()
	prev := s.runs[s.bySID[sid]]
	delete(s.runs, s.bySID[sid])
	s.runs[run.id] = run
	s.bySID[sid] = run.id
	s.mu.Unlock()
	if prev != nil {
		s.end(ctx, prev)
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	s.startCountdown(run)
	s.saveProgress(ctx, run)
	return run.id, run.broadcast(ev), nil
}

func (s *QuizService) lookup(sid, id string) (*quizRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok || run.sid != sid {
		return nil, ErrQuizNotFound
	}
	return run, nil
}

// State renders a session.
func (s *QuizService) State(sid, id string) (quiz.View, error) {
	run, err := s.lookup(sid, id)
	if err != nil {
		return quiz.View{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.session.View(), nil
}

// Answer locks option i of the current question.
func (s *QuizService) Answer(ctx context.Context, sid, id string, i int) (QuizUpdate, error) {
	run, err := s.lookup(sid, id)
	if err != nil {
		return QuizUpdate{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	run.touched = s.now()
	ev := run.session.SelectAnswer(i)
	if ev.Kind == quiz.EventCorrect || ev.Kind == quiz.EventIncorrect {
		run.countdown.Stop()
		s.saveProgress(ctx, run)
	}
	return run.broadcast(ev), nil
}

// Advance moves to the next question or finishes the session.
func (s *QuizService) Advance(ctx context.Context, sid, id string) (QuizUpdate, error) {
	run, err := s.lookup(sid, id)
	if err != nil {
		return QuizUpdate{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	run.touched = s.now()
	return s.advanceLocked(ctx, run), nil
}

// Terminate ends the session without a result.
func (s *QuizService) Terminate(ctx context.Context, sid, id string) (QuizUpdate, error) {
	run, err := s.lookup(sid, id)
	if err != nil {
		return QuizUpdate{}, err
	}
	s.forget(run)
	return s.end(ctx, run), nil
}

// Subscribe streams updates of a session until cancel is called or the
// session goes away.
func (s *QuizService) Subscribe(sid, id string) (<-chan QuizUpdate, func(), error) {
	run, err := s.lookup(sid, id)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan QuizUpdate, 16)
	run.mu.Lock()
	run.subs[ch] = struct{}{}
	run.mu.Unlock()
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			run.mu.Lock()
			defer run.mu.Unlock()
			if _, ok := run.subs[ch]; ok {
				delete(run.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel, nil
}

// Sweep drops sessions idle for longer than idle, ending them first.
func (s *QuizService) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	var stale []*quizRun
	s.mu.Lock()
	for _, run := range s.runs {
		run.mu.Lock()
		if run.touched.Before(cutoff) {
			stale = append(stale, run)
		}
		run.mu.Unlock()
	}
	s.mu.Unlock()
	for _, run := range stale {
		s.forget(run)
		s.end(ctx, run)
	}
	return len(stale)
}

func (s *QuizService) forget(run *quizRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, run.id)
	if s.bySID[run.sid] == run.id {
		delete(s.bySID, run.sid)
	}
}

// end terminates run, stops its timers, clears the snapshot of an
// unfinished session and disconnects subscribers.
func (s *QuizService) end(ctx context.Context, run *quizRun) QuizUpdate {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.countdown.Stop()
	s.cancelAdvance(run)
	ev := run.session.Terminate()
	if ev.Kind == quiz.EventTerminated {
		if err := run.progress.Clear(ctx); err != nil {
			log.Warnf("[quiz] clear progress: %v", err)
		}
	}
	up := run.broadcast(ev)
	run.closeSubs()
	return up
}

// The methods below must be called with run.mu held.

func (s *QuizService) startCountdown(run *quizRun) {
	run.countdown.Start(func(gen uint64) { s.onTick(run, gen) })
}

func (s *QuizService) onTick(run *quizRun, gen uint64) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if !run.countdown.Active(gen) {
		return
	}
	ev := run.session.Tick()
	switch ev.Kind {
	case quiz.EventIgnored:
		run.countdown.Stop()
		return
	case quiz.EventTimeout:
		run.countdown.Stop()
		s.scheduleAdvance(run, ev.Index)
	}
	s.saveProgress(context.Background(), run)
	run.broadcast(ev)
}

// scheduleAdvance moves past a timed-out question unless the visitor has
// already done so.
func (s *QuizService) scheduleAdvance(run *quizRun, index int) {
	s.cancelAdvance(run)
	run.advance = time.AfterFunc(s.autoAdvance, func() {
		run.mu.Lock()
		defer run.mu.Unlock()
		sess := run.session
		if sess.Phase() != quiz.PhaseInProgress || sess.Index() != index || !sess.Answered() {
			return
		}
		s.advanceLocked(context.Background(), run)
	})
}

func (s *QuizService) cancelAdvance(run *quizRun) {
	if run.advance != nil {
		run.advance.Stop()
		run.advance = nil
	}
}

func (s *QuizService) advanceLocked(ctx context.Context, run *quizRun) QuizUpdate {
	ev := run.session.Advance()
	switch ev.Kind {
	case quiz.EventNext:
		s.cancelAdvance(run)
		s.startCountdown(run)
		s.saveProgress(ctx, run)
	case quiz.EventFinished:
		s.cancelAdvance(run)
		run.countdown.Stop()
		if err := run.board.Record(ctx, *ev.Result); err != nil {
			log.Errorf("[quiz] record result: %v", err)
		}
		if err := run.progress.Clear(ctx); err != nil {
			log.Warnf("[quiz] clear progress: %v", err)
		}
	}
	return run.broadcast(ev)
}

func (s *QuizService) saveProgress(ctx context.Context, run *quizRun) {
	if err := run.progress.Save(ctx, run.session); err != nil {
		log.Warnf("[quiz] save progress: %v", err)
	}
}
