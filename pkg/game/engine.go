// Package game implements the memory-matching game: deck construction,
// the reveal/compare/resolve loop under a countdown timer, streak-based
// scoring, and synchronous persistence of best and cumulative scores.
//
// The state machine is pure and driver-agnostic: Click, Tick and
// ResolveMismatch mutate state under one mutex and can be exercised
// directly in tests. Run is the wall-clock driver a real session uses;
// it owns the one-second ticks and the mismatch flip-back delay, and
// stops with its context so a torn-down screen never leaks a timer loop.
package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"

	"github.com/shashiranjanraj/kankarej/app/models"
	"github.com/shashiranjanraj/kankarej/pkg/collection"
	"github.com/shashiranjanraj/kankarej/pkg/imgproxy"
	"github.com/shashiranjanraj/kankarej/pkg/logger"
	"github.com/shashiranjanraj/kankarej/pkg/metrics"
	"github.com/shashiranjanraj/kankarej/pkg/score"
)

// Status is the round lifecycle state.
type Status int

const (
	StatusFetchingData Status = iota
	StatusPreloading
	StatusCountdown
	StatusPlaying
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusFetchingData:
		return "fetching_data"
	case StatusPreloading:
		return "preloading"
	case StatusCountdown:
		return "countdown"
	case StatusPlaying:
		return "playing"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	}
	return "unknown"
}

// ErrRoundInProgress is returned by Restart outside a terminal state.
var ErrRoundInProgress = errors.New("game: round still in progress")

const (
	basePoints     = 100
	cardImageWidth = 200
)

// ScoreStore is the durable key/value map the engine persists into.
// Satisfied by *score.Store and *score.Memory.
type ScoreStore interface {
	Get(key string, def int) int
	Set(key string, value int) error
}

// Options configures an Engine. The zero value plays the standard round:
// 6 pairs, 5s countdown, 60s budget, 800ms mismatch delay, in-memory
// scores, no preloading.
type Options struct {
	Pairs          int
	CountdownTicks int
	RoundSeconds   int
	MismatchDelay  time.Duration

	Scores    ScoreStore
	Preloader Preloader     // nil skips image warming
	Bus       EventBus.Bus  // nil allocates a private bus
	Rand      *rand.Rand    // nil seeds from the clock
}

// Engine runs one game session. All state transitions are serialized on
// an internal mutex; callers may click from any goroutine.
type Engine struct {
	opt Options
	log *slog.Logger
	bus EventBus.Bus
	rng *rand.Rand

	mu       sync.Mutex
	status   Status
	pool     []models.Product
	cards    []Card
	selected []int
	locked   bool

	sessionScore int
	streak       int
	timeLeft     int
	countdown    int

	// mirrors of the persisted values, so high_score writes happen
	// exactly once per new maximum
	highScore  int
	totalScore int

	resolveCh chan struct{}
}

// New builds an Engine and restores persisted scores.
func New(opt Options) *Engine {
	if opt.Pairs <= 0 {
		opt.Pairs = 6
	}
	if opt.CountdownTicks <= 0 {
		opt.CountdownTicks = 5
	}
	if opt.RoundSeconds <= 0 {
		opt.RoundSeconds = 60
	}
	if opt.MismatchDelay <= 0 {
		opt.MismatchDelay = 800 * time.Millisecond
	}
	if opt.Scores == nil {
		opt.Scores = score.NewMemory()
	}
	if opt.Bus == nil {
		opt.Bus = EventBus.New()
	}
	if opt.Rand == nil {
		opt.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Engine{
		opt:        opt,
		log:        logger.For("game"),
		bus:        opt.Bus,
		rng:        opt.Rand,
		status:     StatusFetchingData,
		streak:     1,
		highScore:  opt.Scores.Get(score.KeyHighScore, 0),
		totalScore: opt.Scores.Get(score.KeyTotalScore, 0),
		resolveCh:  make(chan struct{}, 1),
	}
}

// Bus exposes the engine's event bus for subscribers.
func (e *Engine) Bus() EventBus.Bus { return e.bus }

// ProvidePool hands the engine the current product pool. The first time
// the pool is observed non-empty while waiting for data, a round starts
// automatically. ProvidePool blocks through image preloading, so call it
// from the goroutine that consumes the feed, not from a UI thread.
func (e *Engine) ProvidePool(products []models.Product) error {
	e.mu.Lock()
	e.pool = products
	start := e.status == StatusFetchingData && len(products) > 0
	e.mu.Unlock()

	if !start {
		return nil
	}
	return e.startRound()
}

// Restart begins a fresh round from a terminal state: new selection,
// reset session score, streak and timer. Persisted scores are untouched.
func (e *Engine) Restart() error {
	e.mu.Lock()
	if e.status != StatusWon && e.status != StatusLost {
		e.mu.Unlock()
		return ErrRoundInProgress
	}
	e.mu.Unlock()
	return e.startRound()
}

func (e *Engine) startRound() error {
	e.mu.Lock()
	cards, picks, err := BuildDeck(e.pool, e.opt.Pairs, e.rng)
	if err != nil {
		e.setStatusLocked(StatusFetchingData)
		e.mu.Unlock()
		return err
	}

	e.cards = cards
	e.selected = e.selected[:0]
	e.locked = false
	e.sessionScore = 0
	e.streak = 1
	e.timeLeft = e.opt.RoundSeconds
	e.countdown = e.opt.CountdownTicks
	e.setStatusLocked(StatusPreloading)

	urls := collection.Map(picks, func(p models.Product) string {
		return imgproxy.Optimize(p.ImageURL, cardImageWidth)
	})
	e.mu.Unlock()

	if e.opt.Preloader != nil {
		e.opt.Preloader.Preload(urls)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusPreloading {
		e.setStatusLocked(StatusCountdown)
	}
	return nil
}

// Tick advances whichever timer the current state runs: the pre-round
// countdown or the in-round clock. Drivers call it once per second; each
// tick's delay starts after the previous tick is processed.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case StatusCountdown:
		e.countdown--
		if e.countdown <= 0 {
			e.setStatusLocked(StatusPlaying)
		}
	case StatusPlaying:
		e.timeLeft--
		if e.timeLeft <= 0 {
			e.loseLocked()
		}
	}
}

// ClickOutcome reports what one click did. A zero outcome means the
// click was ignored: wrong state, locked board, or an unclickable card.
type ClickOutcome struct {
	Accepted bool
	Matched  bool
	Mismatch bool // flip-back pending; board stays locked until resolved
	Points   int
	Won      bool
}

// Click reveals the card at index i and, on the second reveal of a pair,
// evaluates it. Matches score 100× the streak multiplier and persist
// immediately; mismatches lock the board until ResolveMismatch runs.
func (e *Engine) Click(i int) ClickOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying || e.locked {
		return ClickOutcome{}
	}
	if i < 0 || i >= len(e.cards) {
		return ClickOutcome{}
	}
	if e.cards[i].Flipped || e.cards[i].Matched {
		return ClickOutcome{}
	}

	e.cards[i].Flipped = true
	e.selected = append(e.selected, i)
	if len(e.selected) < 2 {
		return ClickOutcome{Accepted: true}
	}

	first, second := &e.cards[e.selected[0]], &e.cards[e.selected[1]]
	if first.Product.Name != second.Product.Name {
		e.streak = 1
		e.locked = true
		metrics.GameMatches.WithLabelValues("mismatch").Inc()
		e.bus.Publish(TopicMatch, MatchEvent{Matched: false, Streak: e.streak})
		select {
		case e.resolveCh <- struct{}{}:
		default:
		}
		return ClickOutcome{Accepted: true, Mismatch: true}
	}

	points := basePoints * e.streak
	first.Matched = true
	second.Matched = true
	e.sessionScore += points
	e.totalScore += points
	e.streak++
	e.selected = e.selected[:0]
	e.persistScoresLocked()

	metrics.GameMatches.WithLabelValues("match").Inc()
	e.bus.Publish(TopicMatch, MatchEvent{
		Product: first.Product.Name,
		Matched: true,
		Points:  points,
		Streak:  e.streak,
	})

	out := ClickOutcome{Accepted: true, Matched: true, Points: points}
	if e.allMatchedLocked() {
		e.winLocked()
		out.Won = true
	}
	return out
}

// ResolveMismatch flips the unresolved pair face-down, clears the
// selection and unlocks the board. Run calls it after the mismatch
// delay; tests call it directly.
func (e *Engine) ResolveMismatch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.locked || len(e.selected) != 2 {
		return
	}
	for _, idx := range e.selected {
		if !e.cards[idx].Matched {
			e.cards[idx].Flipped = false
		}
	}
	e.selected = e.selected[:0]
	e.locked = false
}

// Run drives the engine against the wall clock until ctx is cancelled.
// Ticks are strictly sequential and no partial tick survives teardown.
func (e *Engine) Run(ctx context.Context) {
	t := time.NewTimer(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.resolveCh:
			go e.resolveAfterDelay(ctx)
		case <-t.C:
			e.Tick()
			t.Reset(time.Second)
		}
	}
}

func (e *Engine) resolveAfterDelay(ctx context.Context) {
	t := time.NewTimer(e.opt.MismatchDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
		e.ResolveMismatch()
	}
}

// ── State accessors (what a rendering surface needs) ─────────────────────────

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Cards returns a copy of the board.
func (e *Engine) Cards() []Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Card, len(e.cards))
	copy(out, e.cards)
	return out
}

func (e *Engine) SessionScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionScore
}

func (e *Engine) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak
}

func (e *Engine) TimeLeft() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeLeft
}

func (e *Engine) CountdownValue() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.countdown
}

func (e *Engine) HighScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highScore
}

func (e *Engine) TotalScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalScore
}

// ── Internals (mutex held) ───────────────────────────────────────────────────

func (e *Engine) setStatusLocked(s Status) {
	if e.status == s {
		return
	}
	e.status = s
	e.log.Debug("status", "status", s.String())
	e.bus.Publish(TopicStatus, s)
}

func (e *Engine) allMatchedLocked() bool {
	for _, c := range e.cards {
		if !c.Matched {
			return false
		}
	}
	return len(e.cards) > 0
}

func (e *Engine) winLocked() {
	e.setStatusLocked(StatusWon)
	e.endRoundLocked("won")
}

func (e *Engine) loseLocked() {
	e.setStatusLocked(StatusLost)
	e.endRoundLocked("lost")
}

func (e *Engine) endRoundLocked(outcome string) {
	e.recordHighLocked()
	metrics.GameRounds.WithLabelValues(outcome).Inc()
	e.bus.Publish(TopicScore, ScoreEvent{
		Session: e.sessionScore,
		Total:   e.totalScore,
		High:    e.highScore,
	})
}

// persistScoresLocked writes the cumulative total and, when the session
// newly exceeds it, the high score. Both writes complete before the
// triggering click returns.
func (e *Engine) persistScoresLocked() {
	if err := e.opt.Scores.Set(score.KeyTotalScore, e.totalScore); err != nil {
		e.log.Error("persist total failed", "err", err)
	}
	e.recordHighLocked()
	e.bus.Publish(TopicScore, ScoreEvent{
		Session: e.sessionScore,
		Total:   e.totalScore,
		High:    e.highScore,
	})
}

// recordHighLocked persists a new maximum at most once: the in-memory
// mirror only moves forward, and an unchanged mirror writes nothing.
func (e *Engine) recordHighLocked() {
	if e.sessionScore <= e.highScore {
		return
	}
	e.highScore = e.sessionScore
	if err := e.opt.Scores.Set(score.KeyHighScore, e.highScore); err != nil {
		e.log.Error("persist high score failed", "err", err)
	}
}
