package app

import (
	"sync"
	"time"

	"emoji-quiz-service/internal/domain"
)

// Event is a session lifecycle notification delivered to subscribers.
type Event interface{ sessionEvent() }

// RoundStarted announces a new active round. Options carries the correct
// answer internally; transports must only expose the prompt and option texts.
type RoundStarted struct {
	Round       int
	RoundsTotal int
	Options     domain.RoundOptions
	Duration    time.Duration
}

// TimeLeft reports the remaining answer window, clamped to zero.
type TimeLeft struct {
	Remaining time.Duration
}

// RoundResolved reports the outcome of one round.
type RoundResolved struct {
	Round      int
	Correct    bool
	Answer     string
	Awarded    int
	TotalScore int
}

// GameFinished carries the terminal summary, emitted exactly once.
type GameFinished struct {
	Summary domain.GameSummary
}

func (RoundStarted) sessionEvent()  {}
func (TimeLeft) sessionEvent()      {}
func (RoundResolved) sessionEvent() {}
func (GameFinished) sessionEvent()  {}

// GameSession runs one player's game: a fixed number of timed rounds,
// scoring, and star computation, terminating into a GameOver summary.
// All state is mutated only through its transition methods.
type GameSession struct {
	userID          string
	category        domain.Category
	difficulty      domain.Difficulty
	roundsTotal     int
	pointsPerAnswer int

	selector     *RoundSelector
	candidates   []domain.Question
	ticks        TickerFactory
	tickInterval time.Duration
	onGameOver   func(domain.GameSummary)

	mu              sync.Mutex
	phase           domain.SessionPhase
	roundsCompleted int
	score           int
	stars           [3]bool
	current         *domain.RoundOptions
	timer           *roundTimer
	timerGen        uint64
	finished        bool
	subscribers     map[chan Event]struct{}
}

func newGameSession(
	userID string,
	category domain.Category,
	difficulty domain.Difficulty,
	roundsTotal int,
	candidates []domain.Question,
	selector *RoundSelector,
	ticks TickerFactory,
	tickInterval time.Duration,
	onGameOver func(domain.GameSummary),
) *GameSession {
	return &GameSession{
		userID:          userID,
		category:        category,
		difficulty:      difficulty,
		roundsTotal:     roundsTotal,
		pointsPerAnswer: difficulty.PointsPerAnswer(),
		selector:        selector,
		candidates:      candidates,
		ticks:           ticks,
		tickInterval:    tickInterval,
		onGameOver:      onGameOver,
		phase:           domain.PhaseAwaitingRound,
		subscribers:     make(map[chan Event]struct{}),
	}
}

// UserID identifies the session's player.
func (s *GameSession) UserID() string { return s.userID }

// Phase reports the current lifecycle phase.
func (s *GameSession) Phase() domain.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score reports the cumulative session score.
func (s *GameSession) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// start selects and activates the first round.
func (s *GameSession) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginRoundLocked()
}

func (s *GameSession) beginRoundLocked() error {
	options, err := s.selector.SelectRound(s.candidates)
	if err != nil {
		// Selection failures are fatal: no partial round is started.
		s.phase = domain.PhaseGameOver
		return err
	}

	s.current = &options
	s.phase = domain.PhaseRoundActive
	s.timerGen++
	if s.timer != nil {
		s.timer.Cancel()
	}
	s.timer = startRoundTimer(
		s.timerGen,
		s.difficulty.RoundDuration(),
		s.tickInterval,
		s.ticks,
		s.onTick,
		s.onExpire,
	)
	s.broadcastLocked(RoundStarted{
		Round:       s.roundsCompleted + 1,
		RoundsTotal: s.roundsTotal,
		Options:     options,
		Duration:    s.difficulty.RoundDuration(),
	})
	return nil
}

// SubmitAnswer resolves the active round against the player's choice.
// Valid only while a round is active.
func (s *GameSession) SubmitAnswer(choice string) (RoundResolved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseRoundActive {
		return RoundResolved{}, domain.ErrNoActiveRound
	}
	s.timer.Cancel()
	return s.resolveRoundLocked(choice == s.current.Question.Answer), nil
}

// onTick forwards the countdown to subscribers; stale generations are dropped.
func (s *GameSession) onTick(gen uint64, remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.phase != domain.PhaseRoundActive {
		return
	}
	s.broadcastLocked(TimeLeft{Remaining: remaining})
}

// onExpire resolves the round as a non-match. An expiry arriving after the
// round resolved via SubmitAnswer carries a stale generation and is a no-op.
func (s *GameSession) onExpire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.phase != domain.PhaseRoundActive {
		return
	}
	s.resolveRoundLocked(false)
}

func (s *GameSession) resolveRoundLocked(correct bool) RoundResolved {
	awarded := 0
	if correct {
		awarded = s.pointsPerAnswer
		s.score += awarded
	}
	s.recomputeStarsLocked()
	s.roundsCompleted++
	s.phase = domain.PhaseRoundResolved

	resolved := RoundResolved{
		Round:      s.roundsCompleted,
		Correct:    correct,
		Answer:     s.current.Question.Answer,
		Awarded:    awarded,
		TotalScore: s.score,
	}
	s.broadcastLocked(resolved)

	if s.roundsCompleted < s.roundsTotal {
		// Auto-advance; reselects from the in-memory candidate pool.
		if err := s.beginRoundLocked(); err != nil {
			s.gameOverLocked()
		}
	} else {
		s.gameOverLocked()
	}
	return resolved
}

// recomputeStarsLocked applies the exact-equality star thresholds. Each flag
// latches the first time the cumulative score equals its threshold; the
// comparison is ==, not >=, matching the one-point-value-per-round design.
func (s *GameSession) recomputeStarsLocked() {
	max := s.pointsPerAnswer * s.roundsTotal
	if s.score == max/5 {
		s.stars[0] = true
	}
	if s.score == 3*max/5 {
		s.stars[1] = true
	}
	if s.score == max {
		s.stars[2] = true
	}
}

func (s *GameSession) gameOverLocked() {
	if s.finished {
		return
	}
	s.finished = true
	s.phase = domain.PhaseGameOver
	if s.timer != nil {
		s.timer.Cancel()
	}

	summary := domain.GameSummary{
		UserID:      s.userID,
		Category:    s.category,
		RoundsTotal: s.roundsTotal,
		Score:       s.score,
		Stars:       s.stars,
	}
	s.broadcastLocked(GameFinished{Summary: summary})
	if s.onGameOver != nil {
		// Persistence runs off the session lock.
		go s.onGameOver(summary)
	}
}

// Close cancels the active timer, e.g. when a new game replaces this one.
func (s *GameSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Cancel()
	}
	if s.phase != domain.PhaseGameOver {
		s.phase = domain.PhaseGameOver
		s.finished = true
	}
}

// Subscribe returns a channel of session events. A subscriber joining while
// a round is active receives that round first, so nobody misses the opening
// round. The caller must invoke the returned cancel function to avoid leaks.
func (s *GameSession) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	if s.phase == domain.PhaseRoundActive && s.current != nil {
		ch <- RoundStarted{
			Round:       s.roundsCompleted + 1,
			RoundsTotal: s.roundsTotal,
			Options:     *s.current,
			Duration:    s.difficulty.RoundDuration(),
		}
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *GameSession) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest pending event so slow consumers never block
			// round resolution.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
