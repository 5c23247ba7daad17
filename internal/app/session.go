package app

import (
	"sync"

	"pdd-quiz-service/internal/domain"
)

// Session is the mutable run state of one user. All methods below expect the caller to
// hold mu; QuizService takes it for the whole duration of every operation so actions of
// the same user never interleave.
type Session struct {
	userID string
	mu     sync.Mutex

	initialized  bool
	mode         domain.Mode
	activeTicket int
	state        domain.RunState
	position     int
	score        int
	history      []domain.HistoryEntry

	// order is the sampled question sequence of a random-mode run.
	order        []domain.Question
	materialized bool
}

// NewSession is exported for infrastructure layers that own the session map.
func NewSession(userID string) *Session {
	return &Session{userID: userID, state: domain.StateIdle, activeTicket: 1}
}

// UserID returns the identifier the session belongs to.
func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) init(mode domain.Mode) {
	if s.initialized {
		return
	}
	s.initialized = true
	s.mode = mode
	s.activeTicket = 1
	s.reset()
}

func (s *Session) reset() {
	s.state = domain.StateIdle
	s.position = 0
	s.score = 0
	s.history = nil
	s.order = nil
	s.materialized = false
}

func (s *Session) selectMode(mode domain.Mode) {
	s.mode = mode
	s.reset()
}

func (s *Session) selectTicket(n int, exam domain.Mode) {
	s.mode = exam
	s.activeTicket = n
	s.reset()
}

func (s *Session) startRun() error {
	if s.state != domain.StateIdle {
		return domain.ErrInvalidTransition
	}
	s.reset()
	s.state = domain.StateInProgress
	return nil
}

// advance moves to the next question and finishes the run when either the mode's target
// or the run's question sequence is used up.
func (s *Session) advance(sequenceLen int) {
	s.position++
	if s.position >= s.mode.Questions || s.position >= sequenceLen {
		s.state = domain.StateFinished
	}
}

func (s *Session) recordAnswer(correct bool, sequenceLen int) {
	s.history = append(s.history, domain.HistoryEntry{Ordinal: s.position + 1, Correct: correct})
	if correct {
		s.score++
	}
	s.advance(sequenceLen)
}

func (s *Session) recordSkip(sequenceLen int) {
	s.advance(sequenceLen)
}

func (s *Session) finish() error {
	switch s.state {
	case domain.StateInProgress:
		s.state = domain.StateFinished
		return nil
	case domain.StateFinished:
		return nil
	default:
		return domain.ErrInvalidTransition
	}
}

func (s *Session) cancel() error {
	switch s.state {
	case domain.StateIdle, domain.StateInProgress:
		s.state = domain.StateCancelled
		return nil
	default:
		return domain.ErrInvalidTransition
	}
}

func (s *Session) restart() error {
	if s.state != domain.StateFinished && s.state != domain.StateCancelled {
		return domain.ErrInvalidTransition
	}
	s.reset()
	return nil
}

func (s *Session) snapshot() domain.SessionState {
	history := make([]domain.HistoryEntry, len(s.history))
	copy(history, s.history)
	return domain.SessionState{
		UserID:       s.userID,
		Mode:         s.mode,
		ActiveTicket: s.activeTicket,
		State:        s.state,
		Position:     s.position,
		Score:        s.score,
		History:      history,
		Materialized: len(s.order),
	}
}
