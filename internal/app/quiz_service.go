package app

import (
	"context"
	"math/rand"
	"strconv"

	"pdd-quiz-service/internal/domain"
)

// SessionRepository abstracts where per-user sessions live (in-memory, Redis-backed, etc).
// Sessions are created on first use and never torn down.
type SessionRepository interface {
	GetOrCreate(userID string) *Session
	Get(userID string) (*Session, bool)
}

// QuestionBank is the read-only question source.
type QuestionBank interface {
	TicketByNumber(n int) (domain.Ticket, bool)
	AllQuestions() []domain.Question
	TicketNumbers() []int
}

// QuizService contains the quiz session use cases. Every exported method resolves the
// caller's session and runs under that session's lock.
type QuizService struct {
	sessions SessionRepository
	bank     QuestionBank
	modes    domain.ModeCatalog
	intn     func(n int) int
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithModes replaces the default mode catalog.
func WithModes(modes domain.ModeCatalog) Option {
	return func(s *QuizService) { s.modes = modes }
}

// WithRandom replaces the random source used to sample random-mode runs.
func WithRandom(intn func(n int) int) Option {
	return func(s *QuizService) { s.intn = intn }
}

func NewQuizService(store SessionRepository, bank QuestionBank, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: store,
		bank:     bank,
		modes:    domain.DefaultModes(),
		intn:     rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QuizService) withSession(userID string, fn func(sess *Session) error) error {
	sess := s.sessions.GetOrCreate(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.init(s.modes.Default())
	return fn(sess)
}

// Modes lists the available modes in menu order.
func (s *QuizService) Modes() []domain.Mode {
	return s.modes.All()
}

// Tickets lists the ticket numbers available in the bank.
func (s *QuizService) Tickets() []int {
	return s.bank.TicketNumbers()
}

// State returns a copy of the user's session.
func (s *QuizService) State(_ context.Context, userID string) domain.SessionState {
	var state domain.SessionState
	_ = s.withSession(userID, func(sess *Session) error {
		state = sess.snapshot()
		return nil
	})
	return state
}

// SelectMode switches the user to a mode and resets the run.
func (s *QuizService) SelectMode(_ context.Context, userID, modeKey string) (domain.Mode, error) {
	mode, err := s.modes.Lookup(modeKey)
	if err != nil {
		return domain.Mode{}, err
	}
	err = s.withSession(userID, func(sess *Session) error {
		sess.selectMode(mode)
		return nil
	})
	return mode, err
}

// SelectTicket switches the user to exam mode on ticket n. Unknown tickets leave the
// session untouched.
func (s *QuizService) SelectTicket(_ context.Context, userID string, n int) error {
	if _, ok := s.bank.TicketByNumber(n); !ok {
		return domain.ErrUnknownTicket
	}
	exam, err := s.modes.Lookup(domain.ModeExam)
	if err != nil {
		return err
	}
	return s.withSession(userID, func(sess *Session) error {
		sess.selectTicket(n, exam)
		return nil
	})
}

// StartRun begins a run from the idle state and returns its first step.
func (s *QuizService) StartRun(_ context.Context, userID string) (domain.Step, error) {
	var step domain.Step
	err := s.withSession(userID, func(sess *Session) error {
		if err := sess.startRun(); err != nil {
			return err
		}
		step = s.step(sess)
		return nil
	})
	return step, err
}

// Next returns the question to show, or the summary once the run has nothing left.
func (s *QuizService) Next(_ context.Context, userID string) (domain.Step, error) {
	var step domain.Step
	err := s.withSession(userID, func(sess *Session) error {
		if sess.state == domain.StateIdle {
			return domain.ErrInvalidTransition
		}
		step = s.step(sess)
		return nil
	})
	return step, err
}

func (s *QuizService) step(sess *Session) domain.Step {
	if q := s.nextQuestion(sess); q != nil {
		d := s.display(sess, *q)
		return domain.Step{Display: &d}
	}
	// Exhausted questions end the run.
	_ = sess.finish()
	summary := Summarize(sess.snapshot())
	return domain.Step{Summary: &summary}
}

// Current returns the question being shown without advancing or sampling.
func (s *QuizService) Current(_ context.Context, userID string) (domain.Display, bool) {
	var (
		d  domain.Display
		ok bool
	)
	_ = s.withSession(userID, func(sess *Session) error {
		if q := s.currentQuestion(sess); q != nil {
			d, ok = s.display(sess, *q), true
		}
		return nil
	})
	return d, ok
}

func (s *QuizService) display(sess *Session, q domain.Question) domain.Display {
	return domain.Display{
		Question:    q,
		ChoiceCount: len(q.Answers),
		Position:    sess.position + 1,
		Target:      sess.mode.Questions,
		Mode:        sess.mode,
	}
}

// SubmitAnswer evaluates an answer to the current question. Rejected submissions leave the
// session unchanged.
func (s *QuizService) SubmitAnswer(_ context.Context, userID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	var result domain.AnswerResult
	err := s.withSession(userID, func(sess *Session) error {
		var err error
		result, err = s.submit(sess, sub)
		return err
	})
	return result, err
}

// Skip moves past the current question without answering it.
func (s *QuizService) Skip(_ context.Context, userID string) error {
	return s.withSession(userID, s.skip)
}

// Cancel aborts the run and returns the partial summary.
func (s *QuizService) Cancel(_ context.Context, userID string) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withSession(userID, func(sess *Session) error {
		if err := sess.cancel(); err != nil {
			return err
		}
		summary = Summarize(sess.snapshot())
		return nil
	})
	return summary, err
}

// Finish completes the run and returns its summary.
func (s *QuizService) Finish(_ context.Context, userID string) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withSession(userID, func(sess *Session) error {
		if err := sess.finish(); err != nil {
			return err
		}
		summary = Summarize(sess.snapshot())
		return nil
	})
	return summary, err
}

// Restart moves a finished or cancelled run back to idle in the same mode.
func (s *QuizService) Restart(_ context.Context, userID string) error {
	return s.withSession(userID, func(sess *Session) error {
		return sess.restart()
	})
}

// Stats returns the running tally of the current run.
func (s *QuizService) Stats(_ context.Context, userID string) domain.Stats {
	var stats domain.Stats
	_ = s.withSession(userID, func(sess *Session) error {
		stats = tally(sess.snapshot())
		return nil
	})
	return stats
}

// HandleCommand runs a menu-level command as one atomic step for the user. Commands that
// start a run return its first step.
func (s *QuizService) HandleCommand(ctx context.Context, userID string, kind domain.CommandKind, args []string) (domain.EngineResult, error) {
	result := domain.EngineResult{Kind: kind}

	switch kind {
	case domain.CommandHelp:
		result.Modes = s.Modes()
		result.Tickets = s.Tickets()
		return result, nil
	case domain.CommandStats:
		stats := s.Stats(ctx, userID)
		result.Stats = &stats
		return result, nil
	}

	var (
		mode   domain.Mode
		ticket int
	)
	switch kind {
	case domain.CommandMode:
		if len(args) != 1 {
			return result, domain.ErrUnknownCommand
		}
		m, err := s.modes.Lookup(args[0])
		if err != nil {
			return result, err
		}
		mode = m
	case domain.CommandTicket:
		if len(args) != 1 {
			return result, domain.ErrUnknownCommand
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return result, domain.ErrUnknownCommand
		}
		if _, ok := s.bank.TicketByNumber(n); !ok {
			return result, domain.ErrUnknownTicket
		}
		m, err := s.modes.Lookup(domain.ModeExam)
		if err != nil {
			return result, err
		}
		mode, ticket = m, n
	case domain.CommandStart, domain.CommandRestart:
	default:
		return result, domain.ErrUnknownCommand
	}

	err := s.withSession(userID, func(sess *Session) error {
		switch kind {
		case domain.CommandMode:
			sess.selectMode(mode)
		case domain.CommandTicket:
			sess.selectTicket(ticket, mode)
		case domain.CommandStart:
			sess.reset()
		case domain.CommandRestart:
			if err := sess.restart(); err != nil {
				return err
			}
		}
		if err := sess.startRun(); err != nil {
			return err
		}
		step := s.step(sess)
		m := sess.mode
		result.Mode = &m
		result.Ticket = sess.activeTicket
		result.Step = &step
		return nil
	})
	return result, err
}
