package app

import "pdd-quiz-service/internal/domain"

// Sample returns min(count, len(pool)) distinct questions drawn uniformly from pool using a
// partial Fisher-Yates shuffle. intn must return a uniform value in [0, n). pool is not modified.
func Sample(pool []domain.Question, count int, intn func(n int) int) []domain.Question {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return []domain.Question{}
	}

	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	for i := 0; i < count; i++ {
		j := i + intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:count:count]
}

// sequence is the ordered question list the session's current run walks through.
func (s *QuizService) sequence(sess *Session) []domain.Question {
	if sess.mode.Random {
		return sess.order
	}
	ticket, ok := s.bank.TicketByNumber(sess.activeTicket)
	if !ok {
		return nil
	}
	return ticket.Questions
}

// nextQuestion returns the question at the session's position, sampling the run order on
// first use in random modes. nil means the run has nothing left to show.
func (s *QuizService) nextQuestion(sess *Session) *domain.Question {
	if sess.state != domain.StateInProgress {
		return nil
	}
	if sess.mode.Random && !sess.materialized {
		sess.order = Sample(s.bank.AllQuestions(), sess.mode.Questions, s.intn)
		sess.materialized = true
	}
	return s.questionAt(sess)
}

// currentQuestion is nextQuestion without side effects.
func (s *QuizService) currentQuestion(sess *Session) *domain.Question {
	if sess.state != domain.StateInProgress {
		return nil
	}
	return s.questionAt(sess)
}

func (s *QuizService) questionAt(sess *Session) *domain.Question {
	seq := s.sequence(sess)
	if sess.position >= len(seq) || sess.position >= sess.mode.Questions {
		return nil
	}
	q := seq[sess.position]
	return &q
}
