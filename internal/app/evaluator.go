package app

import "pdd-quiz-service/internal/domain"

// evaluate reports whether index picks a correct answer of q.
func evaluate(q domain.Question, index int) (bool, error) {
	if index < 0 || index >= len(q.Answers) {
		return false, domain.ErrInvalidAnswer
	}
	return q.Answers[index].Correct, nil
}

func (s *QuizService) submit(sess *Session, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	q := s.currentQuestion(sess)
	if q == nil {
		return domain.AnswerResult{}, domain.ErrInvalidAnswer
	}
	if sub.Ordinal != 0 && sub.Ordinal != sess.position+1 {
		return domain.AnswerResult{}, domain.ErrStaleAnswer
	}
	correct, err := evaluate(*q, sub.Index)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	sess.recordAnswer(correct, len(s.sequence(sess)))

	result := domain.AnswerResult{Correct: correct, Finished: sess.state == domain.StateFinished}
	if !correct {
		result.Explanation = q.Explanation
	}
	return result, nil
}

func (s *QuizService) skip(sess *Session) error {
	if s.currentQuestion(sess) == nil {
		return domain.ErrInvalidAnswer
	}
	sess.recordSkip(len(s.sequence(sess)))
	return nil
}
