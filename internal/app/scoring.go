package app

import "pdd-quiz-service/internal/domain"

// PassThreshold is the minimum percentage a run needs to pass.
const PassThreshold = 70.0

// Summarize computes the score report of a session. Completed runs are measured against
// the mode's full target, so skipped questions count against the result; cancelled runs
// are measured against the questions actually answered.
func Summarize(state domain.SessionState) domain.Summary {
	attempted := len(state.History)
	target := state.Mode.Questions

	denominator := target
	if state.State == domain.StateCancelled {
		denominator = attempted
	}

	var percentage float64
	if denominator > 0 {
		percentage = float64(state.Score) / float64(denominator) * 100
	}

	return domain.Summary{
		Mode:       state.Mode,
		State:      state.State,
		Scored:     state.Score,
		Attempted:  attempted,
		Target:     target,
		Percentage: percentage,
		Passed:     percentage >= PassThreshold,
	}
}

// tally is the running accuracy over answered questions.
func tally(state domain.SessionState) domain.Stats {
	stats := domain.Stats{Mode: state.Mode, Score: state.Score, Attempted: len(state.History)}
	if stats.Attempted == 0 {
		return stats
	}
	correct := 0
	for _, h := range state.History {
		if h.Correct {
			correct++
		}
	}
	stats.Percentage = float64(correct) / float64(stats.Attempted) * 100
	return stats
}
