package app

import (
	"math/rand"
	"testing"

	"pdd-quiz-service/internal/domain"
)

func TestSampleDrawsDistinctQuestions(t *testing.T) {
	pool := make([]domain.Question, 30)
	for i := range pool {
		pool[i] = domain.Question{Ticket: 1, Number: i + 1}
	}
	rnd := rand.New(rand.NewSource(1))

	for _, count := range []int{0, 1, 10, 30, 100} {
		got := Sample(pool, count, rnd.Intn)
		want := count
		if want > len(pool) {
			want = len(pool)
		}
		if len(got) != want {
			t.Fatalf("count %d: expected %d questions, got %d", count, want, len(got))
		}
		seen := map[int]bool{}
		for _, q := range got {
			if seen[q.Number] {
				t.Fatalf("count %d: duplicate question %d", count, q.Number)
			}
			seen[q.Number] = true
		}
	}

	for i, q := range pool {
		if q.Number != i+1 {
			t.Fatalf("pool was reordered at %d", i)
		}
	}
}

func TestSampleIsUnbiased(t *testing.T) {
	pool := []domain.Question{{Number: 1}, {Number: 2}, {Number: 3}, {Number: 4}}
	rnd := rand.New(rand.NewSource(42))

	const rounds = 40000
	firsts := map[int]int{}
	for i := 0; i < rounds; i++ {
		firsts[Sample(pool, 2, rnd.Intn)[0].Number]++
	}
	for n := 1; n <= 4; n++ {
		share := float64(firsts[n]) / rounds
		if share < 0.23 || share > 0.27 {
			t.Fatalf("question %d led %.3f of samples, expected ~0.25", n, share)
		}
	}
}

func TestSummarize(t *testing.T) {
	exam := domain.Mode{Key: domain.ModeExam, Questions: 20}
	history := func(correct ...bool) []domain.HistoryEntry {
		out := make([]domain.HistoryEntry, len(correct))
		for i, c := range correct {
			out[i] = domain.HistoryEntry{Ordinal: i + 1, Correct: c}
		}
		return out
	}

	tests := []struct {
		name    string
		state   domain.SessionState
		percent float64
		passed  bool
	}{
		{"finished perfect", domain.SessionState{Mode: exam, State: domain.StateFinished, Score: 20, History: history(make([]bool, 20)...)}, 100, true},
		{"finished threshold", domain.SessionState{Mode: exam, State: domain.StateFinished, Score: 14, History: history(make([]bool, 14)...)}, 70, true},
		{"finished with skips", domain.SessionState{Mode: exam, State: domain.StateFinished, Score: 10, History: history(make([]bool, 10)...)}, 50, false},
		{"cancelled partial", domain.SessionState{Mode: exam, State: domain.StateCancelled, Score: 3, History: history(true, true, true, false)}, 75, true},
		{"cancelled empty", domain.SessionState{Mode: exam, State: domain.StateCancelled}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.state)
			if got.Percentage != tc.percent || got.Passed != tc.passed {
				t.Fatalf("expected %.1f/%v, got %+v", tc.percent, tc.passed, got)
			}
			if got.Attempted != len(tc.state.History) || got.Target != 20 || got.Scored != tc.state.Score {
				t.Fatalf("unexpected counts %+v", got)
			}
		})
	}
}
