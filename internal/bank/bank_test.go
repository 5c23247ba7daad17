package bank

import (
	"context"
	"errors"
	"testing"

	"pdd-quiz-service/internal/domain"
)

func TestNewFlattensInTicketOrder(t *testing.T) {
	b, err := New([]domain.Ticket{
		ticket(2, "b1", "b2"),
		ticket(1, "a1", "a2", "a3"),
	})
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}

	all := b.AllQuestions()
	want := []string{"a1", "a2", "a3", "b1", "b2"}
	if len(all) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(all))
	}
	for i, q := range all {
		if q.Text != want[i] {
			t.Fatalf("question %d: expected %s, got %s", i, want[i], q.Text)
		}
	}
	if all[3].Ticket != 2 || all[3].Number != 1 {
		t.Fatalf("expected stamped ticket 2 question 1, got %d/%d", all[3].Ticket, all[3].Number)
	}

	if nums := b.TicketNumbers(); len(nums) != 2 || nums[0] != 1 || nums[1] != 2 {
		t.Fatalf("unexpected ticket numbers %v", nums)
	}
	if _, ok := b.TicketByNumber(3); ok {
		t.Fatalf("expected ticket 3 to be missing")
	}
	if tk, ok := b.TicketByNumber(1); !ok || len(tk.Questions) != 3 {
		t.Fatalf("expected ticket 1 with 3 questions, got %+v", tk)
	}
}

func TestNewRejectsMalformedBanks(t *testing.T) {
	oneAnswer := ticket(1, "q")
	oneAnswer.Questions[0].Answers = oneAnswer.Questions[0].Answers[:1]

	cases := map[string][]domain.Ticket{
		"empty":         nil,
		"zero number":   {ticket(0, "q")},
		"duplicate":     {ticket(1, "q"), ticket(1, "r")},
		"no questions":  {{Number: 1}},
		"single answer": {oneAnswer},
	}
	for name, tickets := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(tickets); !errors.Is(err, domain.ErrDataLoad) {
				t.Fatalf("expected data load error, got %v", err)
			}
		})
	}
}

func TestLoadWrapsLoaderErrors(t *testing.T) {
	_, err := Load(context.Background(), failingLoader{})
	if !errors.Is(err, domain.ErrDataLoad) {
		t.Fatalf("expected data load error, got %v", err)
	}
}

type failingLoader struct{}

func (failingLoader) LoadTickets(context.Context) ([]domain.Ticket, error) {
	return nil, errors.New("disk on fire")
}

func ticket(n int, texts ...string) domain.Ticket {
	t := domain.Ticket{Number: n}
	for _, text := range texts {
		t.Questions = append(t.Questions, domain.Question{
			Text: text,
			Answers: []domain.Answer{
				{Text: "yes", Correct: true},
				{Text: "no"},
			},
		})
	}
	return t
}
