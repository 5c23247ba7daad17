package bank

import (
	"context"
	"fmt"
	"sort"

	"pdd-quiz-service/internal/domain"
)

// Loader fetches the raw tickets from a backing source (JSON file, Postgres, fixtures).
type Loader interface {
	LoadTickets(ctx context.Context) ([]domain.Ticket, error)
}

// Bank is the immutable question bank. It is safe for concurrent reads.
type Bank struct {
	tickets map[int]domain.Ticket
	numbers []int
	all     []domain.Question
}

// Load reads tickets through loader and builds a Bank. Any failure is reported as ErrDataLoad.
func Load(ctx context.Context, loader Loader) (*Bank, error) {
	tickets, err := loader.LoadTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
	}
	return New(tickets)
}

// New validates tickets and builds a Bank. Questions get their ticket number and
// in-ticket ordinal stamped so they can be told apart once flattened.
func New(tickets []domain.Ticket) (*Bank, error) {
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%w: no tickets", domain.ErrDataLoad)
	}

	b := &Bank{tickets: make(map[int]domain.Ticket, len(tickets))}
	for _, t := range tickets {
		if t.Number <= 0 {
			return nil, fmt.Errorf("%w: invalid ticket number %d", domain.ErrDataLoad, t.Number)
		}
		if _, dup := b.tickets[t.Number]; dup {
			return nil, fmt.Errorf("%w: duplicate ticket %d", domain.ErrDataLoad, t.Number)
		}
		if len(t.Questions) == 0 {
			return nil, fmt.Errorf("%w: ticket %d has no questions", domain.ErrDataLoad, t.Number)
		}

		questions := make([]domain.Question, len(t.Questions))
		for i, q := range t.Questions {
			if len(q.Answers) < 2 {
				return nil, fmt.Errorf("%w: ticket %d question %d has %d answers", domain.ErrDataLoad, t.Number, i+1, len(q.Answers))
			}
			q.Ticket = t.Number
			q.Number = i + 1
			questions[i] = q
		}
		b.tickets[t.Number] = domain.Ticket{Number: t.Number, Questions: questions}
		b.numbers = append(b.numbers, t.Number)
	}

	sort.Ints(b.numbers)
	for _, n := range b.numbers {
		b.all = append(b.all, b.tickets[n].Questions...)
	}
	return b, nil
}

// TicketByNumber returns the ticket with number n.
func (b *Bank) TicketByNumber(n int) (domain.Ticket, bool) {
	t, ok := b.tickets[n]
	return t, ok
}

// AllQuestions returns every question in ticket order, then in-ticket order.
// The returned slice is shared; callers must not modify it.
func (b *Bank) AllQuestions() []domain.Question {
	return b.all
}

// TicketNumbers lists the ticket numbers in ascending order.
func (b *Bank) TicketNumbers() []int {
	out := make([]int, len(b.numbers))
	copy(out, b.numbers)
	return out
}

// Size returns the total number of questions.
func (b *Bank) Size() int {
	return len(b.all)
}
