package memory

import (
	"context"

	"pdd-quiz-service/internal/domain"
)

// StaticTicketLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticTicketLoader struct {
	tickets []domain.Ticket
}

func NewStaticTicketLoader(tickets []domain.Ticket) *StaticTicketLoader {
	return &StaticTicketLoader{tickets: tickets}
}

func (l *StaticTicketLoader) LoadTickets(_ context.Context) ([]domain.Ticket, error) {
	if len(l.tickets) == 0 {
		return nil, domain.ErrDataLoad
	}
	out := make([]domain.Ticket, len(l.tickets))
	copy(out, l.tickets)
	return out, nil
}
