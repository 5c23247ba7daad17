package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pdd-quiz-service/internal/domain"
)

// TicketLoader reads the ticket bank from a JSON file laid out as
// [{"ticket_number": 1, "questions": [{"question_text": ..., "answers": [...]}]}].
type TicketLoader struct {
	path string
}

func NewTicketLoader(path string) *TicketLoader {
	return &TicketLoader{path: path}
}

func (l *TicketLoader) LoadTickets(_ context.Context) ([]domain.Ticket, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	return ParseTickets(data)
}

type rawTicket struct {
	Number    looseString   `json:"ticket_number"`
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Text        string          `json:"question_text"`
	Answers     []domain.Answer `json:"answers"`
	Explanation string          `json:"explanation"`
	Image       string          `json:"image"`
	ErrorRate   looseString     `json:"error_rate"`
}

// looseString accepts JSON strings and numbers alike; the source data mixes both.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

// ParseTickets decodes the JSON bank format.
func ParseTickets(data []byte) ([]domain.Ticket, error) {
	var raw []rawTicket
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(raw))
	for i, rt := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(string(rt.Number)))
		if err != nil {
			return nil, fmt.Errorf("ticket #%d: bad ticket_number %q", i+1, rt.Number)
		}
		t := domain.Ticket{Number: n, Questions: make([]domain.Question, 0, len(rt.Questions))}
		for _, rq := range rt.Questions {
			t.Questions = append(t.Questions, domain.Question{
				Text:        rq.Text,
				Answers:     rq.Answers,
				Explanation: rq.Explanation,
				Image:       rq.Image,
				ErrorRate:   string(rq.ErrorRate),
			})
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
