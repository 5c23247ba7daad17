package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"pdd-quiz-service/internal/bank"
	"pdd-quiz-service/internal/domain"
)

// TicketCache caches the ticket bank in Redis (one hash field per ticket) and falls back
// to a loader on cache miss.
// Tickets are stored as: HSET pdd:bank:tickets {number} {ticket JSON}
type TicketCache struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTicketCache(client *redis.Client, loader bank.Loader, ttl time.Duration) *TicketCache {
	return &TicketCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const ticketsKey = "pdd:bank:tickets"

func (c *TicketCache) LoadTickets(ctx context.Context) ([]domain.Ticket, error) {
	if tickets, ok := c.cached(ctx); ok {
		return tickets, nil
	}

	result, err, _ := c.sf.Do(ticketsKey, func() (interface{}, error) {
		if tickets, ok := c.cached(ctx); ok {
			return tickets, nil
		}

		tickets, err := c.loader.LoadTickets(ctx)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for _, t := range tickets {
			raw, err := json.Marshal(t)
			if err != nil {
				return nil, fmt.Errorf("marshal ticket %d: %w", t.Number, err)
			}
			pipe.HSet(ctx, ticketsKey, strconv.Itoa(t.Number), raw)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, ticketsKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return tickets, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Ticket), nil
}

// cached returns the tickets held in Redis. Unreadable entries count as a miss.
func (c *TicketCache) cached(ctx context.Context) ([]domain.Ticket, bool) {
	fields, err := c.client.HGetAll(ctx, ticketsKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	tickets := make([]domain.Ticket, 0, len(fields))
	for _, raw := range fields {
		var t domain.Ticket
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, false
		}
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Number < tickets[j].Number })
	return tickets, true
}

func (c *TicketCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
