package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/metrics"
)

// RedisPubSub implements Publisher using Redis Pub/Sub. It is the
// "external observability/control surface" described in the design
// notes: a best-effort mirror, never a path the scheduler itself reads
// from.
type RedisPubSub struct {
	client  *redis.Client
	channel string

	mu   sync.Mutex
	subs []*redis.PubSub
}

// NewRedisPubSub creates a publisher that mirrors every event onto a
// single channel. Unlike the teacher's per-event-type channel naming,
// one channel is enough here: subscribers filter by Event.Type if they
// care, matching the low event-type cardinality of a single queue.
func NewRedisPubSub(client *redis.Client, channel string) *RedisPubSub {
	return &RedisPubSub{client: client, channel: channel}
}

func (r *RedisPubSub) Publish(ctx context.Context, event *Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	start := time.Now()
	err = r.client.Publish(ctx, r.channel, data).Err()
	metrics.RecordRedisOperation("PUBLISH", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordRedisError("PUBLISH")
		return fmt.Errorf("publish event: %w", err)
	}

	logger.WithComponent("events").Debug().
		Str("event_type", string(event.Type)).
		Str("channel", r.channel).
		Msg("event published")
	return nil
}

func (r *RedisPubSub) Subscribe(ctx context.Context, eventTypes ...EventType) (<-chan *Event, error) {
	wanted := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		wanted[et] = true
	}

	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	r.mu.Lock()
	r.subs = append(r.subs, pubsub)
	r.mu.Unlock()

	eventCh := make(chan *Event, 100)
	go func() {
		defer close(eventCh)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, err := FromJSON([]byte(msg.Payload))
				if err != nil {
					logger.WithComponent("events").Error().Err(err).Msg("failed to parse event")
					continue
				}
				if len(wanted) > 0 && !wanted[event.Type] {
					continue
				}
				select {
				case eventCh <- event:
				default:
					logger.WithComponent("events").Warn().
						Str("event_type", string(event.Type)).
						Msg("event channel full, dropping event")
				}
			}
		}
	}()

	return eventCh, nil
}

func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		s.Close()
	}
	r.subs = nil
	return r.client.Close()
}
