package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"caixapos/internal/infra"
)

const (
	popTimeout  = 5 * time.Second
	maxAttempts = 3
	baseBackoff = time.Second
)

// Pool drains the alert queue with a fixed set of goroutines. Each job is
// retried with exponential backoff behind a circuit breaker; jobs that still
// fail land on the dead letter list for manual inspection.
type Pool struct {
	rdb      *redis.Client
	notifier *infra.WebhookNotifier
	breaker  *infra.CircuitBreaker
	size     int
}

func NewPool(rdb *redis.Client, notifier *infra.WebhookNotifier, breakerCfg infra.CircuitBreakerConfig, size int) *Pool {
	if size < 1 {
		size = 1
	}
	breakerCfg.Name = "alert-webhook"
	return &Pool{
		rdb:      rdb,
		notifier: notifier,
		breaker:  infra.NewCircuitBreaker(breakerCfg),
		size:     size,
	}
}

func (p *Pool) Start(ctx context.Context) {
	log.Info().Int("workers", p.size).Msg("alert worker pool started")
	for i := 0; i < p.size; i++ {
		go p.run(ctx, i)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("alert worker stopped")
			return
		default:
		}

		res, err := p.rdb.BRPop(ctx, popTimeout, alertQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("alert queue pop failed")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) < 2 {
			continue
		}
		p.handle(ctx, id, []byte(res[1]))
	}
}

func (p *Pool) handle(ctx context.Context, id int, raw []byte) {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Int("worker", id).Msg("discarding malformed alert job")
		return
	}

	err := p.withRetry(ctx, func() error {
		return p.breaker.Execute(func() error {
			return p.notifier.Notify(ctx, infra.AlertPayload{
				Kind:      payload.Kind,
				StoreID:   payload.StoreID,
				OrderID:   payload.OrderID,
				SessionID: payload.SessionID,
				Message:   payload.Message,
				At:        payload.EnqueuedAt.Format(time.RFC3339),
			})
		})
	})
	if err != nil {
		log.Error().Err(err).
			Str("kind", payload.Kind).
			Str("store_id", payload.StoreID).
			Msg("alert delivery exhausted retries, moving to DLQ")
		p.deadLetter(ctx, raw)
		return
	}
	log.Info().Str("kind", payload.Kind).Str("store_id", payload.StoreID).Msg("alert delivered")
}

func (p *Pool) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

func (p *Pool) deadLetter(ctx context.Context, raw []byte) {
	if err := p.rdb.LPush(ctx, alertDLQ, raw).Err(); err != nil {
		log.Error().Err(err).Msg("DLQ push failed, alert job lost")
	}
}
