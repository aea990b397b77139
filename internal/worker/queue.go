package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alertQueue    = "jobs:alertas"
	alertDLQ      = "dlq:jobs:alertas"
	enqueueWindow = 5 * time.Second
)

// AlertKind mirrors the payload kinds the back-office webhook understands.
const (
	AlertRefundFailed   = "refund_failed"
	AlertRegisterClosed = "register_closed"
)

// AlertJobPayload is the unit of work on the alert queue. Jobs are fire-and
// -forget from the caller's point of view; delivery guarantees live here.
type AlertJobPayload struct {
	Kind       string    `json:"kind"`
	StoreID    string    `json:"store_id"`
	OrderID    string    `json:"order_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Message    string    `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// AlertEnqueuer is what services depend on; *Queue implements it.
type AlertEnqueuer interface {
	EnqueueAlert(ctx context.Context, payload AlertJobPayload) error
}

// Queue pushes alert jobs onto a Redis list consumed by the worker pool.
type Queue struct {
	rdb *redis.Client
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

func (q *Queue) EnqueueAlert(ctx context.Context, payload AlertJobPayload) error {
	if payload.EnqueuedAt.IsZero() {
		payload.EnqueuedAt = time.Now()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, enqueueWindow)
	defer cancel()
	return q.rdb.LPush(ctx, alertQueue, data).Err()
}
