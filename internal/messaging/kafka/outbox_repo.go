package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"worksync/internal/shared/contextutil"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"

	maxOutboxAttempts  = 10
	maxErrorMessageLen = 500
	retryBaseDelay     = 15 * time.Second
	retryMaxDelay      = 10 * time.Minute
)

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

// NewOutboxEvent marshals payload into a pending event tagged with the
// request id found in ctx.
func NewOutboxEvent(ctx context.Context, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	query := `
INSERT INTO outbox_events (
	id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// outboxColumns is the scan order used by scanOutboxEvent.
const outboxColumns = `id::text, COALESCE(request_id, ''), aggregate_type, aggregate_id::text,
	event_type, topic, payload, status, retry_count, COALESCE(next_retry_at, created_at)`

// ListPending returns rows due for delivery, oldest first. Rows that already
// failed maxOutboxAttempts times are left for manual inspection.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	query := `SELECT ` + outboxColumns + `
FROM outbox_events
WHERE status IN ($1, $2)
	AND retry_count < $3
	AND COALESCE(next_retry_at, created_at) <= NOW()
ORDER BY created_at ASC
LIMIT $4`

	rows, err := r.querier().QueryContext(ctx, query, OutboxStatusPending, OutboxStatusFailed, maxOutboxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		e, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.execer().ExecContext(ctx,
		`UPDATE outbox_events SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW() WHERE id = $1`,
		id, OutboxStatusSent,
	)
	return err
}

// MarkFailed records the failure and schedules the next attempt with
// RetryDelay.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	var attempts int
	err := r.querier().QueryRowContext(ctx,
		`SELECT retry_count FROM outbox_events WHERE id = $1`, id,
	).Scan(&attempts)
	if err != nil {
		return fmt.Errorf("load outbox event %s: %w", id, err)
	}

	_, err = r.execer().ExecContext(ctx,
		`UPDATE outbox_events SET status = $2, retry_count = retry_count + 1, error_message = $3, next_retry_at = $4, updated_at = NOW() WHERE id = $1`,
		id, OutboxStatusFailed, truncateReason(reason), time.Now().UTC().Add(RetryDelay(attempts+1)),
	)
	return err
}

// RetryDelay doubles from retryBaseDelay per attempt and stops at retryMaxDelay.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := retryBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}

func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= maxErrorMessageLen {
		return reason
	}
	return string(runes[:maxErrorMessageLen])
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutboxEvent(row rowScanner) (OutboxEvent, error) {
	var e OutboxEvent
	err := row.Scan(
		&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
		&e.EventType, &e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt,
	)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("scan outbox event: %w", err)
	}
	return e, nil
}

type queryer interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *outboxRepository) querier() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
