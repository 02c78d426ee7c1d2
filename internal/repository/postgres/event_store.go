package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/repository"
)

// AppendAtHead skips the optimistic version check and appends after the
// current last event of the stream.
const AppendAtHead = -1

type eventStore struct {
	db *sqlx.DB
}

// NewEventStore creates a new EventStore backed by Postgres.
func NewEventStore(db *sqlx.DB) repository.EventStore {
	return &eventStore{db: db}
}

// appendEvents writes events to a stream inside tx. With an expectedVersion
// other than AppendAtHead the stream must currently end at that version.
func appendEvents(ctx context.Context, tx *sqlx.Tx, streamID, streamType string, expectedVersion int, events ...entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	var currentVersion int
	err := tx.GetContext(ctx, &currentVersion, "SELECT COALESCE(MAX(version), 0) FROM order_events WHERE stream_id = $1", streamID)
	if err != nil {
		return errors.Wrap(err, "failed to get current stream version")
	}
	if expectedVersion != AppendAtHead && currentVersion != expectedVersion {
		return errors.Errorf("concurrency exception: expected version %d, got %d", expectedVersion, currentVersion)
	}

	version := currentVersion
	now := time.Now().UTC()
	for _, event := range events {
		version++

		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal event %s", event.EventType())
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_events (id, stream_id, stream_type, version, event_type, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			uuid.NewString(), streamID, streamType, version, event.EventType(), payload, now,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert event %s", event.EventType())
		}
	}
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventRecord, error) {
	events := []entity.EventRecord{}
	err := s.db.SelectContext(ctx, &events,
		"SELECT id, stream_id, stream_type, version, event_type, payload, created_at FROM order_events WHERE stream_id = $1 ORDER BY version ASC",
		streamID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load events for stream %s", streamID)
	}
	return events, nil
}
