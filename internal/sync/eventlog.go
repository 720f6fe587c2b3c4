package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event is one append-only audit entry: a submitted session, an issued
// certificate.
type Event struct {
	Seq       int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Append marshals payload and appends it under (typ, key). Satisfies
// exam.EventSink.
func (r *EventRepo) Append(ctx context.Context, typ, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}
