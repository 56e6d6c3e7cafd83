package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Batch lifecycle event types.
const (
	TypeBatchDecoded = "batch_decoded"
	TypeBatchScored  = "batch_scored"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: batch ID
	DataJSON  string
	CreatedAt int64
}

// Repo appends to the append-only event_log table. The log is the audit
// trail operators consult when a batch's numbers are questioned.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key string, data any) error {
	dj, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(dj), time.Now().Unix())
	return err
}
