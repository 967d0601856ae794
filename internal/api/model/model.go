package model

import (
	"database/sql"
	"time"
)

// Job is the persisted evaluation job row, keyed by (round_id, card_id).
type Job struct {
	RoundID      string         `db:"round_id"`
	CardID       string         `db:"card_id"`
	Status       string         `db:"status"`
	Result       sql.NullString `db:"result"`
	ErrorMessage sql.NullString `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}
