package domain

import (
	"errors"
)

// Job status values. Transitions are monotonic:
// PENDING -> PROCESSING -> COMPLETED | FAILED.
const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)

var (
	// ErrJobNotFound is returned when no job exists for a (round_id, card_id) pair
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a (round_id, card_id) pair is submitted twice
	ErrDuplicateJob = errors.New("job for this round_id and card_id already exists")
)
