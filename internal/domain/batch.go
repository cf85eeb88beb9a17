package domain

import (
	"fmt"
	"strings"
	"time"
)

// BatchStatus represents the processing state of a bulk schedule batch.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "PENDING"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

func (s BatchStatus) String() string { return string(s) }

func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusProcessing, BatchStatusCompleted, BatchStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the batch reached a final state. Terminal batches
// must not be mutated again.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

func ParseBatchStatusFromString(s string) (BatchStatus, error) {
	st := BatchStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid batch status %q", ErrValidation, s)
	}
	return st, nil
}

// BatchRecord tracks the overall progress of one bulk schedule generation
// request. TotalSchedules is fixed at creation; CreatedSchedules and
// FailedSchedules only grow, and their sum equals TotalSchedules once the
// batch is terminal.
type BatchRecord struct {
	ID               string
	Name             string
	TotalSchedules   int
	CreatedSchedules int
	FailedSchedules  int
	Recurrence       Recurrence
	StartDate        time.Time
	EndDate          *time.Time
	Status           BatchStatus
	ErrorMessage     *string
	TemplateID       *string
	UserID           string
	ChurchID         string
	ScheduleIDs      []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (b *BatchRecord) Terminal() bool {
	if b == nil {
		return false
	}
	return b.Status.Terminal()
}
