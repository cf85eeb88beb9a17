package queue

import (
	"fmt"
	"strings"

	"github.com/mbarroso/escala-engine/internal/domain"
)

// BatchMessage is the broker payload for one bulk schedule batch job. The
// request descriptor travels with the message so the worker never depends on
// request-time state other than the batch row itself.
type BatchMessage struct {
	BatchID  string                     `json:"batchId"`
	UserID   string                     `json:"userId"`
	ChurchID string                     `json:"churchId"`
	Request  domain.BulkScheduleRequest `json:"request"`
}

func (m BatchMessage) Validate() error {
	if strings.TrimSpace(m.BatchID) == "" {
		return fmt.Errorf("batchId is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("userId is required")
	}
	if strings.TrimSpace(m.ChurchID) == "" {
		return fmt.Errorf("churchId is required")
	}
	if err := m.Request.Validate(); err != nil {
		return fmt.Errorf("invalid request descriptor: %w", err)
	}
	return nil
}
