package domain

import (
	"fmt"
	"strings"
	"time"
)

// Quantity limits for one bulk schedule request.
const (
	MinBulkQuantity = 1
	MaxBulkQuantity = 365
)

const timeOfDayLayout = "15:04"

// RoleRequirement is one role slot requested for every generated schedule.
type RoleRequirement struct {
	AreaID    string `json:"areaId"`
	RoleID    string `json:"roleId"`
	Headcount int    `json:"headcount"`
}

// BulkScheduleRequest is the immutable descriptor of a bulk schedule
// generation request. It is built once on the request path and carried
// unchanged to the asynchronous worker.
//
// Either TemplateID is set, or the explicit area set and role requirement
// list are non-empty and ScheduleType is valid.
type BulkScheduleRequest struct {
	Quantity         int               `json:"quantity"`
	NameBase         string            `json:"nameBase"`
	Description      string            `json:"description,omitempty"`
	Local            string            `json:"local,omitempty"`
	StartTime        string            `json:"startTime"`
	EndTime          string            `json:"endTime"`
	ScheduleType     ScheduleType      `json:"scheduleType,omitempty"`
	Recurrence       Recurrence        `json:"recurrence"`
	StartDate        time.Time         `json:"startDate"`
	AutoFill         bool              `json:"autoFill"`
	AreaIDs          []string          `json:"areaIds,omitempty"`
	RoleRequirements []RoleRequirement `json:"roleRequirements,omitempty"`
	TemplateID       *string           `json:"templateId,omitempty"`
	MusicTemplateID  *string           `json:"musicTemplateId,omitempty"`
}

func (r *BulkScheduleRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: bulk schedule request is required", ErrValidation)
	}

	if r.Quantity < MinBulkQuantity || r.Quantity > MaxBulkQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d (got %d)",
			ErrValidation, MinBulkQuantity, MaxBulkQuantity, r.Quantity)
	}
	if strings.TrimSpace(r.NameBase) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !r.Recurrence.IsValid() {
		return fmt.Errorf("%w: invalid recurrence %q", ErrValidation, r.Recurrence)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if _, err := ParseTimeOfDay(r.StartTime); err != nil {
		return fmt.Errorf("%w: invalid start time %q", ErrValidation, r.StartTime)
	}
	if _, err := ParseTimeOfDay(r.EndTime); err != nil {
		return fmt.Errorf("%w: invalid end time %q", ErrValidation, r.EndTime)
	}

	if r.TemplateID != nil && strings.TrimSpace(*r.TemplateID) != "" {
		return nil
	}

	// Ad-hoc requests must carry the full descriptor themselves.
	if len(r.AreaIDs) == 0 {
		return fmt.Errorf("%w: at least one area is required without a template", ErrValidation)
	}
	if len(r.RoleRequirements) == 0 {
		return fmt.Errorf("%w: at least one role requirement is required without a template", ErrValidation)
	}
	if !r.ScheduleType.IsValid() {
		return fmt.Errorf("%w: schedule type is required without a template", ErrValidation)
	}

	areas := make(map[string]struct{}, len(r.AreaIDs))
	for _, areaID := range r.AreaIDs {
		if strings.TrimSpace(areaID) == "" {
			return fmt.Errorf("%w: area id must not be empty", ErrValidation)
		}
		areas[areaID] = struct{}{}
	}

	for i, req := range r.RoleRequirements {
		if strings.TrimSpace(req.AreaID) == "" || strings.TrimSpace(req.RoleID) == "" {
			return fmt.Errorf("%w: role requirement %d is missing area or role", ErrValidation, i+1)
		}
		if req.Headcount < 1 {
			return fmt.Errorf("%w: role requirement %d needs headcount >= 1", ErrValidation, i+1)
		}
		if _, ok := areas[req.AreaID]; !ok {
			return fmt.Errorf("%w: role requirement %d references area %s outside the selected areas",
				ErrValidation, i+1, req.AreaID)
		}
	}

	return nil
}

// ParseTimeOfDay parses an HH:MM time-of-day string.
func ParseTimeOfDay(value string) (time.Time, error) {
	return time.Parse(timeOfDayLayout, strings.TrimSpace(value))
}

// CombineDateTime merges a calendar date with an HH:MM time-of-day string
// into a single timestamp in the date's location.
func CombineDateTime(date time.Time, timeOfDay string) (time.Time, error) {
	tod, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), 0, 0, date.Location(),
	), nil
}
