package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleStatus represents the lifecycle state of a schedule.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "DRAFT"
	ScheduleStatusPublished ScheduleStatus = "PUBLISHED"
	ScheduleStatusCanceled  ScheduleStatus = "CANCELED"
)

func (s ScheduleStatus) String() string { return string(s) }

func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusDraft, ScheduleStatusPublished, ScheduleStatusCanceled:
		return true
	}
	return false
}

// ScheduleType classifies what kind of gathering a schedule represents.
type ScheduleType string

const (
	ScheduleTypeService   ScheduleType = "SERVICE"
	ScheduleTypeRehearsal ScheduleType = "REHEARSAL"
	ScheduleTypeEvent     ScheduleType = "EVENT"
	ScheduleTypeMeeting   ScheduleType = "MEETING"
)

func (t ScheduleType) String() string { return string(t) }

func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleTypeService, ScheduleTypeRehearsal, ScheduleTypeEvent, ScheduleTypeMeeting:
		return true
	}
	return false
}

func ParseScheduleTypeFromString(s string) (ScheduleType, error) {
	t := ScheduleType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid schedule type %q", ErrValidation, s)
	}
	return t, nil
}

// Schedule is a single generated shift. It is created by a batch but remains
// a first-class entity afterwards.
type Schedule struct {
	ID              string
	Name            string
	Description     string
	Local           string
	StartsAt        time.Time
	EndsAt          time.Time
	ScheduleType    ScheduleType
	Status          ScheduleStatus
	MusicTemplateID *string
	CreatedBy       string
	ChurchID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
