package domain

import (
	"errors"
	"testing"
)

func TestParseBatchStatusFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    BatchStatus
		wantErr bool
	}{
		{name: "valid uppercase", input: "COMPLETED", want: BatchStatusCompleted},
		{name: "valid lowercase with spaces", input: " pending ", want: BatchStatusPending},
		{name: "invalid", input: "RUNNING", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBatchStatusFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseBatchStatusFromString() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseBatchStatusFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseBatchStatusFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status BatchStatus
		want   bool
	}{
		{status: BatchStatusPending, want: false},
		{status: BatchStatusProcessing, want: false},
		{status: BatchStatusCompleted, want: true},
		{status: BatchStatusFailed, want: true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Fatalf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}

	var nilBatch *BatchRecord
	if nilBatch.Terminal() {
		t.Fatal("nil batch should not be terminal")
	}
}

func TestParseScheduleTypeFromString(t *testing.T) {
	t.Parallel()

	got, err := ParseScheduleTypeFromString(" service ")
	if err != nil {
		t.Fatalf("ParseScheduleTypeFromString() unexpected error = %v", err)
	}
	if got != ScheduleTypeService {
		t.Fatalf("ParseScheduleTypeFromString() = %s, want %s", got, ScheduleTypeService)
	}

	_, err = ParseScheduleTypeFromString("party")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseScheduleTypeFromString() error = %v, want ErrValidation", err)
	}
}

func TestScheduleTemplateAreaIDs(t *testing.T) {
	t.Parallel()

	tpl := &ScheduleTemplate{
		Roles: []TemplateRoleRequirement{
			{AreaID: "area-1", RoleID: "r1", Headcount: 1},
			{AreaID: "area-1", RoleID: "r2", Headcount: 2},
			{AreaID: "area-2", RoleID: "r3", Headcount: 1},
		},
	}

	got := tpl.AreaIDs()
	if len(got) != 2 || got[0] != "area-1" || got[1] != "area-2" {
		t.Fatalf("AreaIDs() = %v, want [area-1 area-2]", got)
	}

	var nilTpl *ScheduleTemplate
	if nilTpl.AreaIDs() != nil {
		t.Fatal("nil template should return nil areas")
	}
}
