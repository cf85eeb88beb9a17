package domain

import (
	"errors"
	"testing"
	"time"
)

func validAdHocRequest() BulkScheduleRequest {
	return BulkScheduleRequest{
		Quantity:     5,
		NameBase:     "Sunday Service",
		Local:        "Main Hall",
		StartTime:    "09:00",
		EndTime:      "11:30",
		ScheduleType: ScheduleTypeService,
		Recurrence:   RecurrenceWeekly,
		StartDate:    time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		AreaIDs:      []string{"area-1", "area-2"},
		RoleRequirements: []RoleRequirement{
			{AreaID: "area-1", RoleID: "role-vocal", Headcount: 2},
			{AreaID: "area-2", RoleID: "role-sound", Headcount: 1},
		},
	}
}

func TestBulkScheduleRequestValidate(t *testing.T) {
	t.Parallel()

	templateID := "tpl-1"

	tests := []struct {
		name    string
		mutate  func(*BulkScheduleRequest)
		wantErr bool
	}{
		{
			name:   "valid ad-hoc request",
			mutate: func(r *BulkScheduleRequest) {},
		},
		{
			name: "valid template request without areas or roles",
			mutate: func(r *BulkScheduleRequest) {
				r.TemplateID = &templateID
				r.AreaIDs = nil
				r.RoleRequirements = nil
				r.ScheduleType = ""
			},
		},
		{
			name:    "quantity below minimum",
			mutate:  func(r *BulkScheduleRequest) { r.Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "quantity above maximum",
			mutate:  func(r *BulkScheduleRequest) { r.Quantity = MaxBulkQuantity + 1 },
			wantErr: true,
		},
		{
			name:    "missing name",
			mutate:  func(r *BulkScheduleRequest) { r.NameBase = "  " },
			wantErr: true,
		},
		{
			name:    "invalid recurrence",
			mutate:  func(r *BulkScheduleRequest) { r.Recurrence = "YEARLY" },
			wantErr: true,
		},
		{
			name:    "missing start date",
			mutate:  func(r *BulkScheduleRequest) { r.StartDate = time.Time{} },
			wantErr: true,
		},
		{
			name:    "malformed start time",
			mutate:  func(r *BulkScheduleRequest) { r.StartTime = "9am" },
			wantErr: true,
		},
		{
			name:    "malformed end time",
			mutate:  func(r *BulkScheduleRequest) { r.EndTime = "25:00" },
			wantErr: true,
		},
		{
			name: "ad-hoc without areas",
			mutate: func(r *BulkScheduleRequest) {
				r.AreaIDs = nil
			},
			wantErr: true,
		},
		{
			name: "ad-hoc without role requirements",
			mutate: func(r *BulkScheduleRequest) {
				r.RoleRequirements = nil
			},
			wantErr: true,
		},
		{
			name: "ad-hoc without schedule type",
			mutate: func(r *BulkScheduleRequest) {
				r.ScheduleType = ""
			},
			wantErr: true,
		},
		{
			name: "role requirement outside selected areas",
			mutate: func(r *BulkScheduleRequest) {
				r.RoleRequirements[1].AreaID = "area-99"
			},
			wantErr: true,
		},
		{
			name: "role requirement with zero headcount",
			mutate: func(r *BulkScheduleRequest) {
				r.RoleRequirements[0].Headcount = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validAdHocRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestCombineDateTime(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)

	got, err := CombineDateTime(day, "19:30")
	if err != nil {
		t.Fatalf("CombineDateTime() unexpected error = %v", err)
	}

	want := time.Date(2025, time.March, 2, 19, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("CombineDateTime() = %v, want %v", got, want)
	}

	if _, err := CombineDateTime(day, "late"); err == nil {
		t.Fatal("CombineDateTime() expected error for malformed time")
	}
}
