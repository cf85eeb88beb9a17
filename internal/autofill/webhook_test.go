package autofill

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbarroso/escala-engine/internal/domain"
)

func TestHTTPAssignerAssignSuccess(t *testing.T) {
	t.Parallel()

	var gotBody assignRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"assigned":3}`))
	}))
	defer server.Close()

	assigner, err := NewHTTPAssigner(server.URL)
	if err != nil {
		t.Fatalf("NewHTTPAssigner() error = %v", err)
	}

	musicTemplateID := "music-tpl-1"
	err = assigner.Assign(context.Background(), AssignmentRequest{
		ScheduleID: "sched-1",
		AreaIDs:    []string{"area-1", "area-2"},
		RoleRequirements: []domain.RoleRequirement{
			{AreaID: "area-1", RoleID: "role-vocal", Headcount: 2},
		},
		MusicTemplateID: &musicTemplateID,
	})
	if err != nil {
		t.Fatalf("Assign() unexpected error: %v", err)
	}

	if gotBody.ScheduleID != "sched-1" {
		t.Fatalf("request.scheduleId = %q, want sched-1", gotBody.ScheduleID)
	}
	if len(gotBody.AreaIDs) != 2 {
		t.Fatalf("request.areaIds len = %d, want 2", len(gotBody.AreaIDs))
	}
	if len(gotBody.Roles) != 1 || gotBody.Roles[0].Headcount != 2 {
		t.Fatalf("request.roles = %+v, want one role with headcount 2", gotBody.Roles)
	}
	if gotBody.MusicTemplateID == nil || *gotBody.MusicTemplateID != musicTemplateID {
		t.Fatalf("request.musicTemplateId = %v, want %q", gotBody.MusicTemplateID, musicTemplateID)
	}
}

func TestHTTPAssignerAssignErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("no available volunteers"))
	}))
	defer server.Close()

	assigner, err := NewHTTPAssigner(server.URL)
	if err != nil {
		t.Fatalf("NewHTTPAssigner() error = %v", err)
	}

	err = assigner.Assign(context.Background(), AssignmentRequest{ScheduleID: "sched-1"})
	if err == nil {
		t.Fatal("Assign() expected error for conflict status")
	}

	var assignerErr *AssignerError
	if !errors.As(err, &assignerErr) {
		t.Fatalf("Assign() error = %T, want *AssignerError", err)
	}
	if assignerErr.StatusCode != http.StatusConflict {
		t.Fatalf("StatusCode = %d, want %d", assignerErr.StatusCode, http.StatusConflict)
	}
}

func TestNewHTTPAssignerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTPAssigner(""); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := NewHTTPAssigner("not a url"); err == nil {
		t.Fatal("expected error for malformed endpoint")
	}
	if _, err := NewHTTPAssignerWithClient("http://localhost:9", nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestHTTPAssignerAssignMissingScheduleID(t *testing.T) {
	t.Parallel()

	assigner, err := NewHTTPAssigner("http://localhost:9")
	if err != nil {
		t.Fatalf("NewHTTPAssigner() error = %v", err)
	}

	if err := assigner.Assign(context.Background(), AssignmentRequest{}); err == nil {
		t.Fatal("Assign() expected error for missing schedule id")
	}
}
