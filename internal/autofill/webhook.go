package autofill

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mbarroso/escala-engine/internal/domain"
)

const defaultAssignTimeout = 30 * time.Second

type assignRequest struct {
	ScheduleID      string           `json:"scheduleId"`
	AreaIDs         []string         `json:"areaIds"`
	Roles           []assignRoleItem `json:"roles"`
	MusicTemplateID *string          `json:"musicTemplateId,omitempty"`
}

type assignRoleItem struct {
	AreaID    string `json:"areaId"`
	RoleID    string `json:"roleId"`
	Headcount int    `json:"headcount"`
}

// HTTPAssigner invokes the external auto-fill service over HTTP.
type HTTPAssigner struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPAssigner(endpoint string) (*HTTPAssigner, error) {
	client := resty.New()
	client.SetTimeout(defaultAssignTimeout)
	client.SetRetryCount(0)

	return NewHTTPAssignerWithClient(endpoint, client)
}

func NewHTTPAssignerWithClient(endpoint string, client *resty.Client) (*HTTPAssigner, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("auto-fill endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid auto-fill endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultAssignTimeout)
	}
	client.SetRetryCount(0)

	return &HTTPAssigner{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (a *HTTPAssigner) Assign(ctx context.Context, req AssignmentRequest) error {
	if a == nil || a.client == nil {
		return fmt.Errorf("assigner is not initialized")
	}
	if strings.TrimSpace(req.ScheduleID) == "" {
		return fmt.Errorf("schedule id is required")
	}

	body := assignRequest{
		ScheduleID:      req.ScheduleID,
		AreaIDs:         req.AreaIDs,
		Roles:           toAssignRoleItems(req.RoleRequirements),
		MusicTemplateID: req.MusicTemplateID,
	}

	response, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(a.endpoint)
	if err != nil {
		return &AssignerError{
			Message: "auto-fill request failed",
			Cause:   err,
		}
	}
	if response == nil {
		return &AssignerError{Message: "auto-fill returned empty response"}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &AssignerError{
		StatusCode: statusCode,
		Message:    assignerErrorMessage(statusCode, strings.TrimSpace(response.String())),
	}
}

func assignerErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("auto-fill returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func toAssignRoleItems(requirements []domain.RoleRequirement) []assignRoleItem {
	items := make([]assignRoleItem, 0, len(requirements))
	for _, req := range requirements {
		items = append(items, assignRoleItem{
			AreaID:    req.AreaID,
			RoleID:    req.RoleID,
			Headcount: req.Headcount,
		})
	}
	return items
}
