package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mbarroso/escala-engine/internal/domain"
)

const (
	userIDHeader   = "X-User-ID"
	churchIDHeader = "X-Church-ID"
)

type BulkScheduleService interface {
	Submit(ctx context.Context, req domain.BulkScheduleRequest, userID string, churchID string) (*domain.BatchRecord, error)
	GetBatch(ctx context.Context, batchID string, userID string) (*domain.BatchRecord, error)
	ListBatches(ctx context.Context, userID string) ([]domain.BatchRecord, error)
	ListBatchSchedules(ctx context.Context, batchID string, userID string) ([]domain.Schedule, error)
}

type BulkHandler struct {
	service BulkScheduleService
}

func NewBulkHandler(service BulkScheduleService) (*BulkHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("bulk schedule service is required")
	}
	return &BulkHandler{service: service}, nil
}

func RegisterBulkRoutes(router fiber.Router, service BulkScheduleService) error {
	h, err := NewBulkHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/schedules/bulk", h.SubmitBatch)
	v1.Get("/schedules/bulk", h.ListBatches)
	v1.Get("/schedules/bulk/:batchId", h.GetBatch)
	v1.Get("/schedules/bulk/:batchId/schedules", h.ListBatchSchedules)

	return nil
}

type bulkScheduleRequest struct {
	Quantity         int                      `json:"quantity"`
	NameBase         string                   `json:"nameBase"`
	Description      string                   `json:"description"`
	Local            string                   `json:"local"`
	StartTime        string                   `json:"startTime"`
	EndTime          string                   `json:"endTime"`
	ScheduleType     string                   `json:"scheduleType"`
	Recurrence       string                   `json:"recurrence"`
	StartDate        string                   `json:"startDate"`
	AutoFill         bool                     `json:"autoFill"`
	AreaIDs          []string                 `json:"areaIds"`
	RoleRequirements []domain.RoleRequirement `json:"roleRequirements"`
	TemplateID       *string                  `json:"templateId"`
	MusicTemplateID  *string                  `json:"musicTemplateId"`
}

type batchResponse struct {
	BatchID          string     `json:"batchId"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	TotalSchedules   int        `json:"totalSchedules"`
	CreatedSchedules int        `json:"createdSchedules"`
	FailedSchedules  int        `json:"failedSchedules"`
	Recurrence       string     `json:"recurrence"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ErrorMessage     *string    `json:"errorMessage,omitempty"`
	TemplateID       *string    `json:"templateId,omitempty"`
	ScheduleIDs      []string   `json:"scheduleIds,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type listBatchesResponse struct {
	Data []batchResponse `json:"data"`
}

type scheduleResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Local           string    `json:"local,omitempty"`
	StartsAt        time.Time `json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
	ScheduleType    string    `json:"scheduleType"`
	Status          string    `json:"status"`
	MusicTemplateID *string   `json:"musicTemplateId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type listSchedulesResponse struct {
	Data []scheduleResponse `json:"data"`
}

func (h *BulkHandler) SubmitBatch(c *fiber.Ctx) error {
	userID, churchID, err := requestIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req bulkScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	domainReq, err := requestToDomain(req)
	if err != nil {
		return toHTTPError(err)
	}

	batch, err := h.service.Submit(c.Context(), domainReq, userID, churchID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(toBatchResponse(batch))
}

func (h *BulkHandler) GetBatch(c *fiber.Ctx) error {
	userID, _, err := requestIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	batchID := strings.TrimSpace(c.Params("batchId"))
	batch, err := h.service.GetBatch(c.Context(), batchID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toBatchResponse(batch))
}

func (h *BulkHandler) ListBatches(c *fiber.Ctx) error {
	userID, _, err := requestIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	batches, err := h.service.ListBatches(c.Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]batchResponse, 0, len(batches))
	for i := range batches {
		data = append(data, toBatchResponse(&batches[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listBatchesResponse{Data: data})
}

func (h *BulkHandler) ListBatchSchedules(c *fiber.Ctx) error {
	userID, _, err := requestIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	batchID := strings.TrimSpace(c.Params("batchId"))
	schedules, err := h.service.ListBatchSchedules(c.Context(), batchID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]scheduleResponse, 0, len(schedules))
	for i := range schedules {
		data = append(data, toScheduleResponse(&schedules[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listSchedulesResponse{Data: data})
}

func requestIdentity(c *fiber.Ctx) (string, string, error) {
	userID := strings.TrimSpace(c.Get(userIDHeader))
	if userID == "" {
		return "", "", fmt.Errorf("%w: %s header is required", domain.ErrValidation, userIDHeader)
	}
	churchID := strings.TrimSpace(c.Get(churchIDHeader))
	return userID, churchID, nil
}

func requestToDomain(req bulkScheduleRequest) (domain.BulkScheduleRequest, error) {
	recurrence, err := domain.ParseRecurrenceFromString(req.Recurrence)
	if err != nil {
		return domain.BulkScheduleRequest{}, err
	}

	var startDate time.Time
	if trimmed := strings.TrimSpace(req.StartDate); trimmed != "" {
		startDate, err = time.Parse("2006-01-02", trimmed)
		if err != nil {
			startDate, err = time.Parse(time.RFC3339, trimmed)
			if err != nil {
				return domain.BulkScheduleRequest{}, fmt.Errorf(
					"%w: startDate must be YYYY-MM-DD or RFC3339", domain.ErrValidation)
			}
		}
	}

	var scheduleType domain.ScheduleType
	if trimmed := strings.TrimSpace(req.ScheduleType); trimmed != "" {
		scheduleType, err = domain.ParseScheduleTypeFromString(trimmed)
		if err != nil {
			return domain.BulkScheduleRequest{}, err
		}
	}

	return domain.BulkScheduleRequest{
		Quantity:         req.Quantity,
		NameBase:         strings.TrimSpace(req.NameBase),
		Description:      strings.TrimSpace(req.Description),
		Local:            strings.TrimSpace(req.Local),
		StartTime:        strings.TrimSpace(req.StartTime),
		EndTime:          strings.TrimSpace(req.EndTime),
		ScheduleType:     scheduleType,
		Recurrence:       recurrence,
		StartDate:        startDate,
		AutoFill:         req.AutoFill,
		AreaIDs:          req.AreaIDs,
		RoleRequirements: req.RoleRequirements,
		TemplateID:       req.TemplateID,
		MusicTemplateID:  req.MusicTemplateID,
	}, nil
}

func toBatchResponse(b *domain.BatchRecord) batchResponse {
	if b == nil {
		return batchResponse{}
	}

	return batchResponse{
		BatchID:          b.ID,
		Name:             b.Name,
		Status:           b.Status.String(),
		TotalSchedules:   b.TotalSchedules,
		CreatedSchedules: b.CreatedSchedules,
		FailedSchedules:  b.FailedSchedules,
		Recurrence:       b.Recurrence.String(),
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		ErrorMessage:     b.ErrorMessage,
		TemplateID:       b.TemplateID,
		ScheduleIDs:      b.ScheduleIDs,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toScheduleResponse(s *domain.Schedule) scheduleResponse {
	if s == nil {
		return scheduleResponse{}
	}

	return scheduleResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Local:           s.Local,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		ScheduleType:    s.ScheduleType.String(),
		Status:          s.Status.String(),
		MusicTemplateID: s.MusicTemplateID,
		CreatedAt:       s.CreatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTooManyRequests):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	default:
		return err
	}
}
