package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mbarroso/escala-engine/internal/domain"
	"github.com/mbarroso/escala-engine/internal/observability"
	"github.com/mbarroso/escala-engine/internal/queue"
	"github.com/mbarroso/escala-engine/internal/ratelimit"
	"github.com/mbarroso/escala-engine/internal/repository"
	"go.uber.org/zap"
)

// BulkService is the synchronous side of the bulk schedule pipeline. It
// validates the caller's request, persists the batch in PENDING, hands the
// job to the queue, and answers status queries. The O(quantity) work happens
// in the worker, never here.
type BulkService struct {
	batches   repository.BatchRepository
	schedules repository.ScheduleRepository
	areas     repository.AreaMembershipRepository
	publisher queue.Publisher
	limiter   ratelimit.RateLimiter
	logger    *zap.Logger
	metrics   *observability.Metrics
}

func NewBulkService(
	batches repository.BatchRepository,
	schedules repository.ScheduleRepository,
	areas repository.AreaMembershipRepository,
	publisher queue.Publisher,
	limiter ratelimit.RateLimiter,
	logger *zap.Logger,
) (*BulkService, error) {
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if schedules == nil {
		return nil, fmt.Errorf("schedule repository is required")
	}
	if areas == nil {
		return nil, fmt.Errorf("area membership repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BulkService{
		batches:   batches,
		schedules: schedules,
		areas:     areas,
		publisher: publisher,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

func (s *BulkService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Submit validates the request, creates the batch in PENDING, and enqueues
// the asynchronous job. It returns before any schedule is generated.
func (s *BulkService) Submit(
	ctx context.Context,
	req domain.BulkScheduleRequest,
	userID string,
	churchID string,
) (*domain.BatchRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	churchID = strings.TrimSpace(churchID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if churchID == "" {
		return nil, fmt.Errorf("%w: church id is required", domain.ErrValidation)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "bulk:"+userID)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate submission rate limit: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: bulk submission limit reached, try again later", domain.ErrTooManyRequests)
		}
	}

	// Template areas are re-validated at execution time by the worker;
	// explicit area selections are checked here against current membership.
	if req.TemplateID == nil || strings.TrimSpace(*req.TemplateID) == "" {
		userAreas, err := s.areas.UserAreas(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user areas: %w", err)
		}
		if missing := missingAreas(req.AreaIDs, userAreas); len(missing) > 0 {
			return nil, fmt.Errorf("%w: no access to areas: %s",
				domain.ErrValidation, strings.Join(missing, ", "))
		}
	}

	batch := &domain.BatchRecord{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.NameBase),
		TotalSchedules: req.Quantity,
		Recurrence:     req.Recurrence,
		StartDate:      req.StartDate,
		Status:         domain.BatchStatusPending,
		TemplateID:     req.TemplateID,
		UserID:         userID,
		ChurchID:       churchID,
	}

	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	msg := queue.BatchMessage{
		BatchID:  batch.ID,
		UserID:   userID,
		ChurchID: churchID,
		Request:  req,
	}
	if err := s.publisher.Publish(ctx, queue.BulkQueueName, msg); err != nil {
		s.logger.Error("failed to publish batch job",
			zap.String("batchId", batch.ID),
			zap.Error(err),
		)
		if markErr := s.batches.MarkFailed(ctx, batch.ID, "failed to enqueue batch job"); markErr != nil {
			s.logger.Error("failed to mark batch as failed after publish error",
				zap.String("batchId", batch.ID),
				zap.Error(markErr),
			)
		}
		return nil, fmt.Errorf("failed to publish batch job: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncBatchSubmitted()
	}
	s.logger.Info("bulk schedule batch submitted",
		zap.String("batchId", batch.ID),
		zap.String("userId", userID),
		zap.Int("totalSchedules", batch.TotalSchedules),
		zap.String("recurrence", batch.Recurrence.String()),
	)

	return batch, nil
}

// GetBatch returns a batch visible only to its owner.
func (s *BulkService) GetBatch(ctx context.Context, batchID string, userID string) (*domain.BatchRecord, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if batch.UserID != strings.TrimSpace(userID) {
		return nil, fmt.Errorf("%w: batch %s does not belong to the requesting user",
			domain.ErrPermissionDenied, batchID)
	}

	return batch, nil
}

// ListBatches returns the caller's batches, most recent first.
func (s *BulkService) ListBatches(ctx context.Context, userID string) ([]domain.BatchRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.batches.ListByUser(ctx, userID)
}

// ListBatchSchedules returns the schedules a batch generated, in sequence
// order, after the same ownership check as GetBatch.
func (s *BulkService) ListBatchSchedules(ctx context.Context, batchID string, userID string) ([]domain.Schedule, error) {
	batch, err := s.GetBatch(ctx, batchID, userID)
	if err != nil {
		return nil, err
	}
	return s.schedules.ListByBatch(ctx, batch.ID)
}

// missingAreas returns the requested areas absent from the user's current
// membership, sorted for deterministic error messages.
func missingAreas(requested []string, memberOf []string) []string {
	member := make(map[string]struct{}, len(memberOf))
	for _, areaID := range memberOf {
		member[areaID] = struct{}{}
	}

	var missing []string
	for _, areaID := range requested {
		if _, ok := member[areaID]; !ok {
			missing = append(missing, areaID)
		}
	}

	sort.Strings(missing)
	return missing
}
