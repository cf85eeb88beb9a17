package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mbarroso/escala-engine/internal/domain"
	"github.com/mbarroso/escala-engine/internal/notify"
	"github.com/mbarroso/escala-engine/internal/observability"
	"github.com/mbarroso/escala-engine/internal/queue"
	"github.com/mbarroso/escala-engine/internal/repository"
	"go.uber.org/zap"
)

// templateResolver expands a template-backed request at execution time.
type templateResolver interface {
	Resolve(ctx context.Context, req domain.BulkScheduleRequest, userID string) (domain.BulkScheduleRequest, error)
}

// scheduleMaterializer creates one schedule for one date.
type scheduleMaterializer interface {
	Materialize(
		ctx context.Context,
		req domain.BulkScheduleRequest,
		date time.Time,
		sequence int,
		batchID string,
		userID string,
		churchID string,
	) (*domain.Schedule, error)
}

// BulkWorkerService executes batch jobs: PENDING → PROCESSING → terminal.
// Counts accumulate locally and hit the batch row in a single finalize
// write; an observer never sees created+failed exceed the total.
type BulkWorkerService struct {
	batches      repository.BatchRepository
	schedules    repository.ScheduleRepository
	resolver     templateResolver
	materializer scheduleMaterializer
	consumer     queue.Consumer
	notifier     notify.Notifier
	logger       *zap.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

func NewBulkWorkerService(
	batches repository.BatchRepository,
	schedules repository.ScheduleRepository,
	resolver templateResolver,
	materializer scheduleMaterializer,
	consumer queue.Consumer,
	notifier notify.Notifier,
	logger *zap.Logger,
) (*BulkWorkerService, error) {
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if schedules == nil {
		return nil, fmt.Errorf("schedule repository is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("template resolver is required")
	}
	if materializer == nil {
		return nil, fmt.Errorf("schedule materializer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BulkWorkerService{
		batches:      batches,
		schedules:    schedules,
		resolver:     resolver,
		materializer: materializer,
		consumer:     consumer,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}, nil
}

func (s *BulkWorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start consumes the bulk schedule queue until context cancellation. The
// per-date loop is sequential; one consumer goroutine processes one batch at
// a time.
func (s *BulkWorkerService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.consumer == nil {
		return fmt.Errorf("consumer is not configured")
	}

	s.logger.Info("bulk schedule worker started", zap.String("queue", queue.BulkQueueName))
	return s.consumer.Consume(ctx, queue.BulkQueueName, s.ProcessMessage)
}

// ProcessMessage runs one batch job attempt. A returned error tells the
// queue infrastructure the attempt failed and the job may be retried.
func (s *BulkWorkerService) ProcessMessage(ctx context.Context, msg queue.BatchMessage) error {
	if s.metrics != nil {
		s.metrics.IncWorkerInFlight()
		defer s.metrics.DecWorkerInFlight()
	}

	logger := observability.WithContextLogger(s.logger, ctx)

	batch, err := s.batches.GetByID(ctx, msg.BatchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("batch not found, skipping job",
				zap.String("batchId", msg.BatchID),
			)
			return nil
		}
		return fmt.Errorf("failed to load batch %s: %w", msg.BatchID, err)
	}

	// A second delivery for a finished batch is a no-op.
	if batch.Terminal() {
		logger.Info("batch already terminal, skipping job",
			zap.String("batchId", batch.ID),
			zap.String("status", batch.Status.String()),
		)
		return nil
	}

	// A batch found in PROCESSING means a previous attempt died mid-run.
	// Clear its partial output so this attempt starts from scratch.
	if batch.Status == domain.BatchStatusProcessing {
		removed, err := s.schedules.DeleteByBatch(ctx, batch.ID)
		if err != nil {
			return fmt.Errorf("failed to clear partial output of batch %s: %w", batch.ID, err)
		}
		if removed > 0 {
			logger.Warn("cleared partial output from prior attempt",
				zap.String("batchId", batch.ID),
				zap.Int64("removedSchedules", removed),
			)
		}
	}

	ok, err := s.batches.MarkProcessing(ctx, batch.ID)
	if err != nil {
		s.failBatch(ctx, batch.ID, msg.UserID, err.Error())
		return fmt.Errorf("failed to mark batch %s as processing: %w", batch.ID, err)
	}
	if !ok {
		logger.Info("batch reached terminal state concurrently, skipping job",
			zap.String("batchId", batch.ID),
		)
		return nil
	}

	resolved := msg.Request
	if msg.Request.TemplateID != nil {
		resolved, err = s.resolver.Resolve(ctx, msg.Request, msg.UserID)
		if err != nil {
			// Resolution failure aborts the whole batch before any
			// schedule exists.
			s.failBatch(ctx, batch.ID, msg.UserID, err.Error())
			if s.metrics != nil {
				s.metrics.IncBatchFinished(domain.BatchStatusFailed)
			}
			return fmt.Errorf("template resolution failed for batch %s: %w", batch.ID, err)
		}
	}

	dates := domain.RecurrenceDates(resolved.StartDate, resolved.Quantity, resolved.Recurrence)
	if len(dates) == 0 {
		s.failBatch(ctx, batch.ID, msg.UserID, "no dates to generate")
		return fmt.Errorf("batch %s produced no dates", batch.ID)
	}

	started := s.now()
	created := 0
	failed := 0
	for i, d := range dates {
		sequence := i + 1
		schedule, err := s.materializer.Materialize(ctx, resolved, d, sequence, batch.ID, msg.UserID, msg.ChurchID)
		if err != nil {
			failed++
			if s.metrics != nil {
				s.metrics.IncScheduleFailed()
			}
			logger.Warn("schedule materialization failed",
				zap.String("batchId", batch.ID),
				zap.Int("sequence", sequence),
				zap.Time("date", d),
				zap.Error(err),
			)
			continue
		}

		created++
		if s.metrics != nil {
			s.metrics.IncScheduleCreated()
		}
		logger.Debug("schedule created",
			zap.String("batchId", batch.ID),
			zap.String("scheduleId", schedule.ID),
			zap.Int("sequence", sequence),
		)
	}

	status := domain.BatchStatusCompleted
	var errorMessage *string
	if created == 0 && failed > 0 {
		status = domain.BatchStatusFailed
		message := fmt.Sprintf("all %d schedules failed to generate", failed)
		errorMessage = &message
	}

	finalization := repository.BatchFinalization{
		Status:           status,
		CreatedSchedules: created,
		FailedSchedules:  failed,
		EndDate:          dates[len(dates)-1],
		ErrorMessage:     errorMessage,
	}
	if err := s.batches.Finalize(ctx, batch.ID, finalization); err != nil {
		s.failBatch(ctx, batch.ID, msg.UserID, err.Error())
		return fmt.Errorf("failed to finalize batch %s: %w", batch.ID, err)
	}

	if s.metrics != nil {
		s.metrics.IncBatchFinished(status)
		s.metrics.ObserveBatchDuration(s.now().Sub(started))
	}

	logger.Info("batch finished",
		zap.String("batchId", batch.ID),
		zap.String("status", status.String()),
		zap.Int("created", created),
		zap.Int("failed", failed),
	)

	s.notifyOutcome(ctx, msg.UserID, batch.ID, status, created, failed)
	return nil
}

// failBatch is the best-effort failure path: it marks the batch FAILED with
// a reason and notifies the requester. Both writes may themselves fail (the
// storage layer may be the reason we are here); failures are logged only.
func (s *BulkWorkerService) failBatch(ctx context.Context, batchID string, userID string, message string) {
	if err := s.batches.MarkFailed(ctx, batchID, message); err != nil {
		s.logger.Error("failed to mark batch as failed",
			zap.String("batchId", batchID),
			zap.Error(err),
		)
	}
	s.notifyOutcome(ctx, userID, batchID, domain.BatchStatusFailed, 0, 0)
}

// notifyOutcome sends the terminal notification. Failures are logged and
// swallowed; they never influence batch status.
func (s *BulkWorkerService) notifyOutcome(
	ctx context.Context,
	userID string,
	batchID string,
	status domain.BatchStatus,
	created int,
	failed int,
) {
	if s.notifier == nil {
		return
	}

	title := "Schedule generation finished"
	body := fmt.Sprintf("Created %d schedules.", created)
	if failed > 0 {
		body = fmt.Sprintf("Created %d schedules, %d failed.", created, failed)
	}
	if status == domain.BatchStatusFailed {
		title = "Schedule generation failed"
		body = "We could not generate your schedules. Please review the batch and try again."
	}

	metadata := map[string]string{
		"batchId": batchID,
		"status":  status.String(),
		"created": fmt.Sprintf("%d", created),
		"failed":  fmt.Sprintf("%d", failed),
	}

	if err := s.notifier.Notify(ctx, userID, title, body, metadata); err != nil {
		s.logger.Warn("failed to send batch notification",
			zap.String("batchId", batchID),
			zap.String("userId", userID),
			zap.Error(err),
		)
	}
}
