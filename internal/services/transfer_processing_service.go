package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"mockbank/internal/models"
	"mockbank/internal/repositories"
)

var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// TransferProcessingService settles async transfers once their scheduled time has passed
type TransferProcessingService struct {
	queueRepo       repositories.TransferQueueRepositoryInterface
	transferService TransferServiceInterface
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	circuitBreaker  CircuitBreakerInterface
	maxWorkers      int
	pollInterval    time.Duration
	workerSemaphore chan struct{}
	logger          *slog.Logger
}

func NewTransferProcessingService(
	queueRepo repositories.TransferQueueRepositoryInterface,
	transferService TransferServiceInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	maxWorkers int,
	pollInterval time.Duration,
	logger *slog.Logger,
) TransferProcessingServiceInterface {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig("database")
	cbConfig.OnStateChange = func(name string, from, to CircuitState) {
		auditLogger.LogCircuitBreakerStateChange(context.Background(), name, from.String(), to.String())
		metrics.RecordGauge(MetricCircuitBreakerState, float64(to), map[string]string{"service": name})
	}

	return &TransferProcessingService{
		queueRepo:       queueRepo,
		transferService: transferService,
		auditLogger:     auditLogger,
		metrics:         metrics,
		circuitBreaker:  NewCircuitBreaker(cbConfig),
		maxWorkers:      maxWorkers,
		pollInterval:    pollInterval,
		workerSemaphore: make(chan struct{}, maxWorkers),
		logger:          logger,
	}
}

// StartProcessing polls the queue until ctx is cancelled, then waits for in-flight items
func (s *TransferProcessingService) StartProcessing(ctx context.Context) {
	s.logger.Info("starting transfer processing service",
		slog.Int("max_workers", s.maxWorkers),
		slog.Duration("poll_interval", s.pollInterval),
	)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("processing service shutting down, waiting for workers to complete")
			wg.Wait()
			s.logger.Info("processing service stopped")
			return

		case <-ticker.C:
			if s.circuitBreaker.IsOpen() {
				continue
			}

			items, err := s.queueRepo.FetchDue(s.maxWorkers * 2)
			if err != nil {
				s.circuitBreaker.RecordFailure()
				s.logger.Error("failed to fetch due transfers",
					slog.String("error", err.Error()),
				)
				continue
			}

			for _, item := range items {
				wg.Add(1)
				go s.processQueueItemAsync(ctx, item, &wg)
			}

			s.updateQueueDepth()
		}
	}
}

func (s *TransferProcessingService) processQueueItemAsync(ctx context.Context, queueItem *models.TransferQueueItem, wg *sync.WaitGroup) {
	defer wg.Done()

	s.workerSemaphore <- struct{}{}
	defer func() { <-s.workerSemaphore }()

	if err := s.ProcessQueueItem(ctx, queueItem); err != nil {
		s.logger.Error("failed to process queue item",
			slog.String("queue_item_id", queueItem.ID.String()),
			slog.String("transfer_id", queueItem.TransferID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// ProcessQueueItem claims the item and settles its transfer. Business rejections complete the item;
// infrastructure errors are retried with backoff until MaxRetries, after which the transfer fails.
func (s *TransferProcessingService) ProcessQueueItem(ctx context.Context, queueItem *models.TransferQueueItem) error {
	startTime := time.Now()

	if s.circuitBreaker.IsOpen() {
		return ErrCircuitBreakerOpen
	}

	if err := s.queueRepo.MarkProcessing(queueItem.ID); err != nil {
		if errors.Is(err, repositories.ErrQueueItemNotFound) {
			return nil
		}
		s.circuitBreaker.RecordFailure()
		return err
	}

	_, err := s.transferService.SettleTransfer(ctx, queueItem.TransferID)
	switch {
	case err == nil, errors.Is(err, ErrTransferNotPending), IsBusinessRejection(err):
		return s.completeProcessing(ctx, queueItem, startTime)

	case errors.Is(err, ErrTransferNotFound):
		if markErr := s.queueRepo.MarkFailed(queueItem.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err

	default:
		s.circuitBreaker.RecordFailure()
		return s.handleProcessingError(ctx, queueItem, err)
	}
}

func (s *TransferProcessingService) completeProcessing(ctx context.Context, queueItem *models.TransferQueueItem, startTime time.Time) error {
	if err := s.queueRepo.MarkCompleted(queueItem.ID); err != nil {
		return err
	}

	s.circuitBreaker.RecordSuccess()
	s.auditLogger.LogQueueItemProcessed(ctx, queueItem.ID, queueItem.TransferID, queueItem.RetryCount)

	s.logger.Debug("queue item completed",
		slog.String("transfer_id", queueItem.TransferID.String()),
		slog.Duration("duration", time.Since(startTime)),
	)

	return nil
}

func (s *TransferProcessingService) handleProcessingError(ctx context.Context, queueItem *models.TransferQueueItem, err error) error {
	if queueItem.CanRetry() {
		backoffMs := int64(math.Pow(2, float64(queueItem.RetryCount+1)) * 1000)

		s.auditLogger.LogRetryAttempt(ctx, queueItem.ID, queueItem.TransferID, queueItem.RetryCount+1, queueItem.MaxRetries, backoffMs)

		if retryErr := s.queueRepo.IncrementRetry(queueItem.ID, err.Error()); retryErr != nil {
			return fmt.Errorf("failed to increment retry: %w", retryErr)
		}

		s.metrics.IncrementCounter(MetricQueueRetry, nil)

		return err
	}

	return s.handleMaxRetriesExceeded(ctx, queueItem, err)
}

func (s *TransferProcessingService) handleMaxRetriesExceeded(ctx context.Context, queueItem *models.TransferQueueItem, cause error) error {
	if _, err := s.transferService.FailTransfer(ctx, queueItem.TransferID, TransactionFailedReason); err != nil {
		s.logger.Error("failed to fail transfer after retries",
			slog.String("transfer_id", queueItem.TransferID.String()),
			slog.String("error", err.Error()),
		)
	}

	if err := s.queueRepo.MarkFailed(queueItem.ID, fmt.Sprintf("%s: %v", ErrMaxRetriesExceeded, cause)); err != nil {
		return err
	}

	return ErrMaxRetriesExceeded
}

func (s *TransferProcessingService) GetQueueDepth() (int64, error) {
	return s.queueRepo.GetPendingCount()
}

func (s *TransferProcessingService) updateQueueDepth() {
	pending, err := s.queueRepo.GetPendingCount()
	if err != nil {
		return
	}
	s.metrics.RecordGauge(MetricQueueDepth, float64(pending), map[string]string{"status": models.QueueStatusPending})
}
