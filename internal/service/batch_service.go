package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
	"sjt-studio/internal/parser"
)

// batchService implements the domain.BatchService interface.
type batchService struct {
	generator domain.SJTGenerator
	cfg       *config.Config
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// NewBatchService creates a new instance of batchService.
func NewBatchService(generator domain.SJTGenerator, cfg *config.Config, logger *zap.Logger) domain.BatchService {
	return newBatchService(generator, cfg, logger)
}

func newBatchService(generator domain.SJTGenerator, cfg *config.Config, logger *zap.Logger) *batchService {
	return &batchService{
		generator: generator,
		cfg:       cfg,
		logger:    logger,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noopObserver struct{}

func (noopObserver) OnAttempt(domain.ProgressEvent)  {}
func (noopObserver) OnFailure(domain.AttemptFailure) {}

// GenerateSJTs runs every attempt for every eligible record, one call at a
// time, with a pause after each call. Item-level failures are recorded in
// the report and the loop continues. A run without a single row returns
// the report together with an EMPTY_RESULT error.
func (s *batchService) GenerateSJTs(ctx context.Context, req domain.BatchRequest) (*domain.BatchReport, error) {
	if req.Renderer == nil {
		return nil, domain.NewInvalidInputError("batch request has no prompt renderer")
	}
	if req.Attempts < 1 {
		return nil, domain.NewInvalidInputError("attempts per competency must be at least 1")
	}
	observer := req.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	report := &domain.BatchReport{
		RunID:     req.RunID,
		Profile:   req.Profile,
		StartedAt: s.now(),
	}
	log := s.logger.With(zap.String("run_id", req.RunID), zap.String("profile", req.Profile))

	var eligible []*domain.CompetencyRecord
	for _, rec := range req.Records {
		if rec == nil {
			continue
		}
		if !rec.Eligible() {
			skipErr := domain.NewIneligibleRecordError(rec.Name, len(rec.Indicators))
			log.Warn("Skipping competency", zap.String("competency", rec.Name), zap.Error(skipErr))
			report.Skipped = append(report.Skipped, domain.SkippedRecord{Competency: rec.Name, Reason: skipErr.Message})
			continue
		}
		eligible = append(eligible, rec)
	}
	report.Eligible = len(eligible)
	if len(eligible) == 0 {
		report.FinishedAt = s.now()
		reason := "the input has no competencies"
		if len(report.Skipped) > 0 {
			reason = fmt.Sprintf("all %d competencies have fewer than %d indicators", len(report.Skipped), domain.MinIndicators)
		}
		return report, domain.NewNoEligibleRecordsError(reason)
	}

	total := len(eligible) * req.Attempts
	flatten := FlattenOptions{MaxOptions: s.cfg.Batch.MaxOptions, Order: s.cfg.Batch.OptionOrder}
	log.Info("Starting SJT generation",
		zap.Int("eligible", len(eligible)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("attempts", total),
	)

	done := 0
	for _, rec := range eligible {
		for attempt := 1; attempt <= req.Attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				report.FinishedAt = s.now()
				return report, fmt.Errorf("batch cancelled after %d of %d attempts: %w", done, total, err)
			}
			observer.OnAttempt(domain.ProgressEvent{
				RunID:      req.RunID,
				Competency: rec.Name,
				Attempt:    attempt,
				Attempts:   req.Attempts,
				Done:       done,
				Total:      total,
			})

			row, err := s.runAttempt(ctx, req.Renderer, rec, attempt, flatten, log)
			report.Attempts++
			done++
			if err != nil {
				failure := newAttemptFailure(rec.Name, attempt, err)
				report.Failures = append(report.Failures, failure)
				observer.OnFailure(failure)
				log.Warn("SJT attempt produced no row",
					zap.String("competency", rec.Name),
					zap.Int("attempt", attempt),
					zap.String("code", string(failure.Code)),
					zap.Error(err),
				)
			} else {
				report.Rows = append(report.Rows, row)
			}

			if err := s.sleep(ctx, s.cfg.Batch.CallDelay); err != nil {
				report.FinishedAt = s.now()
				return report, fmt.Errorf("batch cancelled after %d of %d attempts: %w", done, total, err)
			}
		}
	}

	report.FinishedAt = s.now()
	log.Info("SJT generation finished",
		zap.Int("rows", len(report.Rows)),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	if len(report.Rows) == 0 {
		return report, domain.NewEmptyResultError(report.Attempts)
	}
	return report, nil
}

func (s *batchService) runAttempt(
	ctx context.Context,
	renderer domain.PromptRenderer,
	rec *domain.CompetencyRecord,
	attempt int,
	opts FlattenOptions,
	log *zap.Logger,
) (domain.ResultRow, error) {
	prompt := renderer.Render(rec)
	raw, err := s.generator.Generate(domain.ContextWithAttempt(ctx, attempt), prompt)
	if err != nil {
		return domain.ResultRow{}, err
	}
	item, err := parser.ParseSJT(raw)
	if err != nil {
		return domain.ResultRow{}, err
	}
	row, dropped := Flatten(rec.Name, attempt, item, opts)
	if dropped > 0 {
		log.Warn("Dropping extra SJT options",
			zap.String("competency", rec.Name),
			zap.Int("attempt", attempt),
			zap.Int("dropped", dropped),
			zap.Int("max_options", opts.MaxOptions),
		)
	}
	return row, nil
}

func newAttemptFailure(competency string, attempt int, err error) domain.AttemptFailure {
	failure := domain.AttemptFailure{
		Competency: competency,
		Attempt:    attempt,
		Code:       domain.ErrLLMServiceError,
		Message:    err.Error(),
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		failure.Code = domainErr.Code
	}
	return failure
}
