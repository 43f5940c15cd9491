package service

import (
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
)

// LogObserver reports batch progress through a logger.
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnAttempt(ev domain.ProgressEvent) {
	o.logger.Info("Generating SJT",
		zap.String("run_id", ev.RunID),
		zap.String("competency", ev.Competency),
		zap.Int("attempt", ev.Attempt),
		zap.Int("attempts", ev.Attempts),
		zap.Int("done", ev.Done),
		zap.Int("total", ev.Total),
	)
}

func (o *LogObserver) OnFailure(f domain.AttemptFailure) {
	o.logger.Warn("SJT attempt failed",
		zap.String("competency", f.Competency),
		zap.Int("attempt", f.Attempt),
		zap.String("code", string(f.Code)),
		zap.String("message", f.Message),
	)
}

var _ domain.ProgressObserver = (*LogObserver)(nil)
