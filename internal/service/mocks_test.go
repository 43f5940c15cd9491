package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"sjt-studio/internal/domain"
)

// --- MockSJTGenerator ---
type MockSJTGenerator struct {
	mock.Mock
}

func (m *MockSJTGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- MockBatchService ---
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) GenerateSJTs(ctx context.Context, req domain.BatchRequest) (*domain.BatchReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchReport), args.Error(1)
}

// recordingObserver keeps every progress event and failure it receives.
type recordingObserver struct {
	mu       sync.Mutex
	events   []domain.ProgressEvent
	failures []domain.AttemptFailure
}

func (o *recordingObserver) OnAttempt(ev domain.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) OnFailure(f domain.AttemptFailure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, f)
}

// staticRenderer renders every record as its name.
type staticRenderer struct{}

func (staticRenderer) Render(record *domain.CompetencyRecord) string {
	return "prompt:" + record.Name
}
