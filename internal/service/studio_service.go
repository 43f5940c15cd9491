package service

import (
	"bytes"
	"context"
	"io"

	"go.uber.org/zap"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
	"sjt-studio/internal/profile"
	"sjt-studio/internal/prompt"
	"sjt-studio/internal/sheet"
	"sjt-studio/internal/util"
)

// PreparedRun is a loaded input ready for generation.
type PreparedRun struct {
	Profile  domain.Profile
	Records  []*domain.CompetencyRecord
	Template *prompt.Template
	Attempts int
}

// GenerateResult is a finished run and its result workbook.
type GenerateResult struct {
	Report   *domain.BatchReport
	Workbook *bytes.Buffer
	FileName string
}

// Studio is the use-case surface shared by the CLI and the HTTP API.
type Studio interface {
	Profiles() []domain.Profile
	Sample(profileName string) (*bytes.Buffer, error)
	Generate(ctx context.Context, profileName string, input io.Reader, observer domain.ProgressObserver) (*GenerateResult, error)
}

// StudioService wires loading, generation and export for the CLI and HTTP.
type StudioService struct {
	batch  domain.BatchService
	cfg    *config.Config
	logger *zap.Logger
}

func NewStudioService(batch domain.BatchService, cfg *config.Config, logger *zap.Logger) *StudioService {
	return &StudioService{batch: batch, cfg: cfg, logger: logger}
}

// Profiles lists the available input profiles.
func (s *StudioService) Profiles() []domain.Profile {
	return profile.All()
}

// Sample builds the example input workbook of a profile.
func (s *StudioService) Sample(profileName string) (*bytes.Buffer, error) {
	p, err := profile.Get(profileName)
	if err != nil {
		return nil, err
	}
	return sheet.SampleWorkbook(p.Schema)
}

// Prepare resolves the profile and its template, then loads the input.
// An empty profile name falls back to batch.profile.
func (s *StudioService) Prepare(profileName string, input io.Reader) (*PreparedRun, error) {
	if profileName == "" {
		profileName = s.cfg.Batch.Profile
	}
	p, err := profile.Get(profileName)
	if err != nil {
		return nil, err
	}
	tmpl, err := profile.Template(p, s.cfg.Templates)
	if err != nil {
		return nil, domain.NewInternalError("failed to load prompt template", err)
	}
	records, err := sheet.Load(input, p.Schema, s.cfg.Batch.Sheet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded competency records",
		zap.String("profile", p.Name),
		zap.Int("records", len(records)),
	)
	for _, rec := range records {
		if !rec.Eligible() {
			continue
		}
		if unfilled := tmpl.Unfilled(rec); len(unfilled) > 0 {
			s.logger.Warn("Prompt placeholders without a value",
				zap.String("template", tmpl.Name()),
				zap.String("competency", rec.Name),
				zap.Strings("placeholders", unfilled),
			)
		}
		break
	}
	return &PreparedRun{
		Profile:  p,
		Records:  records,
		Template: tmpl,
		Attempts: profile.AttemptsFor(p, s.cfg.Batch.Attempts),
	}, nil
}

// Run generates SJTs for a prepared input and exports the result workbook.
// On a run-level error the partial report is still returned when available.
func (s *StudioService) Run(ctx context.Context, run *PreparedRun, observer domain.ProgressObserver) (*GenerateResult, error) {
	runID := util.NewRunID()
	report, err := s.batch.GenerateSJTs(ctx, domain.BatchRequest{
		RunID:    runID,
		Profile:  run.Profile.Name,
		Records:  run.Records,
		Renderer: run.Template,
		Attempts: run.Attempts,
		Observer: observer,
	})
	result := &GenerateResult{Report: report}
	if err != nil {
		return result, err
	}

	workbook, err := sheet.ExportResults(report.Rows, s.cfg.Batch.MaxOptions)
	if err != nil {
		return result, err
	}
	result.Workbook = workbook
	result.FileName = sheet.OutputFileName(runID)
	return result, nil
}

// Generate is Prepare followed by Run.
func (s *StudioService) Generate(ctx context.Context, profileName string, input io.Reader, observer domain.ProgressObserver) (*GenerateResult, error) {
	run, err := s.Prepare(profileName, input)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, run, observer)
}

var _ Studio = (*StudioService)(nil)
