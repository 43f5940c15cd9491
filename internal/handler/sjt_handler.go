package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/dto"
	"sjt-studio/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Summary headers set on a generated workbook response.
const (
	HeaderRunID    = "X-SJT-Run-ID"
	HeaderRows     = "X-SJT-Rows"
	HeaderAttempts = "X-SJT-Attempts"
	HeaderFailures = "X-SJT-Failures"
	HeaderSkipped  = "X-SJT-Skipped"
)

// Pinger reports the health of an optional dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SJTHandler handles profile, sample and generation requests
type SJTHandler struct {
	studio         service.Studio
	defaultProfile string
	cache          Pinger
	logger         *zap.Logger
}

// NewSJTHandler creates a new SJTHandler. cache may be nil.
func NewSJTHandler(studio service.Studio, defaultProfile string, cache Pinger, logger *zap.Logger) *SJTHandler {
	return &SJTHandler{
		studio:         studio,
		defaultProfile: defaultProfile,
		cache:          cache,
		logger:         logger,
	}
}

// Register mounts the routes on app.
func (h *SJTHandler) Register(app fiber.Router) {
	app.Get("/health", h.Health)
	api := app.Group("/api")
	api.Get("/profiles", h.ListProfiles)
	api.Get("/profiles/:name/sample", h.DownloadSample)
	api.Post("/sjt/generate", h.Generate)
}

// ListProfiles handles GET /api/profiles
func (h *SJTHandler) ListProfiles(c *fiber.Ctx) error {
	var resp dto.ProfileListResponse
	for _, p := range h.studio.Profiles() {
		resp.Profiles = append(resp.Profiles, dto.NewProfileResponse(p, h.defaultProfile))
	}
	return c.JSON(resp)
}

// DownloadSample handles GET /api/profiles/:name/sample
func (h *SJTHandler) DownloadSample(c *fiber.Ctx) error {
	name := c.Params("name")
	buf, err := h.studio.Sample(name)
	if err != nil {
		return err
	}
	c.Attachment("Sample_" + name + ".xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// Generate handles POST /api/sjt/generate
func (h *SJTHandler) Generate(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewInvalidInputError("multipart field \"file\" with an .xlsx workbook is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInvalidInputError("unable to read uploaded file")
	}
	defer file.Close()

	profileName := c.Query("profile", h.defaultProfile)
	h.logger.Info("Generation requested",
		zap.String("profile", profileName),
		zap.String("file", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size),
	)

	result, err := h.studio.Generate(c.UserContext(), profileName, file, service.NewLogObserver(h.logger))
	if err != nil {
		var domainErr *domain.DomainError
		if result != nil && result.Report != nil && errors.As(err, &domainErr) {
			domainErr.WithContext("run_id", result.Report.RunID).
				WithContext("attempts", result.Report.Attempts).
				WithContext("failures", len(result.Report.Failures))
		}
		return err
	}

	report := result.Report
	c.Set(HeaderRunID, report.RunID)
	c.Set(HeaderRows, strconv.Itoa(len(report.Rows)))
	c.Set(HeaderAttempts, strconv.Itoa(report.Attempts))
	c.Set(HeaderFailures, strconv.Itoa(len(report.Failures)))
	c.Set(HeaderSkipped, strconv.Itoa(len(report.Skipped)))
	c.Attachment(result.FileName)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(result.Workbook.Bytes())
}

// Health handles GET /health
func (h *SJTHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok"}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(c.UserContext()); err != nil {
			h.logger.Warn("Cache ping failed", zap.Error(err))
			resp.Cache = "unavailable"
		}
	}
	return c.JSON(resp)
}
