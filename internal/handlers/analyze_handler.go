package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
	"alfredoptarigan/ats-analyzer/internal/repositories"
	"alfredoptarigan/ats-analyzer/internal/services"
)

const (
	msgNoFile       = "No file uploaded"
	msgInvalidPDF   = "Please upload a valid PDF resume"
	msgTooLarge     = "File too large"
	msgTooShort     = "Resume text too short or unreadable"
	msgUnreadable   = "Failed to read PDF resume"
	msgAIDown       = "AI service unavailable"
	msgAIFailed     = "AI analysis failed"
	msgInternal     = "Internal server error"
	formFieldResume = "file"
)

type AnalyzeHandler struct {
	analyzer       services.AnalyzerService
	storageService services.StorageService
	auditRepo      repositories.AnalysisRepository
	maxFileSize    int64
	logger         *zap.Logger
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	storageService services.StorageService,
	auditRepo repositories.AnalysisRepository,
	maxFileSize int64,
	logger *zap.Logger,
) *AnalyzeHandler {
	if auditRepo == nil {
		auditRepo = repositories.NewNoopAnalysisRepository()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{
		analyzer:       analyzer,
		storageService: storageService,
		auditRepo:      auditRepo,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// HandleAnalyze handles POST /api/analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	start := time.Now()
	log := h.logger.With(zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)))

	file, err := c.FormFile(formFieldResume)
	if err != nil {
		return h.reject(c, log, fiber.StatusBadRequest, msgNoFile, "", start)
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return h.reject(c, log, fiber.StatusBadRequest, msgInvalidPDF, file.Filename, start)
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return h.reject(c, log, fiber.StatusRequestEntityTooLarge, msgTooLarge, file.Filename, start)
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		log.Error("failed to store upload", zap.String("filename", file.Filename), zap.Error(err))
		h.record(log, c, models.AnalysisRecord{
			OriginalFileName: file.Filename,
			Status:           models.StatusFailed,
			ErrorCode:        "storage",
		}, start)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternal})
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			log.Error("failed to delete upload", zap.String("path", filePath), zap.Error(err))
		}
	}()

	result, err := h.analyzer.Analyze(c.UserContext(), filePath)

	record := models.AnalysisRecord{
		OriginalFileName: file.Filename,
		PageCount:        result.PageCount,
		TextLength:       result.TextLength,
	}

	if err != nil {
		status, message, code := classifyError(err)
		record.Status = models.StatusFailed
		if status < fiber.StatusInternalServerError {
			record.Status = models.StatusRejected
		}
		record.ErrorCode = code
		h.record(log, c, record, start)

		if status >= fiber.StatusInternalServerError {
			log.Error("resume analysis failed", zap.String("code", code), zap.Error(err))
		} else {
			log.Info("resume rejected", zap.String("code", code), zap.Int("chars", result.TextLength))
		}
		return c.Status(status).JSON(models.ErrorResponse{Error: message})
	}

	record.Status = models.StatusSucceeded
	h.record(log, c, record, start)

	log.Info("resume analyzed",
		zap.Int("ats_score", result.Response.ATSScore),
		zap.Duration("latency", time.Since(start)),
	)

	return c.Status(fiber.StatusOK).JSON(result.Response)
}

func (h *AnalyzeHandler) reject(c *fiber.Ctx, log *zap.Logger, status int, message, originalName string, start time.Time) error {
	h.record(log, c, models.AnalysisRecord{
		OriginalFileName: originalName,
		Status:           models.StatusRejected,
		ErrorCode:        "invalid_upload",
	}, start)
	return c.Status(status).JSON(models.ErrorResponse{Error: message})
}

func (h *AnalyzeHandler) record(log *zap.Logger, c *fiber.Ctx, record models.AnalysisRecord, start time.Time) {
	record.RequestID = c.GetRespHeader(fiber.HeaderXRequestID)
	record.DurationMillis = time.Since(start).Milliseconds()
	record.CreatedAt = time.Now()

	if err := h.auditRepo.Create(&record); err != nil {
		log.Warn("failed to write audit record", zap.Error(err))
	}
}

// classifyError maps pipeline errors to a status, a user-facing message and
// an audit code. Error details stay in the server log.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrTextTooShort):
		return fiber.StatusUnprocessableEntity, msgTooShort, "text_too_short"
	case errors.Is(err, services.ErrInvalidPDF):
		return fiber.StatusInternalServerError, msgUnreadable, "invalid_pdf"
	case errors.Is(err, services.ErrAIUnavailable):
		return fiber.StatusInternalServerError, msgAIDown, "ai_unavailable"
	case errors.Is(err, services.ErrAIRequest), errors.Is(err, services.ErrAIResponse):
		return fiber.StatusInternalServerError, msgAIFailed, "ai_failed"
	default:
		return fiber.StatusInternalServerError, msgInternal, "internal"
	}
}
