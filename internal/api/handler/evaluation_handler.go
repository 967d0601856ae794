package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/speaklab/retell-be/internal/api/domain"
	"github.com/speaklab/retell-be/internal/api/dto"
	"github.com/speaklab/retell-be/internal/evaluation"
	evaldomain "github.com/speaklab/retell-be/internal/evaluation/domain"
)

// SubmitEvaluation handles POST /evaluate-single-card
// Creates the job row, stages both audio uploads and queues the evaluation.
func (h *EvaluationHandler) SubmitEvaluation(c *gin.Context) {
	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid evaluation request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "round_id and card_id are required",
		})
		return
	}

	log := h.logger.With(
		slog.String("round_id", req.RoundID),
		slog.String("card_id", req.CardID),
	)

	practiceFile, err := c.FormFile("practice_audio")
	if err != nil {
		log.Error("Missing practice audio upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "practice_audio file is required",
		})
		return
	}

	originalFile, err := c.FormFile("original_audio")
	if err != nil {
		log.Error("Missing original audio upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "original_audio file is required",
		})
		return
	}

	// Register the job before touching the filesystem so a duplicate submit
	// is rejected without staging anything.
	if err := h.storage.CreateJob(c.Request.Context(), req.RoundID, req.CardID); err != nil {
		if errors.Is(err, domain.ErrDuplicateJob) {
			log.Warn("Duplicate evaluation submitted")
			c.JSON(http.StatusConflict, gin.H{
				"error": "An evaluation for this card in this round already exists",
			})
			return
		}
		log.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create evaluation job",
		})
		return
	}

	practicePath := h.stagingPath(req.RoundID, req.CardID, "practice")
	originalPath := h.stagingPath(req.RoundID, req.CardID, "original")

	if err := c.SaveUploadedFile(practiceFile, practicePath); err != nil {
		log.Error("Failed to stage practice audio", slog.String("error", err.Error()))
		h.failStagedJob(c, log, req.RoundID, req.CardID, practicePath, originalPath)
		return
	}
	if err := c.SaveUploadedFile(originalFile, originalPath); err != nil {
		log.Error("Failed to stage original audio", slog.String("error", err.Error()))
		h.failStagedJob(c, log, req.RoundID, req.CardID, practicePath, originalPath)
		return
	}

	if err := h.pool.Submit(evaluation.Task{
		RoundID:      req.RoundID,
		CardID:       req.CardID,
		OriginalPath: originalPath,
		PracticePath: practicePath,
	}); err != nil {
		log.Error("Failed to queue evaluation task", slog.String("error", err.Error()))
		h.failStagedJob(c, log, req.RoundID, req.CardID, practicePath, originalPath)
		return
	}

	log.Info("Evaluation task accepted")
	c.JSON(http.StatusAccepted, dto.SubmitEvaluationResponse{
		Message: "Evaluation task accepted",
		RoundID: req.RoundID,
		CardID:  req.CardID,
		Status:  domain.JobStatusPending,
	})
}

// GetResult handles GET /get-single-card-result/:round_id/:card_id
func (h *EvaluationHandler) GetResult(c *gin.Context) {
	roundID := c.Param("round_id")
	cardID := c.Param("card_id")

	job, err := h.storage.GetJob(c.Request.Context(), roundID, cardID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No evaluation found for this card in this round",
			})
			return
		}
		h.logger.Error("Failed to read job",
			slog.String("round_id", roundID),
			slog.String("card_id", cardID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read evaluation result",
		})
		return
	}

	resp := dto.JobResultResponse{
		RoundID: job.RoundID,
		CardID:  job.CardID,
		Status:  job.Status,
	}
	if job.Result.Valid {
		resp.Result = json.RawMessage(job.Result.String)
	}
	if job.ErrorMessage.Valid {
		msg := job.ErrorMessage.String
		resp.ErrorMessage = &msg
	}

	c.JSON(http.StatusOK, resp)
}

// GetRoundSummary handles GET /get-round-summary/:round_id
// Computes the summary synchronously; nothing is persisted.
func (h *EvaluationHandler) GetRoundSummary(c *gin.Context) {
	roundID := c.Param("round_id")

	summary, err := h.summarizer.Summarize(c.Request.Context(), roundID)
	if err != nil {
		switch {
		case errors.Is(err, evaldomain.ErrNoCompletedJobs):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No completed evaluations found for this round yet",
			})
		case errors.Is(err, evaldomain.ErrClientsNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Summary generation is unavailable: LLM client is not configured",
			})
		default:
			h.logger.Error("Failed to generate round summary",
				slog.String("round_id", roundID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate round summary",
			})
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", summary)
}

func (h *EvaluationHandler) stagingPath(roundID, cardID, clip string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.wav", roundID, cardID, clip, uuid.New().String())
	return filepath.Join(h.tempDir, name)
}

// failStagedJob marks the job FAILED, removes whatever was staged and answers 500.
func (h *EvaluationHandler) failStagedJob(c *gin.Context, log *slog.Logger, roundID, cardID string, paths ...string) {
	if err := h.storage.FailJob(c.Request.Context(), roundID, cardID, "failed to stage uploaded audio"); err != nil {
		log.Error("Failed to mark job as failed", slog.String("error", err.Error()))
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove staged audio file",
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to accept uploaded audio",
	})
}
