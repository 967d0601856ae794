package handler

import (
	"log/slog"

	"github.com/speaklab/retell-be/internal/api/storage"
	"github.com/speaklab/retell-be/internal/evaluation"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger     *slog.Logger
	Storage    *storage.Storage
	Pool       *evaluation.Pool
	Summarizer *evaluation.Summarizer
	TempDir    string
}

// EvaluationHandler handles evaluation-related HTTP requests
type EvaluationHandler struct {
	logger     *slog.Logger
	storage    *storage.Storage
	pool       *evaluation.Pool
	summarizer *evaluation.Summarizer
	tempDir    string
}

// NewEvaluationHandler creates a new EvaluationHandler instance
func NewEvaluationHandler(deps *Dependencies) *EvaluationHandler {
	return &EvaluationHandler{
		logger:     deps.Logger,
		storage:    deps.Storage,
		pool:       deps.Pool,
		summarizer: deps.Summarizer,
		tempDir:    deps.TempDir,
	}
}
