package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/speaklab/retell-be/internal/api/storage"
	"github.com/speaklab/retell-be/internal/evaluation/domain"
	"github.com/speaklab/retell-be/internal/llm"
)

// Summarizer computes a round-level report from the round's completed card
// evaluations. The result is returned to the caller and never persisted;
// calling twice performs two LLM calls and may yield different reports.
type Summarizer struct {
	store          *storage.Storage
	generator      llm.Generator
	logger         *slog.Logger
	summaryTimeout time.Duration
}

// SummarizerConfig holds summarizer dependencies.
type SummarizerConfig struct {
	Store          *storage.Storage
	Generator      llm.Generator
	Logger         *slog.Logger
	SummaryTimeout time.Duration
}

func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	summaryTimeout := cfg.SummaryTimeout
	if summaryTimeout <= 0 {
		summaryTimeout = 180 * time.Second
	}

	return &Summarizer{
		store:          cfg.Store,
		generator:      cfg.Generator,
		logger:         cfg.Logger,
		summaryTimeout: summaryTimeout,
	}
}

// Summarize aggregates all COMPLETED jobs of the round into a fresh summary
// report. Returns domain.ErrNoCompletedJobs when the round has none and
// domain.ErrClientsNotConfigured when the LLM client is unavailable; an empty
// round is reported as such even when the client is missing.
func (s *Summarizer) Summarize(ctx context.Context, roundID string) (json.RawMessage, error) {
	log := s.logger.With(slog.String("round_id", roundID))

	jobs, err := s.store.ListCompletedJobs(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to read completed jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, domain.ErrNoCompletedJobs
	}

	// keep only the diagnostic reports; raw transcripts are not part of the
	// summary input
	reports := make(map[string]json.RawMessage, len(jobs))
	for _, job := range jobs {
		if !job.Result.Valid {
			continue
		}
		var result domain.CardResult
		if err := json.Unmarshal([]byte(job.Result.String), &result); err != nil {
			log.Warn("Skipping completed job with unreadable result payload",
				slog.String("card_id", job.CardID),
				slog.Any("error", err),
			)
			continue
		}
		reports[job.CardID] = result.EvaluationReport
	}
	if len(reports) == 0 {
		return nil, domain.ErrNoCompletedJobs
	}

	if s.generator == nil {
		return nil, domain.ErrClientsNotConfigured
	}

	prompt := BuildSummaryPrompt(reports)

	log.Info("Invoking LLM for round summary",
		slog.String("provider", s.generator.Name()),
		slog.Int("cards", len(reports)),
		slog.Duration("timeout", s.summaryTimeout),
	)

	llmCtx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()

	response, err := s.generator.Generate(llmCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM invocation failed: %w", err)
	}

	report, err := parseReport(response)
	if err != nil {
		return nil, err
	}

	var parsed any
	if uerr := json.Unmarshal(report, &parsed); uerr == nil {
		if verr := ValidateSummaryReport(parsed); verr != nil {
			log.Warn("Summary report does not match advertised schema",
				slog.Any("error", verr),
			)
		}
	}

	log.Info("Round summary generated")

	return report, nil
}
