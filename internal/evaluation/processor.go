package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/speaklab/retell-be/internal/api/storage"
	"github.com/speaklab/retell-be/internal/asr"
	"github.com/speaklab/retell-be/internal/evaluation/domain"
	"github.com/speaklab/retell-be/internal/llm"
)

// Task is one submitted card evaluation. The audio files are already staged
// on local disk; the processor owns them from here and removes them when the
// job reaches a terminal state.
type Task struct {
	RoundID      string
	CardID       string
	OriginalPath string
	PracticePath string
}

// Processor drives a single evaluation through the job state machine:
// PENDING -> PROCESSING -> COMPLETED | FAILED. No retries; a provider error
// is terminal for the job.
type Processor struct {
	store       *storage.Storage
	transcriber asr.Transcriber
	generator   llm.Generator
	logger      *slog.Logger
	cardTimeout time.Duration
}

// ProcessorConfig holds processor dependencies. Transcriber and Generator may
// be nil when the corresponding API key is missing; jobs then fail fast.
type ProcessorConfig struct {
	Store       *storage.Storage
	Transcriber asr.Transcriber
	Generator   llm.Generator
	Logger      *slog.Logger
	CardTimeout time.Duration
}

func NewProcessor(cfg *ProcessorConfig) *Processor {
	cardTimeout := cfg.CardTimeout
	if cardTimeout <= 0 {
		cardTimeout = 120 * time.Second
	}

	return &Processor{
		store:       cfg.Store,
		transcriber: cfg.Transcriber,
		generator:   cfg.Generator,
		logger:      cfg.Logger,
		cardTimeout: cardTimeout,
	}
}

// Process runs one evaluation to a terminal state. All failures are converted
// into a FAILED job row; nothing escapes to the caller.
func (p *Processor) Process(ctx context.Context, task Task) {
	log := p.logger.With(
		slog.String("round_id", task.RoundID),
		slog.String("card_id", task.CardID),
	)

	// Staged audio is removed whatever the outcome; removal errors are logged
	// and never override the job result.
	defer p.cleanupFiles(log, task.OriginalPath, task.PracticePath)

	if err := p.store.MarkProcessing(ctx, task.RoundID, task.CardID); err != nil {
		// The job stays PENDING. Accepted as a rare failure mode; there is no
		// reconciliation sweep.
		log.Error("Failed to mark job PROCESSING, aborting",
			slog.Any("error", err),
		)
		return
	}

	log.Info("Job status updated to PROCESSING")

	result, err := p.evaluate(ctx, log, task)
	if err != nil {
		log.Error("Evaluation failed",
			slog.Any("error", err),
		)
		if failErr := p.store.FailJob(ctx, task.RoundID, task.CardID, err.Error()); failErr != nil {
			log.Error("Failed to mark job FAILED",
				slog.Any("error", failErr),
			)
		}
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Error("Failed to encode result payload",
			slog.Any("error", err),
		)
		_ = p.store.FailJob(ctx, task.RoundID, task.CardID, fmt.Sprintf("failed to encode result: %v", err))
		return
	}

	if err := p.store.CompleteJob(ctx, task.RoundID, task.CardID, payload); err != nil {
		log.Error("Failed to mark job COMPLETED",
			slog.Any("error", err),
		)
		return
	}

	log.Info("Evaluation completed, result stored")
}

// evaluate performs the provider calls and returns the combined payload.
func (p *Processor) evaluate(ctx context.Context, log *slog.Logger, task Task) (*domain.CardResult, error) {
	if p.transcriber == nil || p.generator == nil {
		return nil, domain.ErrClientsNotConfigured
	}

	log.Info("Transcribing both clips concurrently")

	pair, err := asr.TranscribePair(ctx, p.transcriber, task.OriginalPath, task.PracticePath)
	if err != nil {
		return nil, err
	}

	missingWords := asr.MissingWords(pair.Original.Text, pair.Practice.Text)
	prompt := BuildCardPrompt(pair.Original, pair.Practice, missingWords)

	log.Info("Invoking LLM for card evaluation",
		slog.String("provider", p.generator.Name()),
		slog.Duration("timeout", p.cardTimeout),
	)

	llmCtx, cancel := context.WithTimeout(ctx, p.cardTimeout)
	defer cancel()

	response, err := p.generator.Generate(llmCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM invocation failed: %w", err)
	}

	report, err := parseReport(response)
	if err != nil {
		return nil, err
	}

	var parsed any
	if uerr := json.Unmarshal(report, &parsed); uerr == nil {
		if verr := ValidateCardReport(parsed); verr != nil {
			// advisory only: report fields are LLM-defined
			log.Warn("Card report does not match advertised schema",
				slog.Any("error", verr),
			)
		}
	}

	return &domain.CardResult{
		SchemaVersion:    domain.ResultSchemaVersion,
		EvaluationReport: report,
		SourceData: domain.SourceData{
			OriginalASR:  pair.Original,
			PracticeASR:  pair.Practice,
			MissingWords: missingWords,
		},
	}, nil
}

// parseReport strips fence markup and parses the LLM output as a JSON object.
func parseReport(response string) (json.RawMessage, error) {
	cleaned := StripCodeFence(response)

	var probe map[string]any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, &domain.MalformedResponseError{RawText: response, Err: err}
	}

	return json.RawMessage(cleaned), nil
}

func (p *Processor) cleanupFiles(log *slog.Logger, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove staged audio file",
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
	}
}
