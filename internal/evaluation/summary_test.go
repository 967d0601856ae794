package evaluation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklab/retell-be/internal/api/storage"
	"github.com/speaklab/retell-be/internal/evaluation/domain"
	llmmock "github.com/speaklab/retell-be/internal/llm/mock"
	"github.com/speaklab/retell-be/shared/logger"
)

const validSummaryReport = `{
	"performance_overview": {"final_score": 82, "comment": "复述整体流畅"},
	"error_patterns": [{"observed_behavior": "遗漏修饰词", "root_cause": "注意力集中在主干结构"}],
	"vocabulary_focus": ["brown", "quick", "fox"],
	"native_speech_insight": "母语者会用缩读连接功能词"
}`

func newTestSummarizer(t *testing.T, store *storage.Storage, generator *llmmock.Generator) *Summarizer {
	t.Helper()

	cfg := &SummarizerConfig{
		Store:  store,
		Logger: logger.NewDefault().Logger,
	}
	if generator != nil {
		cfg.Generator = generator
	}
	return NewSummarizer(cfg)
}

func completeJob(t *testing.T, store *storage.Storage, roundID, cardID, report string) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, store.CreateJob(ctx, roundID, cardID))
	result, err := json.Marshal(domain.CardResult{
		SchemaVersion:    domain.ResultSchemaVersion,
		EvaluationReport: json.RawMessage(report),
	})
	require.NoError(t, err)
	require.NoError(t, store.CompleteJob(ctx, roundID, cardID, result))
}

func TestSummarize_NoCompletedJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := newTestSummarizer(t, store, llmmock.NewGenerator(validSummaryReport))

	// no jobs at all
	_, err := s.Summarize(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNoCompletedJobs)

	// jobs exist but none completed
	require.NoError(t, store.CreateJob(ctx, "r1", "c1"))
	require.NoError(t, store.FailJob(ctx, "r1", "c1", "boom"))
	_, err = s.Summarize(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNoCompletedJobs)
}

func TestSummarize_AggregatesOnlyCompletedReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completeJob(t, store, "r1", "c1", `{"overall_score": 90}`)
	completeJob(t, store, "r1", "c2", `{"overall_score": 60}`)
	require.NoError(t, store.CreateJob(ctx, "r1", "c3"))
	require.NoError(t, store.FailJob(ctx, "r1", "c3", "transcription failed"))
	completeJob(t, store, "r2", "c1", `{"overall_score": 10}`)

	generator := llmmock.NewGenerator(validSummaryReport)
	s := newTestSummarizer(t, store, generator)

	summary, err := s.Summarize(ctx, "r1")
	require.NoError(t, err)
	assert.JSONEq(t, validSummaryReport, string(summary))

	require.Len(t, generator.Prompts, 1)
	prompt := generator.Prompts[0]
	assert.Contains(t, prompt, `"c1"`)
	assert.Contains(t, prompt, `"c2"`)
	assert.NotContains(t, prompt, `"c3"`)
	assert.NotContains(t, prompt, "transcription failed")
	// only r1's reports are embedded
	assert.NotContains(t, prompt, `"overall_score": 10`)
}

func TestSummarize_GeneratorNotConfigured(t *testing.T) {
	store := newTestStore(t)
	completeJob(t, store, "r1", "c1", `{"overall_score": 90}`)

	s := newTestSummarizer(t, store, nil)

	_, err := s.Summarize(context.Background(), "r1")
	assert.ErrorIs(t, err, domain.ErrClientsNotConfigured)
}

func TestSummarize_EmptyRoundWinsOverMissingGenerator(t *testing.T) {
	store := newTestStore(t)

	s := newTestSummarizer(t, store, nil)

	// a round with nothing completed is reported as empty, not as unavailable
	_, err := s.Summarize(context.Background(), "empty-round")
	assert.ErrorIs(t, err, domain.ErrNoCompletedJobs)
}

func TestSummarize_LLMTimeout(t *testing.T) {
	store := newTestStore(t)
	completeJob(t, store, "r1", "c1", `{"overall_score": 90}`)

	s := NewSummarizer(&SummarizerConfig{
		Store:          store,
		Generator:      llmmock.NewTimeoutGenerator(),
		Logger:         logger.NewDefault().Logger,
		SummaryTimeout: 50 * time.Millisecond,
	})

	_, err := s.Summarize(context.Background(), "r1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSummarize_MalformedSummaryResponse(t *testing.T) {
	store := newTestStore(t)
	completeJob(t, store, "r1", "c1", `{"overall_score": 90}`)

	raw := "```\nhere is your summary\n```"
	s := newTestSummarizer(t, store, llmmock.NewGenerator(raw))

	_, err := s.Summarize(context.Background(), "r1")
	require.Error(t, err)

	var malformed *domain.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	// the full provider output, fence included, is preserved
	assert.Equal(t, raw, malformed.RawText)
}
