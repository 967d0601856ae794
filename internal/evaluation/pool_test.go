package evaluation

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apidomain "github.com/speaklab/retell-be/internal/api/domain"
	asrmock "github.com/speaklab/retell-be/internal/asr/mock"
	llmmock "github.com/speaklab/retell-be/internal/llm/mock"
	"github.com/speaklab/retell-be/shared/logger"
)

func TestPool_ProcessesSubmittedTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	p := newProcessor(t, store, asrmock.NewTranscriber(nil), llmmock.NewGenerator(validCardReport))
	pool := NewPool(p, 2, 16, logger.NewDefault().Logger)
	pool.Start()

	const n = 5
	for i := 0; i < n; i++ {
		cardID := fmt.Sprintf("c%d", i)
		require.NoError(t, store.CreateJob(ctx, "r1", cardID))
		require.NoError(t, pool.Submit(Task{
			RoundID:      "r1",
			CardID:       cardID,
			OriginalPath: filepath.Join(dir, cardID+"_orig.wav"),
			PracticePath: filepath.Join(dir, cardID+"_prac.wav"),
		}))
	}

	// Stop drains the queue before returning.
	pool.Stop()

	for i := 0; i < n; i++ {
		job, err := store.GetJob(ctx, "r1", fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		assert.Equal(t, apidomain.JobStatusCompleted, job.Status)
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	store := newTestStore(t)

	p := newProcessor(t, store, asrmock.NewTranscriber(nil), llmmock.NewGenerator(validCardReport))
	pool := NewPool(p, 1, 4, logger.NewDefault().Logger)
	pool.Start()
	pool.Stop()

	err := pool.Submit(Task{RoundID: "r1", CardID: "c1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}
