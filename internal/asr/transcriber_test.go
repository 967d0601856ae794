package asr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklab/retell-be/internal/asr"
	"github.com/speaklab/retell-be/internal/asr/mock"
)

func TestTranscribePair_Success(t *testing.T) {
	transcriber := mock.NewTranscriber(map[string]*asr.Transcript{
		"original.wav": {Text: "the quick brown fox"},
		"practice.wav": {Text: "the quick fox"},
	})

	pair, err := asr.TranscribePair(context.Background(), transcriber, "original.wav", "practice.wav")
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", pair.Original.Text)
	assert.Equal(t, "the quick fox", pair.Practice.Text)
}

func TestTranscribePair_OneClipFails(t *testing.T) {
	providerErr := errors.New("provider error: audio too short")
	transcriber := mock.NewFailingTranscriber(providerErr, "practice.wav")

	pair, err := asr.TranscribePair(context.Background(), transcriber, "original.wav", "practice.wav")
	require.Error(t, err)
	assert.Nil(t, pair)

	var trErr *asr.TranscriptionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, []string{"practice"}, trErr.FailedClips())
	assert.NoError(t, trErr.OriginalErr)
	assert.ErrorIs(t, trErr.PracticeErr, providerErr)
	assert.Contains(t, trErr.Error(), "practice")
	assert.Contains(t, trErr.Error(), "audio too short")
}

func TestTranscribePair_BothClipsFail(t *testing.T) {
	providerErr := errors.New("provider error: unreachable")
	transcriber := mock.NewFailingTranscriber(providerErr)

	_, err := asr.TranscribePair(context.Background(), transcriber, "a.wav", "b.wav")
	require.Error(t, err)

	var trErr *asr.TranscriptionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, []string{"original", "practice"}, trErr.FailedClips())
}

func TestMissingWords(t *testing.T) {
	tests := []struct {
		name     string
		original string
		practice string
		want     []string
	}{
		{
			name:     "some words missing",
			original: "The quick brown fox jumps",
			practice: "the quick fox",
			want:     []string{"brown", "jumps"},
		},
		{
			name:     "nothing missing",
			original: "hello world",
			practice: "Hello World",
			want:     nil,
		},
		{
			name:     "empty original",
			original: "",
			practice: "anything",
			want:     nil,
		},
		{
			name:     "empty practice",
			original: "b a",
			practice: "",
			want:     []string{"a", "b"},
		},
		{
			name:     "duplicates reported once",
			original: "go go go far",
			practice: "far",
			want:     []string{"go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, asr.MissingWords(tt.original, tt.practice))
		})
	}
}
