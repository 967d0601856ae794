package mock

import (
	"context"

	"github.com/speaklab/retell-be/internal/asr"
)

// Transcriber satisfies asr.Transcriber for testing.
type Transcriber struct {
	Name_          string
	TranscribeFunc func(ctx context.Context, audioPath string) (*asr.Transcript, error)
}

func (m *Transcriber) Name() string {
	if m.Name_ == "" {
		return "mock"
	}
	return m.Name_
}

func (m *Transcriber) Transcribe(ctx context.Context, audioPath string) (*asr.Transcript, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath)
	}
	return &asr.Transcript{}, nil
}

// NewTranscriber returns a Transcriber with a canned per-path transcript.
func NewTranscriber(transcripts map[string]*asr.Transcript) *Transcriber {
	return &Transcriber{
		TranscribeFunc: func(_ context.Context, audioPath string) (*asr.Transcript, error) {
			if t, ok := transcripts[audioPath]; ok {
				return t, nil
			}
			return &asr.Transcript{Text: "mock transcript"}, nil
		},
	}
}

// NewFailingTranscriber returns a Transcriber that fails for the given paths
// with the given error and succeeds for everything else.
func NewFailingTranscriber(err error, failPaths ...string) *Transcriber {
	fail := make(map[string]struct{}, len(failPaths))
	for _, p := range failPaths {
		fail[p] = struct{}{}
	}
	return &Transcriber{
		Name_: "mock-failing",
		TranscribeFunc: func(_ context.Context, audioPath string) (*asr.Transcript, error) {
			if _, ok := fail[audioPath]; ok || len(fail) == 0 {
				return nil, err
			}
			return &asr.Transcript{Text: "mock transcript"}, nil
		},
	}
}

// Compile-time check that Transcriber implements asr.Transcriber.
var _ asr.Transcriber = (*Transcriber)(nil)
