// Package asr wraps the external speech-to-text provider. Transcripts are
// treated as opaque structured input for prompt construction; no invariants
// are enforced beyond surfacing provider-reported errors.
package asr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Word is one recognized token with provider confidence and timing (ms).
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Transcript is the structured speech-to-text output for one clip.
type Transcript struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// Transcriber converts an audio file into a transcript.
// Never call a concrete provider directly; inject this interface.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Transcript, error)
	Name() string
}

// TranscriptionError reports the outcome of both clips of an evaluation when
// the provider failed on at least one of them.
type TranscriptionError struct {
	OriginalErr error
	PracticeErr error
}

func (e *TranscriptionError) Error() string {
	detail := func(err error) string {
		if err == nil {
			return "ok"
		}
		return err.Error()
	}
	return fmt.Sprintf("ASR error - original: %s; practice: %s", detail(e.OriginalErr), detail(e.PracticeErr))
}

// FailedClips names the clips the provider rejected.
func (e *TranscriptionError) FailedClips() []string {
	var clips []string
	if e.OriginalErr != nil {
		clips = append(clips, "original")
	}
	if e.PracticeErr != nil {
		clips = append(clips, "practice")
	}
	return clips
}

// PairResult bundles the two transcripts of one evaluation.
type PairResult struct {
	Original *Transcript
	Practice *Transcript
}

// TranscribePair transcribes both clips concurrently and waits for both to
// finish. Neither call blocks the other's submission; if either fails the
// returned *TranscriptionError carries the outcome of each clip.
func TranscribePair(ctx context.Context, t Transcriber, originalPath, practicePath string) (*PairResult, error) {
	var (
		wg       sync.WaitGroup
		original *Transcript
		practice *Transcript
		origErr  error
		pracErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		original, origErr = t.Transcribe(ctx, originalPath)
	}()
	go func() {
		defer wg.Done()
		practice, pracErr = t.Transcribe(ctx, practicePath)
	}()
	wg.Wait()

	if origErr != nil || pracErr != nil {
		return nil, &TranscriptionError{OriginalErr: origErr, PracticeErr: pracErr}
	}

	return &PairResult{Original: original, Practice: practice}, nil
}

// MissingWords returns the words present in the original text but absent from
// the practice text, case-folded and sorted.
func MissingWords(originalText, practiceText string) []string {
	if originalText == "" {
		return nil
	}

	practiceSet := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(practiceText)) {
		practiceSet[w] = struct{}{}
	}

	seen := make(map[string]struct{})
	var missing []string
	for _, w := range strings.Fields(strings.ToLower(originalText)) {
		if _, ok := practiceSet[w]; ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		missing = append(missing, w)
	}

	sort.Strings(missing)
	return missing
}
