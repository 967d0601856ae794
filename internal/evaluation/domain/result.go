package domain

import (
	"encoding/json"

	"github.com/speaklab/retell-be/internal/asr"
)

// ResultSchemaVersion tags persisted result payloads so historical rows stay
// interpretable after the prompt schema evolves.
const ResultSchemaVersion = 1

// CardResult is the payload persisted for a COMPLETED job: the LLM's
// diagnostic report plus the raw source data it was produced from.
// Read-only once written.
type CardResult struct {
	SchemaVersion    int             `json:"schema_version"`
	EvaluationReport json.RawMessage `json:"evaluation_report"`
	SourceData       SourceData      `json:"source_data"`
}

// SourceData carries the transcripts and derived inputs behind a report.
type SourceData struct {
	OriginalASR  *asr.Transcript `json:"original_asr"`
	PracticeASR  *asr.Transcript `json:"practice_asr"`
	MissingWords []string        `json:"missing_words"`
}
