package evaluation

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The report schemas below serve two purposes: they are embedded verbatim into
// the prompts as the output contract, and they back advisory post-parse
// validation. Report fields are LLM-defined; a schema mismatch is logged and
// never fails a job.

var cardReportSchemaDoc = map[string]any{
	"type":                 "object",
	"additionalProperties": true,
	"properties": map[string]any{
		"meaning_fidelity":      map[string]any{"type": "string", "minLength": 1},
		"missing_details":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"added_inaccuracies":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"expression_comparison": map[string]any{"type": "string"},
		"fluency_assessment":    map[string]any{"type": "string"},
		"critical_pronunciation_issues": map[string]any{
			"type":     "array",
			"maxItems": 2,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"word":  map[string]any{"type": "string"},
					"issue": map[string]any{"type": "string"},
					"hint":  map[string]any{"type": "string"},
				},
				"required": []string{"word", "issue"},
			},
		},
		"overall_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
	},
	"required": []string{
		"meaning_fidelity", "missing_details", "added_inaccuracies",
		"expression_comparison", "fluency_assessment",
		"critical_pronunciation_issues", "overall_score",
	},
}

var summaryReportSchemaDoc = map[string]any{
	"type":                 "object",
	"additionalProperties": true,
	"properties": map[string]any{
		"performance_overview": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"final_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
				"comment":     map[string]any{"type": "string"},
			},
			"required": []string{"final_score", "comment"},
		},
		"error_patterns": map[string]any{
			"type":     "array",
			"minItems": 1,
			"maxItems": 3,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"observed_behavior": map[string]any{"type": "string"},
					"root_cause":        map[string]any{"type": "string"},
				},
				"required": []string{"observed_behavior", "root_cause"},
			},
		},
		"vocabulary_focus": map[string]any{
			"type":     "array",
			"minItems": 3,
			"maxItems": 4,
			"items":    map[string]any{"type": "string"},
		},
		"native_speech_insight": map[string]any{"type": "string", "minLength": 1},
	},
	"required": []string{
		"performance_overview", "error_patterns",
		"vocabulary_focus", "native_speech_insight",
	},
}

var (
	cardReportSchema    = jsonschema.MustCompileString("card_report.json", mustJSON(cardReportSchemaDoc))
	summaryReportSchema = jsonschema.MustCompileString("summary_report.json", mustJSON(summaryReportSchemaDoc))
)

// ValidateCardReport checks a parsed card report against the advertised
// schema. Advisory only.
func ValidateCardReport(report any) error {
	return cardReportSchema.Validate(report)
}

// ValidateSummaryReport checks a parsed summary report against the advertised
// schema. Advisory only.
func ValidateSummaryReport(report any) error {
	return summaryReportSchema.Validate(report)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustJSONIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}
