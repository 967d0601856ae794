package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speaklab/retell-be/internal/asr"
)

func sampleTranscripts() (*asr.Transcript, *asr.Transcript) {
	original := &asr.Transcript{
		Text: "The quick brown fox jumps over the lazy dog",
		Words: []asr.Word{
			{Text: "The", Confidence: 0.99, Start: 0, End: 120},
			{Text: "quick", Confidence: 0.97, Start: 120, End: 400},
		},
	}
	practice := &asr.Transcript{
		Text: "The quick fox jumps over the dog",
		Words: []asr.Word{
			{Text: "The", Confidence: 0.95, Start: 0, End: 150},
			{Text: "quick", Confidence: 0.62, Start: 150, End: 520},
		},
	}
	return original, practice
}

func TestBuildCardPrompt(t *testing.T) {
	original, practice := sampleTranscripts()
	missing := []string{"brown", "lazy"}

	prompt := BuildCardPrompt(original, practice, missing)

	// embedded transcript data
	assert.Contains(t, prompt, "The quick brown fox jumps over the lazy dog")
	assert.Contains(t, prompt, "The quick fox jumps over the dog")
	assert.Contains(t, prompt, `"brown"`)
	assert.Contains(t, prompt, `"lazy"`)

	// mandated schema fields
	for _, field := range []string{
		"meaning_fidelity", "missing_details", "added_inaccuracies",
		"expression_comparison", "fluency_assessment",
		"critical_pronunciation_issues", "overall_score",
	} {
		assert.Contains(t, prompt, field)
	}

	// fixed rubric weights
	assert.Contains(t, prompt, "50%")
	assert.Contains(t, prompt, "30%")
	assert.Contains(t, prompt, "20%")

	// response-language and bare-JSON contract
	assert.Contains(t, prompt, "中文")
	assert.Contains(t, prompt, "JSON 对象")
}

func TestBuildCardPrompt_Deterministic(t *testing.T) {
	original, practice := sampleTranscripts()

	first := BuildCardPrompt(original, practice, []string{"brown"})
	second := BuildCardPrompt(original, practice, []string{"brown"})
	assert.Equal(t, first, second)
}

func TestBuildCardPrompt_NilMissingWords(t *testing.T) {
	original, practice := sampleTranscripts()

	prompt := BuildCardPrompt(original, practice, nil)
	assert.Contains(t, prompt, "`missing_words`: []")
}

func TestBuildSummaryPrompt(t *testing.T) {
	reports := map[string]json.RawMessage{
		"c2": json.RawMessage(`{"overall_score": 71}`),
		"c1": json.RawMessage(`{"overall_score": 88}`),
	}

	prompt := BuildSummaryPrompt(reports)

	assert.Contains(t, prompt, `"c1"`)
	assert.Contains(t, prompt, `"c2"`)
	for _, field := range []string{
		"performance_overview", "final_score", "error_patterns",
		"observed_behavior", "root_cause", "vocabulary_focus",
		"native_speech_insight",
	} {
		assert.Contains(t, prompt, field)
	}

	// deterministic regardless of map iteration order
	assert.Equal(t, prompt, BuildSummaryPrompt(reports))
}

func TestValidateCardReport(t *testing.T) {
	valid := `{
		"meaning_fidelity": "复述保留了原句大意",
		"missing_details": ["遗漏了 brown"],
		"added_inaccuracies": [],
		"expression_comparison": "用词基本一致",
		"fluency_assessment": "节奏略快",
		"critical_pronunciation_issues": [{"word": "quick", "issue": "元音发音不到位", "hint": "注意 /ɪ/"}],
		"overall_score": 82
	}`

	var report any
	require.NoError(t, json.Unmarshal([]byte(valid), &report))
	assert.NoError(t, ValidateCardReport(report))

	var missingScore any
	require.NoError(t, json.Unmarshal([]byte(`{"meaning_fidelity": "ok"}`), &missingScore))
	assert.Error(t, ValidateCardReport(missingScore))

	var outOfRange any
	require.NoError(t, json.Unmarshal([]byte(`{
		"meaning_fidelity": "ok", "missing_details": [], "added_inaccuracies": [],
		"expression_comparison": "ok", "fluency_assessment": "ok",
		"critical_pronunciation_issues": [], "overall_score": 140
	}`), &outOfRange))
	assert.Error(t, ValidateCardReport(outOfRange))
}

func TestValidateSummaryReport(t *testing.T) {
	valid := `{
		"performance_overview": {"final_score": 78, "comment": "整体进步明显"},
		"error_patterns": [{"observed_behavior": "th 音普遍发成 s", "root_cause": "听辨时未区分 /θ/ 与 /s/"}],
		"vocabulary_focus": ["jump over", "lazy", "brown"],
		"native_speech_insight": "母语者会把 over the 连读为 /oʊvərðə/"
	}`

	var report any
	require.NoError(t, json.Unmarshal([]byte(valid), &report))
	assert.NoError(t, ValidateSummaryReport(report))

	var empty any
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Error(t, ValidateSummaryReport(empty))
}
