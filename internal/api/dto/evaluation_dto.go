package dto

import "encoding/json"

// SubmitEvaluationRequest is the multipart form for POST /evaluate-single-card.
// The two file parts (practice_audio, original_audio) are read separately.
type SubmitEvaluationRequest struct {
	RoundID string `form:"round_id" binding:"required"`
	CardID  string `form:"card_id" binding:"required"`
}

// SubmitEvaluationResponse acknowledges an accepted submission.
type SubmitEvaluationResponse struct {
	Message string `json:"message"`
	RoundID string `json:"round_id"`
	CardID  string `json:"card_id"`
	Status  string `json:"status"`
}

// JobResultResponse is the polling payload for a single card.
type JobResultResponse struct {
	RoundID      string          `json:"round_id"`
	CardID       string          `json:"card_id"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorMessage *string         `json:"error_message"`
}
