// Package rag wires the full answer path: retrieve, plan, compose, gate.
package rag

import "runbookai/internal/gate"

// AskRequest is one question for the pipeline.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question" validate:"required,min=3"`
	// Debug enables the retrieval debug payload in the response.
	Debug bool `json:"debug,omitempty"`
	// Diagnostics are optional pre-collected tool outputs, keyed by tool
	// name. They are rendered into the answer and count toward the gate's
	// evidence score; nothing is executed here.
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
}

// AskResponse is the pipeline's answer, accepted or rejected. Rejected
// answers carry the gate's rejection text in AnswerText and Accepted false;
// the response shape is identical either way.
type AskResponse struct {
	// AnswerText is the composed markdown answer, or the rejection message.
	AnswerText string `json:"answer_text"`
	// Accepted reports whether the answer passed the quality gate.
	Accepted bool `json:"accepted"`
	// Citations are "filename#chunk_id" references, deduplicated, in
	// first-use order. Empty on rejection.
	Citations []string `json:"citations"`
	// QualityMetrics are the gate's measured numbers, present on every
	// response.
	QualityMetrics gate.Metrics `json:"quality_metrics"`
	// Degraded reports lexical-only retrieval (vector backend unavailable).
	Degraded bool `json:"degraded,omitempty"`
	// TraceID identifies this request in logs.
	TraceID string `json:"trace_id"`
	// Debug is the retrieval debug payload, present only when requested.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo exposes the ranked evidence behind an answer.
type DebugInfo struct {
	RewrittenQuery  string           `json:"rewritten_query"`
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
	RerankerPresent bool             `json:"reranker_present"`
}

// RetrievedChunk is one ranked chunk with its scores.
type RetrievedChunk struct {
	ChunkID       string  `json:"chunk_id"`
	Filename      string  `json:"filename"`
	SectionType   string  `json:"section_type"`
	SectionPath   string  `json:"section_path"`
	VectorScore   float64 `json:"score_vector"`
	LexicalScore  float64 `json:"score_lexical"`
	CombinedScore float64 `json:"score_combined"`
}
