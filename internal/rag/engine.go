package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"runbookai/internal/contextutil"
	"runbookai/internal/gate"
	"runbookai/internal/planner"
	"runbookai/internal/retrieval"
	"runbookai/internal/service"
)

// Engine answers questions over the ingested corpus.
type Engine interface {
	// Ask retrieves evidence for the question, plans and composes an
	// answer, and gates it. A gate rejection is a successful response with
	// Accepted false, not an error.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

type engine struct {
	retriever *retrieval.Engine
	planner   *planner.Planner
	gate      *gate.Gate
}

// NewEngine creates the answer pipeline.
func NewEngine(retriever *retrieval.Engine, p *planner.Planner, g *gate.Gate) Engine {
	return &engine{
		retriever: retriever,
		planner:   p,
		gate:      g,
	}
}

// Ask runs the full pipeline for one question.
func (e *engine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	traceID := uuid.New().String()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("%w: question is required", service.ErrInvalidInput)
	}

	logger.InfoContext(ctx, "ask started", "trace_id", traceID, "question", question)

	results, degraded, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "trace_id", traceID, "error", err)
		return AskResponse{}, fmt.Errorf("failed to retrieve evidence: %w", err)
	}

	plan := e.planner.BuildPlan(question, results)
	answer := composeAnswer(plan, req.Diagnostics)
	report := e.gate.Check(answer, plan, req.Diagnostics)

	resp := AskResponse{
		Accepted:       report.Passed,
		QualityMetrics: report.Metrics,
		Degraded:       degraded,
		TraceID:        traceID,
	}

	if report.Passed {
		resp.AnswerText = answer
		resp.Citations = plan.Sources
	} else {
		resp.AnswerText = report.RejectionMessage
		logger.InfoContext(ctx, "answer rejected by quality gate",
			"trace_id", traceID, "issues", report.Issues)
	}

	if req.Debug {
		resp.Debug = e.debugInfo(question, results)
	}

	logger.InfoContext(ctx, "ask completed",
		"trace_id", traceID,
		"accepted", report.Passed,
		"degraded", degraded,
		"chunks", len(results),
		"citations", len(resp.Citations),
	)
	return resp, nil
}

func (e *engine) debugInfo(question string, results []retrieval.Result) *DebugInfo {
	info := &DebugInfo{
		RewrittenQuery:  retrieval.RewriteQuery(question),
		RerankerPresent: e.retriever.HasReranker(),
	}
	for _, result := range results {
		info.RetrievedChunks = append(info.RetrievedChunks, RetrievedChunk{
			ChunkID:       result.Chunk.ID,
			Filename:      result.Chunk.Filename,
			SectionType:   result.Chunk.SectionType,
			SectionPath:   result.Chunk.SectionPath,
			VectorScore:   result.VectorScore,
			LexicalScore:  result.LexicalScore,
			CombinedScore: result.CombinedScore,
		})
	}
	return info
}
