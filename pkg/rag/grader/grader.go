// FILE: pkg/rag/grader/grader.go
// PURPOSE: Per-document binary relevance grading between retrieval and
// generation. Fail-open: a scoring failure keeps the document, biasing
// toward recall; only an explicit "no" removes one.

package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-mailassist-be/internal/constant"
	"ai-mailassist-be/pkg/llm"
	"ai-mailassist-be/pkg/store"
)

// Grade is the outcome of scoring one document. GradeKeep is the zero value
// so every failure path defaults to keeping the document.
type Grade int

const (
	GradeKeep Grade = iota
	GradeDrop
)

// maxDocumentChars truncates long documents before scoring to keep the
// grading round-trip fast.
const maxDocumentChars = 1500

type Grader struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGrader(llmProvider llm.LLMProvider, logger *log.Logger) *Grader {
	return &Grader{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Filter returns the order-preserving subset of docs graded relevant to the
// question. Scoring failures never surface to the caller: the affected
// document is kept and the failure only logged.
func (g *Grader) Filter(ctx context.Context, question string, docs []store.Document) []store.Document {
	filtered := make([]store.Document, 0, len(docs))

	for i, doc := range docs {
		grade, err := g.gradeDocument(ctx, question, doc.Content)
		if err != nil {
			g.logger.Printf("[GRADER] scoring failed for doc %d (%s), keeping it: %v", i, doc.Source(), err)
			grade = GradeKeep
		}
		if grade == GradeKeep {
			filtered = append(filtered, doc)
		}
	}

	return filtered
}

func (g *Grader) gradeDocument(ctx context.Context, question, document string) (Grade, error) {
	if len(document) > maxDocumentChars {
		document = document[:maxDocumentChars] + "..."
	}

	prompt := fmt.Sprintf(constant.RelevanceGradePrompt, document, question)

	// Low temperature for consistent scoring, short response cap
	response, err := g.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(64),
	)
	if err != nil {
		return GradeKeep, err
	}

	return parseGradeResponse(response)
}

// parseGradeResponse extracts the binary score from the model output. An
// unparseable response counts as a scoring failure, not as "no".
func parseGradeResponse(response string) (Grade, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var result struct {
		BinaryScore string `json:"binary_score"`
	}
	if err := json.Unmarshal([]byte(response), &result); err == nil {
		switch strings.ToLower(strings.TrimSpace(result.BinaryScore)) {
		case "yes":
			return GradeKeep, nil
		case "no":
			return GradeDrop, nil
		}
		return GradeKeep, fmt.Errorf("unexpected binary_score %q", result.BinaryScore)
	}

	// Models sometimes answer with a bare word despite the JSON instruction.
	switch strings.ToLower(response) {
	case "yes":
		return GradeKeep, nil
	case "no":
		return GradeDrop, nil
	}

	return GradeKeep, fmt.Errorf("unparseable grade response %q", truncate(response, 80))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
