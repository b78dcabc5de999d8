// FILE: pkg/rag/pipeline/pipeline.go
// PURPOSE: The fixed three-stage RAG pipeline: retrieve → grade → generate.
// One Invoke call owns one State; nothing here is shared across requests.

package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-mailassist-be/internal/constant"
	"ai-mailassist-be/pkg/errs"
	"ai-mailassist-be/pkg/llm"
	"ai-mailassist-be/pkg/rag/retriever"
	"ai-mailassist-be/pkg/store"
)

// FallbackAnswer is the defined terminal output when no retrieved document
// survives grading. It is a normal answer, not a failure.
const FallbackAnswer = "Sorry, I couldn't find any relevant information in the knowledge base for your question."

const defaultTopK = 3

// ConversationMemory is the durable transcript the pipeline loads history
// from and appends each completed turn to.
type ConversationMemory interface {
	Load(ctx context.Context, sessionID string) ([]llm.Message, error)
	Append(ctx context.Context, sessionID, userText, assistantText string) error
}

// DocumentFilter is the grading stage: it returns the order-preserving
// subset of docs relevant to the question and never fails.
type DocumentFilter interface {
	Filter(ctx context.Context, question string, docs []store.Document) []store.Document
}

// State is the request-scoped value threaded through the three stages. It is
// owned exclusively by one Invoke call.
type State struct {
	Question   string
	Messages   []llm.Message    // full history plus the new question
	Documents  []store.Document // set by retrieve, shrunk by grade
	Generation string           // write-once, set by generate
}

type Result struct {
	Answer  string
	Sources []string
}

type Engine struct {
	retriever retriever.Retriever
	filter    DocumentFilter
	memory    ConversationMemory
	llm       llm.LLMProvider
	topK      int
	logger    *log.Logger
}

func NewEngine(
	ret retriever.Retriever,
	filter DocumentFilter,
	memory ConversationMemory,
	llmProvider llm.LLMProvider,
	logger *log.Logger,
) *Engine {
	return &Engine{
		retriever: ret,
		filter:    filter,
		memory:    memory,
		llm:       llmProvider,
		topK:      defaultTopK,
		logger:    logger,
	}
}

// Invoke runs the three stages strictly sequentially for one question and
// appends the completed turn to the conversation. Any external capability
// failure aborts the call; no stage is retried here. If the final append
// fails the whole call fails, so a transcript never records a half turn.
func (e *Engine) Invoke(ctx context.Context, sessionID, question string) (*Result, error) {
	history, err := e.memory.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state := &State{
		Question: question,
		Messages: append(history, llm.Message{Role: llm.RoleUser, Content: question}),
	}

	e.logger.Printf("[PIPELINE] session=%s question=%q history=%d", sessionID, truncate(question, 60), len(history))

	if err := e.retrieve(ctx, state); err != nil {
		return nil, err
	}
	e.logger.Printf("[PIPELINE] retrieved %d documents", len(state.Documents))

	e.grade(ctx, state)
	e.logger.Printf("[PIPELINE] %d documents survived grading", len(state.Documents))

	if err := e.generate(ctx, state); err != nil {
		return nil, err
	}

	if err := e.memory.Append(ctx, sessionID, question, state.Generation); err != nil {
		return nil, err
	}

	return &Result{
		Answer:  state.Generation,
		Sources: collectSources(state.Documents),
	}, nil
}

// retrieve derives the effective query and fills state.Documents. An empty
// effective query yields an empty document list, not an error.
func (e *Engine) retrieve(ctx context.Context, state *State) error {
	query := state.Question
	if query == "" && len(state.Messages) > 0 {
		query = state.Messages[len(state.Messages)-1].Content
	}
	if query == "" {
		state.Documents = nil
		return nil
	}
	state.Question = query

	docs, err := e.retriever.Search(ctx, query, e.topK)
	if err != nil {
		return err
	}
	state.Documents = docs
	return nil
}

// grade replaces the document list with the filtered subset. Per-document
// scoring failures are resolved inside the filter (fail-open) and never
// abort the pipeline.
func (e *Engine) grade(ctx context.Context, state *State) {
	state.Documents = e.filter.Filter(ctx, state.Question, state.Documents)
}

// generate produces the answer from the surviving documents, or the fixed
// fallback when none survived.
func (e *Engine) generate(ctx context.Context, state *State) error {
	if len(state.Documents) == 0 {
		state.Generation = FallbackAnswer
		return nil
	}

	contextBlock := buildContextBlock(state.Documents)
	messages := make([]llm.Message, 0, len(state.Messages)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(constant.AnswerSystemPrompt, contextBlock),
	})
	messages = append(messages, state.Messages...)

	answer, err := e.llm.Chat(ctx, messages)
	if err != nil {
		return errs.Wrap(errs.KindExternalService, "answer generation failed", err)
	}

	state.Generation = answer
	return nil
}

// buildContextBlock concatenates the surviving documents, each tagged with
// its source so the model can cite it.
func buildContextBlock(docs []store.Document) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if src := doc.Source(); src != "" {
			b.WriteString(fmt.Sprintf("[source: %s]\n", src))
		}
		b.WriteString(doc.Content)
	}
	return b.String()
}

// collectSources returns the distinct source ids of the documents that made
// it into generation, in first-seen order.
func collectSources(docs []store.Document) []string {
	seen := make(map[string]bool, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		src := doc.Source()
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
