package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/semsync/internal/core/domain"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/core/ports/driving"
)

// Ensure AnalysisService implements the interface.
var _ driving.Analyzer = (*AnalysisService)(nil)

// analysisTopK is how many chunks are retrieved as context per question.
const analysisTopK = 8

const analysisSystemPrompt = `You are a log and document analysis assistant.
Answer strictly from the provided context. Cite the source file and page or
sequence number for every claim. If the context does not contain the answer,
say so.`

// AnalysisService is a thin consumer of retrieval plus chat completion: it
// pulls the best-matching chunks for a question and asks the LLM to answer
// from them.
type AnalysisService struct {
	searcher driving.Searcher
	llm      driven.LLMService
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(searcher driving.Searcher, llm driven.LLMService) *AnalysisService {
	return &AnalysisService{searcher: searcher, llm: llm}
}

// Analyze retrieves context for the question and asks the LLM.
func (a *AnalysisService) Analyze(ctx context.Context, question string) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	hits, err := a.searcher.Search(ctx, question, analysisTopK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	var b strings.Builder
	for _, hit := range hits {
		fmt.Fprintf(&b, "[%s p.%d] %s\n\n", hit.SourceFileName, hit.Page, hit.Text)
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), question)},
	}

	answer, err := a.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return answer, nil
}
