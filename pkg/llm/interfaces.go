// Package llm provides the language-model clients behind the AI
// insights feature.
package llm

import "context"

// InsightClient answers a free-text analyst question given a context
// block assembled from recent indicators. Use this interface for
// dependency injection to enable mocking in tests.
type InsightClient interface {
	// Ask returns the model's answer to the question.
	Ask(ctx context.Context, question, dataContext string) (string, error)

	// Model returns the configured model name, for logging.
	Model() string
}

const systemPrompt = "You are a cybersecurity incident response analyst. " +
	"Provide clear, concise answers based on the provided threat intelligence data."

func buildPrompt(question, dataContext string) string {
	return "Analyze the following incident response data and answer the question:\n\n" +
		"Context: " + dataContext + "\n\nQuestion: " + question + "\n\nAnswer:"
}
