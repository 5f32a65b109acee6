package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// newLLM initializes the configured language model. Provider "none"
// returns nil: the agent then answers unknown queries with the
// suggestion text instead of free-form generation.
func newLLM(ctx context.Context, config LLMConfig) (llms.Model, error) {
	switch strings.ToLower(config.Provider) {
	case "none", "":
		return nil, nil
	case "openai":
		options := []openai.Option{
			openai.WithModel(config.Model),
			openai.WithToken(config.APIKey),
		}
		if config.BaseURL != "" {
			options = append(options, openai.WithBaseURL(config.BaseURL))
		}
		return openai.New(options...)
	case "googleai":
		return googleai.New(ctx,
			googleai.WithAPIKey(config.APIKey),
			googleai.WithDefaultModel(config.Model),
		)
	case "ollama":
		options := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			options = append(options, ollama.WithServerURL(config.BaseURL))
		}
		return ollama.New(options...)
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
}

const fallbackSystemPrompt = `You are a hospital pharmacy assistant. ` +
	`Answer briefly using only general pharmacy knowledge. If the user ` +
	`seems to want database information, tell them to try a structured ` +
	`command like 'list all medicines' or type 'help'.`

// generateFallback asks the model for a free-form answer to a query
// no handler could serve.
func generateFallback(ctx context.Context, model llms.Model, query string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("no language model configured")
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fallbackSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}
	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
