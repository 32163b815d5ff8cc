// Package advisor answers budgeting questions with an LLM, grounding every
// prompt in the owner's ledger summary.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"fiscus/internal/core"
)

const systemPrompt = `You are a helpful financial assistant. You are talking to an older teenager who is learning to manage their money. Maybe throw a joke in here and there. Maintain authority but don't be cold or distant.
Provide clear, concise, and friendly advice based on the user's financial data. If you don't have enough information, ask relevant questions to gather more details.
Don't ramble or make up information. Keep focus on budgeting, saving, and spending habits.
Respond in a way that is easy to understand and actionable.`

// Advisor wraps the chat-completion client with the ledger-aware prompt.
type Advisor struct {
	client *openai.Client
	model  string
}

// New builds an advisor. baseURL is optional and lets the client point at any
// OpenAI-compatible endpoint; model defaults are the caller's concern.
func New(apiKey, baseURL, model string) (*Advisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("advisor: api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("advisor: model is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Advisor{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Ask sends the owner's summary and question to the model and returns the
// trimmed reply.
func (a *Advisor) Ask(ctx context.Context, summary, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", core.Validationf("question cannot be empty")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(summary, question)},
		},
	})
	if err != nil {
		return "", &core.TransportError{Op: "advisor.ask", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.TransportError{Op: "advisor.ask", Err: fmt.Errorf("empty completion response")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt joins the ledger summary and the question into the user turn.
func BuildPrompt(summary, question string) string {
	var b strings.Builder
	if summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	b.WriteString("User's question: ")
	b.WriteString(question)
	return b.String()
}
