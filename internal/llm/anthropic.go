package llm

import (
	"context"
	"errors"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/zerolog/log"
)

// AnthropicProvider generates the executive report through the Anthropic
// Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) GenerateExecutiveReport(ctx context.Context, payload ReportPayload) (string, error) {
	prompt := systemMessage + "\n\n" + executiveReportPrompt(payload)
	start := time.Now()

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2000,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("anthropic: report request failed")
		return "", err
	}

	var out string
	for _, c := range resp.Content {
		if c.Text != nil {
			out += *c.Text
		}
	}
	if out == "" {
		return "", errors.New("anthropic: respuesta sin contenido")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("anthropic: report generated")
	return out, nil
}
