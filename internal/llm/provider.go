// Package llm generates the narrative executive report for a finished run.
// Providers are optional collaborators: a failure never fails the run — the
// orchestrator falls back to the deterministic template in fallback.go.
package llm

import (
	"context"

	"github.com/lagabyok/SabIA-agent/internal/config"
	"github.com/lagabyok/SabIA-agent/internal/dto"
)

// ReportPayload is the fixed contract handed to a provider: the KPI set plus
// the top alerts (at most five, ranked by severity).
type ReportPayload struct {
	KPIs    dto.KPIs     `json:"kpis"`
	Alertas []dto.Alerta `json:"alerts"`
}

// Provider is a text-generation collaborator. One operation, bounded time,
// no internal retry.
type Provider interface {
	Name() string
	GenerateExecutiveReport(ctx context.Context, payload ReportPayload) (string, error)
}

// ForName selects a concrete provider by configuration. Unknown or empty
// names yield nil, which the orchestrator treats as "deterministic template
// only" — it never branches on provider identity beyond this point.
func ForName(name string, cfg *config.Config) Provider {
	switch name {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		return nil
	}
}
