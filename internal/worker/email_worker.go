package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lagabyok/SabIA-agent/internal/infra"
)

// EmailWorker envía por SMTP los reportes generados por corridas programadas.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload de email invalido: %w", err)
	}
	if err := w.mailer.SendReporte(payload.To, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		return fmt.Errorf("envio de reporte a %s: %w", payload.To, err)
	}
	log.Info().Str("to", payload.To).Str("subject", payload.Subject).Msg("reporte enviado por correo")
	return nil
}
