package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lagabyok/SabIA-agent/internal/config"
	"github.com/lagabyok/SabIA-agent/internal/dto"
	"github.com/lagabyok/SabIA-agent/internal/infra"
	"github.com/lagabyok/SabIA-agent/internal/service"
)

// AnalisisJobPayload describes a scheduled pipeline run.
type AnalisisJobPayload struct {
	Periodo string `json:"periodo"`
	LLM     string `json:"llm,omitempty"`
}

// EmailJobPayload describes a pending report email.
type EmailJobPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path,omitempty"`
}

// AnalisisWorker ejecuta el pipeline completo para un periodo y, si hay
// destinatario configurado, encola el envío del reporte por correo.
type AnalisisWorker struct {
	svc        service.AnalisisService
	dispatcher *Dispatcher
	cfg        *config.Config
}

func NewAnalisisWorker(svc service.AnalisisService, dispatcher *Dispatcher, cfg *config.Config) *AnalisisWorker {
	return &AnalisisWorker{svc: svc, dispatcher: dispatcher, cfg: cfg}
}

func (w *AnalisisWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AnalisisJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload de analisis invalido: %w", err)
	}
	if payload.Periodo == "" {
		payload.Periodo = time.Now().UTC().Format("2006-01")
	}
	if payload.LLM == "" {
		payload.LLM = w.cfg.LLMProvider
	}

	record, err := w.svc.Ejecutar(ctx, dto.RunRequest{Periodo: payload.Periodo, LLM: payload.LLM})
	if err != nil {
		return fmt.Errorf("corrida programada %s: %w", payload.Periodo, err)
	}
	log.Info().
		Str("run_id", record.RunID).
		Str("periodo", record.Periodo).
		Int("alertas", len(record.Alertas)).
		Msg("corrida programada completada")

	if w.cfg.ReporteEmailTo == "" {
		return nil
	}

	pdfPath, err := infra.GenerateReportePDF(record, w.cfg.PDFStoragePath)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo generar el PDF, se envía solo el texto")
		pdfPath = ""
	}
	email := EmailJobPayload{
		To:      w.cfg.ReporteEmailTo,
		Subject: fmt.Sprintf("Reporte de rentabilidad %s", record.Periodo),
		Body:    record.ExecutiveReportMD,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, email); err != nil {
		return fmt.Errorf("no se pudo encolar el correo del reporte: %w", err)
	}
	return nil
}
