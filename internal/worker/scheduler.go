package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartScheduler enqueues a pipeline run for the current month every
// intervalMinutes. A value of 0 disables scheduled runs.
func StartScheduler(ctx context.Context, dispatcher *Dispatcher, intervalMinutes int) {
	if intervalMinutes <= 0 {
		log.Info().Msg("scheduler deshabilitado (SCHEDULE_MINUTES=0)")
		return
	}
	interval := time.Duration(intervalMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Info().Msgf("scheduler iniciado, corridas cada %d minutos", intervalMinutes)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler detenido")
				return
			case <-ticker.C:
				periodo := time.Now().UTC().Format("2006-01")
				if err := dispatcher.EnqueueAnalisis(ctx, AnalisisJobPayload{Periodo: periodo}); err != nil {
					log.Error().Err(err).Msg("no se pudo encolar la corrida programada")
				}
			}
		}
	}()
}
