package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqKey = "jobs:dlq"

// DLQEntry registra un job agotado para inspección manual.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// SendToDLQ moves an exhausted job to the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, errMsg string, attempts int) {
	entry := DLQEntry{
		Queue:    queue,
		Type:     jobType,
		Payload:  payload,
		Error:    errMsg,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal DLQ entry")
		return
	}
	if err := rdb.LPush(ctx, dlqKey, encoded).Err(); err != nil {
		log.Error().Err(err).Msg("failed to push job to DLQ")
		return
	}
	log.Error().
		Str("queue", queue).
		Str("type", jobType).
		Int("attempts", attempts).
		Str("error", errMsg).
		Msg("job moved to DLQ")
}
