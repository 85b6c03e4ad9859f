package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockAlerts = "jobs:stock_alerts"

	// Alerts that keep failing get parked in the DLQ after this many attempts.
	maxJobAttempts = 3

	// Recent alerts are mirrored into a capped Redis list so operators can
	// inspect them without log access.
	recentAlertsKey = "alerts:recent"
	recentAlertsCap = 200
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// StockAlertPayload is enqueued when a deduction exhausts a product's stock
// in a warehouse.
type StockAlertPayload struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockAlert pushes an out-of-stock notification job to Redis.
func (d *Dispatcher) EnqueueStockAlert(ctx context.Context, payload StockAlertPayload) error {
	return d.enqueue(ctx, QueueStockAlerts, "stock_alert", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the alert queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStockAlerts).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch job.Type {
	case "stock_alert":
		err = handleStockAlert(ctx, rdb, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type, dropping")
		return
	}

	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Str("type", job.Type).Msg("failed to re-encode job for retry")
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("type", job.Type).Msg("failed to requeue job")
	}
}

// handleStockAlert records the out-of-stock event: a structured warning for
// the logs plus an entry in the capped recent-alerts list.
func handleStockAlert(ctx context.Context, rdb *redis.Client, payload json.RawMessage) error {
	var alert StockAlertPayload
	if err := json.Unmarshal(payload, &alert); err != nil {
		return err
	}

	log.Warn().
		Str("product_id", alert.ProductID).
		Str("warehouse_id", alert.WarehouseID).
		Msg("product out of stock")

	entry, err := json.Marshal(struct {
		StockAlertPayload
		At string `json:"at"`
	}{alert, time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}

	pipe := rdb.Pipeline()
	pipe.LPush(ctx, recentAlertsKey, entry)
	pipe.LTrim(ctx, recentAlertsKey, 0, recentAlertsCap-1)
	_, err = pipe.Exec(ctx)
	return err
}
