// Package archive copies completed attendance stills into object storage
// in the background. Archival is best effort: it never blocks or fails
// the user-facing capture flow.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/queue"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/storage"
)

type Worker struct {
	cfg      *config.Config
	store    storage.Storage
	consumer *queue.Consumer
	pool     *WorkerPool
	log      zerolog.Logger
}

func NewWorker(cfg *config.Config, store storage.Storage, redisClient *queue.RedisClient) *Worker {
	return &Worker{
		cfg:      cfg,
		store:    store,
		consumer: queue.NewConsumer(redisClient, cfg),
		pool:     NewWorkerPool(cfg.Archive.Workers),
		log:      logger.Named("archive"),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting archive worker")
	w.pool.Start(ctx)
	return w.consumer.ConsumeArchiveQueue(ctx, w.handleMessage)
}

func (w *Worker) Stop() {
	w.pool.Stop()
}

func (w *Worker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ArchiveJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("failed to unmarshal archive job: %w", err)
	}
	if job.Key == "" || len(job.Image) == 0 {
		return fmt.Errorf("archive job missing key or image")
	}

	// Hand off to the pool; a saturated pool pushes the message to the
	// DLQ instead of dropping it.
	if ok := w.pool.Submit(func(ctx context.Context) error {
		return w.archive(ctx, job)
	}); !ok {
		return fmt.Errorf("archive pool saturated")
	}
	return nil
}

func (w *Worker) archive(ctx context.Context, job model.ArchiveJob) error {
	exists, err := w.store.Exists(ctx, job.Key)
	if err == nil && exists {
		// Re-delivered job, already archived.
		return nil
	}

	if err := w.store.Upload(ctx, job.Key, bytes.NewReader(job.Image)); err != nil {
		return fmt.Errorf("failed to archive still: %w", err)
	}

	w.log.Debug().Str("key", job.Key).Str("lesson_id", job.LessonID).
		Int("bytes", len(job.Image)).Msg("Still archived")
	return nil
}
