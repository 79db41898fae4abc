package queue

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

// Enqueue queues a captured still for background archival. The key is
// assigned here so retried jobs stay idempotent in storage.
func (p *Producer) Enqueue(ctx context.Context, job model.ArchiveJob) error {
	if job.Key == "" {
		job.Key = uuid.NewString() + ".jpg"
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.cfg.Redis.ArchiveQueue, data).Err()
}
