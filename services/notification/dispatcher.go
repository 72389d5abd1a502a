package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"serenity/models"
)

// AsynqDispatcher queues notification tasks on Redis. Each task gets a
// small retry budget of its own, independent of the store retry
// executor.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewAsynqDispatcher(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(redisOpt),
		logger: logger,
	}
}

func (d *AsynqDispatcher) BookingConfirmed(ctx context.Context, p models.NotificationPayload) error {
	p.Kind = "booking_confirmed"
	return d.enqueue(ctx, TypeBookingConfirmed, p)
}

func (d *AsynqDispatcher) BookingCancelled(ctx context.Context, p models.NotificationPayload) error {
	p.Kind = "booking_cancelled"
	return d.enqueue(ctx, TypeBookingCancelled, p)
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, taskType string, p models.NotificationPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	task := asynq.NewTask(taskType, body)
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.New().String()),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	d.logger.Debug("queued notification",
		zap.String("type", taskType),
		zap.String("taskId", info.ID),
		zap.String("bookingId", p.BookingID))
	return nil
}

// Close releases the underlying Redis connection.
func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}
