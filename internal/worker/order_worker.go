package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-gateway/internal/model"
)

const (
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

// OrderCreator is the single backend call the worker makes.
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID int64) (*model.Order, error)
}

// OrderWorker consumes order jobs published on payment success and turns
// each into exactly one backend order. Delivery is at-least-once; the redis
// marker keyed by checkout session makes application exactly-once, so a
// duplicate job (webhook plus browser return) cannot create two orders.
type OrderWorker struct {
	channel *amqp.Channel
	creator OrderCreator
	redis   *redis.Client
	log     *slog.Logger
	done    chan struct{}
}

func NewOrderWorker(ch *amqp.Channel, creator OrderCreator, redisClient *redis.Client, log *slog.Logger) *OrderWorker {
	return &OrderWorker{
		channel: ch,
		creator: creator,
		redis:   redisClient,
		log:     log,
		done:    make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *OrderWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order worker started")
	return nil
}

func (w *OrderWorker) Stop() { close(w.done) }

func (w *OrderWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var job model.OrderJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		w.log.Error("unmarshal order job", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("session_id", job.SessionID, "user_id", job.UserID, "intent_id", job.IntentID)

	idempotencyKey := "order_created:" + job.SessionID.String()
	exists, err := w.redis.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("order already created, skipping")
		_ = msg.Ack(false)
		return
	}

	order, err := w.creator.CreateOrder(ctx, job.UserID)
	if err != nil {
		log.Error("create order failed", "error", err)
		_ = msg.Nack(false, false) // → DLQ
		return
	}

	if err := w.redis.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order created", "order_id", order.ID)
}
