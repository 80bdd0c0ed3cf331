package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

const (
	reviewChannel      = "ai_reviewer:reviews"
	vectorizationQueue = "ai_reviewer:vectorization_queue"
)

// ReviewEvent is published on the reviews channel when a review completes.
type ReviewEvent struct {
	Event         string          `json:"event"`
	DocumentID    string          `json:"document_id"`
	PRNumber      int             `json:"pr_number"`
	Repo          string          `json:"repo"`
	Timestamp     time.Time       `json:"timestamp"`
	Metrics       model.PRMetrics `json:"metrics"`
	FeedbackCount int             `json:"feedback_count"`
	Status        string          `json:"status"`
}

// QueueItem is one entry on the vectorization queue.
type QueueItem struct {
	DocumentID string    `json:"document_id"`
	Priority   int       `json:"priority"`
	QueuedAt   time.Time `json:"queued_at"`
}

// RedisQueue publishes review events and feeds the vectorization queue that
// the repository review system consumes.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(addr, password string) *RedisQueue {
	return &RedisQueue{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// PublishReview announces a completed review to subscribers. Returns the
// number of subscribers that received the event.
func (q *RedisQueue) PublishReview(ctx context.Context, r *model.ReviewResult, documentID string) (int64, error) {
	event := ReviewEvent{
		Event:         "review_completed",
		DocumentID:    documentID,
		PRNumber:      r.PRNumber,
		Repo:          r.Repo,
		Timestamp:     time.Now().UTC(),
		Metrics:       r.Metrics,
		FeedbackCount: len(r.Feedbacks),
		Status:        r.OverallStatus().String(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal review event: %w", err)
	}

	n, err := q.rdb.Publish(ctx, reviewChannel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish review event: %w", err)
	}
	return n, nil
}

// Enqueue adds a document to the vectorization queue and returns the queue
// length afterwards.
func (q *RedisQueue) Enqueue(ctx context.Context, documentID string, priority int) (int64, error) {
	item := QueueItem{
		DocumentID: documentID,
		Priority:   priority,
		QueuedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return 0, fmt.Errorf("marshal queue item: %w", err)
	}

	n, err := q.rdb.RPush(ctx, vectorizationQueue, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("enqueue document: %w", err)
	}
	return n, nil
}

// Dequeue pops the next queue item. With a positive timeout it blocks until
// an item arrives or the timeout expires; otherwise it returns immediately.
// A nil item means the queue was empty.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*QueueItem, error) {
	var payload string

	if timeout > 0 {
		res, err := q.rdb.BLPop(ctx, timeout, vectorizationQueue).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("blocking dequeue: %w", err)
		}
		payload = res[1]
	} else {
		res, err := q.rdb.LPop(ctx, vectorizationQueue).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("dequeue: %w", err)
		}
		payload = res
	}

	var item QueueItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, fmt.Errorf("decode queue item: %w", err)
	}
	return &item, nil
}

// QueueLength returns the number of pending vectorization items.
func (q *RedisQueue) QueueLength(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, vectorizationQueue).Result()
}

// SubscribeReviews delivers review events on the returned channel until the
// context is canceled.
func (q *RedisQueue) SubscribeReviews(ctx context.Context) (<-chan ReviewEvent, error) {
	sub := q.rdb.Subscribe(ctx, reviewChannel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe to reviews: %w", err)
	}

	out := make(chan ReviewEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event ReviewEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				out <- event
			}
		}
	}()
	return out, nil
}

// Ping reports whether the Redis connection is alive.
func (q *RedisQueue) Ping(ctx context.Context) bool {
	return q.rdb.Ping(ctx).Err() == nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
