package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradeyard/eventgate/internal/kafka"
	"github.com/tradeyard/eventgate/internal/model"
	"go.uber.org/zap"
)

// KafkaQueue is the durable queue variant: serve produces jobs to a topic
// and a separate worker process consumes them, so delivery survives API
// restarts and runs in its own failure domain.
type KafkaQueue struct {
	producer *kafka.Producer
}

func NewKafkaQueue(producer *kafka.Producer) *KafkaQueue {
	return &KafkaQueue{producer: producer}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, job model.DeliveryJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delivery job: %w", err)
	}
	// Key by subscription for partition locality; ordering is still not
	// guaranteed once jobs reach the retrying workers.
	return q.producer.Publish(ctx, []byte(job.SubscriptionID), b)
}

// KafkaSource feeds the worker pool from the jobs topic. Offsets commit
// after a job reaches a terminal state (at-least-once).
type KafkaSource struct {
	consumer *kafka.Consumer
	log      *zap.Logger
}

func NewKafkaSource(consumer *kafka.Consumer, log *zap.Logger) *KafkaSource {
	return &KafkaSource{consumer: consumer, log: log}
}

func (s *KafkaSource) Fetch(ctx context.Context) (model.DeliveryJob, Ack, error) {
	for {
		m, err := s.consumer.Fetch(ctx)
		if err != nil {
			return model.DeliveryJob{}, nil, err
		}

		var job model.DeliveryJob
		if err := json.Unmarshal(m.Value, &job); err != nil || job.TargetURL == "" {
			// poison message: commit and skip
			s.log.Warn("dropping malformed delivery job", zap.Error(err))
			if cerr := s.consumer.Commit(ctx, m); cerr != nil {
				s.log.Warn("committing poison message failed", zap.Error(cerr))
			}
			continue
		}

		msg := m
		ack := func(ctx context.Context) {
			if err := s.consumer.Commit(ctx, msg); err != nil {
				s.log.Warn("kafka commit failed", zap.Error(err))
			}
		}
		return job, ack, nil
	}
}
