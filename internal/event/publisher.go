package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradeyard/eventgate/internal/dispatch"
	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/realtime"
	"go.uber.org/zap"
)

// SubscriptionSource looks up the active subscriptions for an event type.
// Satisfied by the webhook service.
type SubscriptionSource interface {
	ListActive(ctx context.Context, eventType string) ([]*model.Subscription, error)
}

// Publisher turns one completed business mutation into zero-or-more webhook
// delivery jobs plus an optional realtime broadcast. The mutation is already
// durably committed when Publish runs, so nothing here rolls it back; the
// guarantee is at-least-once and eventually consistent, not exactly-once.
type Publisher struct {
	subs        SubscriptionSource
	queue       dispatch.Queue
	broadcaster realtime.Broadcaster
	channel     string
	log         *zap.Logger
}

func NewPublisher(subs SubscriptionSource, queue dispatch.Queue, broadcaster realtime.Broadcaster, channel string, log *zap.Logger) *Publisher {
	return &Publisher{
		subs:        subs,
		queue:       queue,
		broadcaster: broadcaster,
		channel:     channel,
		log:         log,
	}
}

// Publish builds the envelope, enqueues one delivery job per matching active
// subscription, and, when isRealtime is set, broadcasts one best-effort
// serialized copy. The two paths are fully independent: a broadcast failure
// never touches the delivery jobs and vice versa.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any, isRealtime bool) error {
	env, err := model.NewEnvelope(eventType, data)
	if err != nil {
		return err
	}

	subs, err := p.subs.ListActive(ctx, eventType)
	if err != nil {
		return fmt.Errorf("looking up subscriptions for %s: %w", eventType, err)
	}

	enqueued := 0
	for _, sub := range subs {
		job := model.DeliveryJob{
			SubscriptionID: sub.ID,
			TargetURL:      sub.TargetURL,
			EventType:      eventType,
			Payload:        env,
			Secret:         sub.Secret,
			Headers:        sub.Headers,
		}
		if err := p.queue.Enqueue(ctx, job); err != nil {
			p.log.Warn("enqueueing delivery job failed",
				zap.String("event_type", eventType),
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}
		enqueued++
	}

	metrics.EventsPublished.WithLabelValues(eventType).Inc()
	p.log.Debug("event published",
		zap.String("event_type", eventType),
		zap.Int("deliveries", enqueued),
		zap.Bool("realtime", isRealtime))

	if isRealtime {
		p.broadcast(ctx, env)
	}
	return nil
}

// broadcast is best effort: failures are logged and counted, never surfaced.
func (p *Publisher) broadcast(ctx context.Context, env model.Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		metrics.BroadcastErrors.Inc()
		p.log.Warn("serializing realtime envelope failed",
			zap.String("event_type", env.EventType), zap.Error(err))
		return
	}
	if err := p.broadcaster.Broadcast(ctx, p.channel, raw); err != nil {
		metrics.BroadcastErrors.Inc()
		p.log.Warn("realtime broadcast failed",
			zap.String("event_type", env.EventType),
			zap.String("channel", p.channel),
			zap.Error(err))
	}
}
