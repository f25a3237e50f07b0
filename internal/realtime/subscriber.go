package realtime

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPollTimeout = 5 * time.Second

// conn is the slice of a pub/sub registration the read loop drives.
// *redis.PubSub satisfies it; tests substitute a fake.
type conn interface {
	ReceiveTimeout(ctx context.Context, timeout time.Duration) (interface{}, error)
	Close() error
}

// Subscriber drains one pub/sub channel on behalf of a live connection and
// forwards each message as-is. The read loop polls with a bounded timeout so
// cancellation is observed promptly, and the channel registration is
// released on every exit path.
type Subscriber struct {
	open        func(ctx context.Context) conn
	channel     string
	pollTimeout time.Duration
	log         *zap.Logger
}

func NewSubscriber(client *redis.Client, channel string, log *zap.Logger) *Subscriber {
	return &Subscriber{
		open: func(ctx context.Context) conn {
			return client.Subscribe(ctx, channel)
		},
		channel:     channel,
		pollTimeout: defaultPollTimeout,
		log:         log,
	}
}

// Listen calls fn for every message until ctx is cancelled. Returns nil on
// cancellation, the underlying error otherwise.
func (s *Subscriber) Listen(ctx context.Context, fn func(payload []byte)) error {
	ps := s.open(ctx)
	defer func() {
		if err := ps.Close(); err != nil {
			s.log.Warn("releasing channel subscription failed",
				zap.String("channel", s.channel), zap.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := ps.ReceiveTimeout(ctx, s.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// poll tick: nothing published, re-check cancellation
				continue
			}
			return err
		}

		if m, ok := msg.(*redis.Message); ok {
			fn([]byte(m.Payload))
		}
	}
}
