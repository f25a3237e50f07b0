package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/storage"
	"github.com/tradeyard/eventgate/internal/util"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("subscription not found")
	ErrInvalid  = errors.New("invalid subscription")
)

// eventTypePattern: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

const secretBytes = 32

// Service manages webhook subscriptions through the storage port. The
// publisher reads subscriptions on every event via ListActive.
type Service struct {
	store storage.Backend
	log   *zap.Logger
}

func NewService(store storage.Backend, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// ValidateEventType checks the hierarchical event type format, e.g.
// "listing.created" or "trade.price_changed".
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}
	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be full-stop delimited [a-zA-Z0-9_.]: %s", eventType)
	}
	return nil
}

func validateTargetURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parsing target url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("target url must be absolute http(s): %s", target)
	}
	return nil
}

func validate(sub model.Subscription) error {
	if err := ValidateEventType(sub.EventType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validateTargetURL(sub.TargetURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// newSecret returns a fresh hex signing secret.
func newSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create stores a new subscription with a server-generated id and signing
// secret. The returned record carries the secret; this is the only place it
// is ever handed back.
func (s *Service) Create(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub.ID = util.New()
	sub.Secret = secret
	sub.CreatedAt = now
	sub.UpdatedAt = now

	created, err := s.store.Create(ctx, &sub)
	if err != nil {
		return nil, fmt.Errorf("storing subscription: %w", err)
	}
	s.log.Info("subscription created",
		zap.String("id", sub.ID),
		zap.String("event_type", sub.EventType),
		zap.String("target_url", sub.TargetURL))

	return created.(*model.Subscription), nil
}

// Get returns ErrNotFound when no subscription exists for id.
func (s *Service) Get(ctx context.Context, id string) (*model.Subscription, error) {
	rec, err := s.store.Read(ctx, model.KindSubscription, id)
	if err != nil {
		return nil, fmt.Errorf("reading subscription: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec.(*model.Subscription), nil
}

func (s *Service) List(ctx context.Context) ([]*model.Subscription, error) {
	recs, err := s.store.List(ctx, model.KindSubscription)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	out := make([]*model.Subscription, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.(*model.Subscription))
	}
	return out, nil
}

// ListActive returns the active subscriptions registered for eventType.
// Inactive subscriptions are excluded from fan-out here, not by callers.
func (s *Service) ListActive(ctx context.Context, eventType string) ([]*model.Subscription, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := subs[:0]
	for _, sub := range subs {
		if sub.IsActive && sub.EventType == eventType {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// Update replaces the mutable fields of an existing subscription. The secret
// and creation time survive updates.
func (s *Service) Update(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Secret = existing.Secret
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now().UTC()

	updated, err := s.store.Update(ctx, &sub)
	if err != nil {
		return nil, fmt.Errorf("updating subscription: %w", err)
	}
	return updated.(*model.Subscription), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, model.KindSubscription, id); err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return nil
}
