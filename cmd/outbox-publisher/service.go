package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/metrics"
	"github.com/hijabina/hijabina-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 500 * time.Millisecond
	defaultMaxAttempts  = 10
	publishTimeout      = 15 * time.Second
	maxBackoff          = 10 * time.Second
	maxJitter           = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

// outboxRepository is the row bookkeeping done inside the batch transaction.
type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type publisherFactory func(topic string) publisher

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	Metrics          *metrics.StorefrontMetrics
}

// Service drains outbox_events into Pub/Sub. Each batch runs in one
// transaction whose row locks keep two publishers off the same events.
type Service struct {
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	metrics          *metrics.StorefrontMetrics
	publisherFactory publisherFactory

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration

	mu     sync.Mutex
	topics map[string]*gcppubsub.Publisher
}

func NewService(p ServiceParams) (*Service, error) {
	var missing []string
	for name, ok := range map[string]bool{
		"config":     p.Config != nil,
		"logger":     p.Logger != nil,
		"db":         p.DB != nil,
		"pubsub":     p.PubSub != nil,
		"repository": p.Repository != nil,
		"registry":   p.Registry != nil,
	} {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("outbox publisher missing %v", missing)
	}

	oc := p.Config.Outbox
	s := &Service{
		logg:             p.Logger,
		db:               p.DB,
		repo:             p.Repository,
		pubsub:           p.PubSub,
		registry:         p.Registry,
		metrics:          p.Metrics,
		publisherFactory: p.PublisherFactory,
		batchSize:        positiveOr(oc.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(oc.MaxAttempts, defaultMaxAttempts),
		pollInterval:     defaultPollInterval,
		topics:           map[string]*gcppubsub.Publisher{},
	}
	if oc.PollIntervalMS > 0 {
		s.pollInterval = time.Duration(oc.PollIntervalMS) * time.Millisecond
	}
	if s.publisherFactory == nil {
		s.publisherFactory = s.topicPublisher
	}
	return s, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Run polls until ctx ends. A full batch is followed immediately by the
// next one; an empty batch waits one poll interval; a failed batch backs
// off exponentially.
func (s *Service) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{"database": s.db.Ping, "pubsub": s.pubsub.Ping} {
		if err := ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}

	wait := s.pollInterval
	for ctx.Err() == nil {
		started := time.Now()
		processed, err := s.processBatch(ctx)
		if processed {
			s.metrics.ObserveOutboxBatch(time.Since(started))
		}
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch_failed", err)
			wait = nextBackoff(wait, s.pollInterval, maxBackoff)
		case processed:
			wait = s.pollInterval
			continue
		default:
			wait = s.pollInterval
		}
		if err := sleep(ctx, jitter(wait)); err != nil {
			break
		}
	}
	s.logg.Info(ctx, "outbox.stopped")
	return ctx.Err()
}

// Close flushes every cached topic publisher.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.topics {
		p.Stop()
		delete(s.topics, name)
	}
}

// topicPublisher keeps one client side publisher per topic so its
// batching survives between outbox batches.
func (s *Service) topicPublisher(topic string) publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.topics[topic]
	if !ok {
		if p = s.pubsub.Publisher(topic); p == nil {
			return nil
		}
		s.topics[topic] = p
	}
	return gcpPublisher{p}
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(maxJitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// gcpPublisher narrows *pubsub.Publisher to the publisher interface.
type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}

var errNoResult = errors.New("publisher returned no result")
