package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// EventPublisher relays outbox events to an external system.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     zerolog.Logger
	observer   Observer
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	lastPrune  time.Time
	now        func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Observer is notified of publish outcomes.
type Observer interface {
	EventPublished()
	EventFailed()
}

type nopObserver struct{}

func (nopObserver) EventPublished() {}
func (nopObserver) EventFailed()    {}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Observer   Observer
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Retention  time.Duration // Published events older than this are deleted; zero keeps them
}

const pruneEvery = time.Hour

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// Start runs the polling loop until ctx is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
			ep.prune(ctx)
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	// Events arrive in commit order. Once one event of a wallet fails, the
	// rest of that wallet's events wait for the next poll so consumers keyed
	// by wallet never see them out of order.
	held := make(map[string]struct{})

	for _, event := range events {
		aggregate := event.AggregateType + ":" + event.AggregateID
		if _, ok := held[aggregate]; ok {
			continue
		}

		if err := ep.publisher.Publish(ctx, event); err != nil {
			held[aggregate] = struct{}{}
			ep.observer.EventFailed()
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Str("aggregate_id", event.AggregateID).
				Msg("failed to publish event")
			continue
		}

		ep.observer.EventPublished()

		// An unmarked event is delivered again on the next poll, so later
		// events of the same wallet must not go out before it.
		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			held[aggregate] = struct{}{}
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}
	}

	return nil
}

// prune deletes published events past the retention window, at most once
// per pruneEvery.
func (ep *EventPublisher) prune(ctx context.Context) {
	if ep.retention <= 0 {
		return
	}

	now := ep.now()
	if !ep.lastPrune.IsZero() && now.Sub(ep.lastPrune) < pruneEvery {
		return
	}
	ep.lastPrune = now

	if err := ep.outboxRepo.DeletePublished(ctx, now.Add(-ep.retention)); err != nil {
		ep.logger.Warn().Err(err).Msg("failed to prune published events")
	}
}

// LogPublisher writes events to the log. Used when no brokers are configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
