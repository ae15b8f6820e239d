// Package kafkaconsumer applies place invalidation events to the cache.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/cafescout/cafescout/internal/cache"
	"github.com/cafescout/cafescout/internal/health"
	"github.com/cafescout/cafescout/internal/invalidation"
	"github.com/cafescout/cafescout/internal/logger"
	"github.com/cafescout/cafescout/internal/observability"
)

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	cache  cache.Interface
	dedupe *versionDedupe
	ready  *health.State
}

func New(cfg Config, logger *slog.Logger, c cache.Interface, ready *health.State) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		dedupe: newVersionDedupe(cfg.DedupeSize),
		ready:  ready,
	}
}

// Start consumes invalidation events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil {
		return errors.New("kafkaconsumer: missing cache")
	}
	ctx = logger.WithComponent(ctx, "kafka_consumer")

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne, onReady: func() {
		if c.ready != nil {
			c.ready.Set(true)
		}
	}}

	c.logger.InfoContext(ctx, "invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "invalidation consumer shutting down")
			return nil
		default:
			if c.ready != nil {
				c.ready.Set(false)
			}
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.ErrorContext(ctx, "consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne applies a single invalidation message. Search keys cannot be
// enumerated from a place coordinate (they embed radius and query), so any
// applied event clears the whole store; entries are few and short-lived,
// refill is cheap.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.ObserveInvalidation("decode", err)
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		observability.ObserveInvalidation(ev.Op, err)
		return fmt.Errorf("invalid event: %w", err)
	}

	if ev.Op != "clear" && !c.dedupe.shouldApply(ev.PlaceID, ev.Version) {
		c.logger.DebugContext(ctx, "stale invalidation skipped",
			"place_id", ev.PlaceID, "version", ev.Version)
		return nil
	}

	c.cache.Clear()
	observability.ObserveInvalidation(ev.Op, nil)
	c.logger.InfoContext(ctx, "cache invalidated",
		"op", ev.Op, "place_id", ev.PlaceID, "version", ev.Version)
	return nil
}
