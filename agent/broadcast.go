package agent

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// BroadcastConfig holds the broadcast-mode settings
type BroadcastConfig struct {
	ChannelID string
	Interval  time.Duration
}

// BroadcastLoop posts a random canned message on a fixed interval.
type BroadcastLoop struct {
	client  ChannelClient
	replier Replier
	config  BroadcastConfig
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewBroadcastLoop creates a broadcast loop
func NewBroadcastLoop(client ChannelClient, replier Replier, config BroadcastConfig, opts ...Option) *BroadcastLoop {
	o := buildOptions(opts)
	return &BroadcastLoop{
		client:  client,
		replier: replier,
		config:  config,
		clock:   o.clock,
		logger:  o.logger.With(zap.String("component", "broadcast"), zap.String("channel_id", config.ChannelID)),
	}
}

// Run broadcasts until ctx ends.
func (b *BroadcastLoop) Run(ctx context.Context) error {
	b.logger.Info("broadcast loop started", zap.Duration("interval", b.config.Interval))
	for {
		if err := b.Tick(ctx); err != nil && stopped(err) {
			break
		}
		if err := sleep(ctx, b.clock, b.config.Interval); err != nil {
			break
		}
	}
	b.logger.Info("broadcast loop stopped")
	return nil
}

// Tick posts one message. Send failures are logged and not returned; only
// cancellation is.
func (b *BroadcastLoop) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := b.replier.Canned()
	if err := b.client.PostMessage(ctx, b.config.ChannelID, out.Text, ""); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("failed to send broadcast", zap.Error(err))
		return nil
	}
	b.logger.Info("broadcast sent", zap.Int("length", len(out.Text)))
	return nil
}
