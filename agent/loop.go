// Package agent runs the bot's two operating modes: replying to the newest
// message in a channel, and broadcasting canned messages on an interval.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gliderlab/autochat/gateway/channels/types"
	"github.com/gliderlab/autochat/pkg/logging"
	"github.com/gliderlab/autochat/pkg/reply"
)

// ChannelClient is the subset of the Discord client the loops need.
type ChannelClient interface {
	FetchIdentity(ctx context.Context) (string, error)
	FetchLatestMessages(ctx context.Context, channelID string) ([]types.Message, error)
	PostMessage(ctx context.Context, channelID, text, replyToID string) error
}

// Replier produces reply text.
type Replier interface {
	Generate(ctx context.Context, prompt string, useAI bool) reply.GeneratedReply
	Canned() reply.GeneratedReply
}

type loopOptions struct {
	clock     clockwork.Clock
	logger    *zap.Logger
	watermark *Watermark
}

// Option configures a loop
type Option func(*loopOptions)

// WithClock replaces the wall clock used for delays.
func WithClock(c clockwork.Clock) Option { return func(o *loopOptions) { o.clock = c } }

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option { return func(o *loopOptions) { o.logger = logging.OrNop(l) } }

// WithWatermark supplies a pre-loaded marker, typically backed by a store.
func WithWatermark(w *Watermark) Option { return func(o *loopOptions) { o.watermark = w } }

func buildOptions(opts []Option) loopOptions {
	o := loopOptions{clock: clockwork.NewRealClock(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// sleep waits d on clock. It returns ctx.Err() if ctx ends first.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}

// stopped reports whether err is a normal shutdown.
func stopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
