package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// PollConfig holds the reply-mode settings
type PollConfig struct {
	ChannelID  string
	UseAI      bool
	ReadDelay  time.Duration // wait between polls
	ReplyDelay time.Duration // wait between generating and posting
}

// Outcome describes what one poll did.
type Outcome string

const (
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeEmpty         Outcome = "empty"
	OutcomeAlreadySeen   Outcome = "already_seen"
	OutcomeOwnMessage    Outcome = "own_message"
	OutcomeSystemMessage Outcome = "system_message"
	OutcomeReplied       Outcome = "replied"
	OutcomePostFailed    Outcome = "post_failed"
	OutcomeCancelled     Outcome = "cancelled"
)

// ErrNotIdentified is returned by Tick before Identify has succeeded.
var ErrNotIdentified = errors.New("poll loop: bot identity unknown")

// PollLoop replies to the newest message in a channel.
type PollLoop struct {
	client   ChannelClient
	replier  Replier
	config   PollConfig
	marker   *Watermark
	clock    clockwork.Clock
	logger   *zap.Logger
	identity string
}

// NewPollLoop creates a reply loop. Without WithWatermark the marker starts
// unset and lives in memory.
func NewPollLoop(client ChannelClient, replier Replier, config PollConfig, opts ...Option) *PollLoop {
	o := buildOptions(opts)
	marker := o.watermark
	if marker == nil {
		marker = &Watermark{channelID: config.ChannelID}
	}
	return &PollLoop{
		client:  client,
		replier: replier,
		config:  config,
		marker:  marker,
		clock:   o.clock,
		logger:  o.logger.With(zap.String("component", "poll"), zap.String("channel_id", config.ChannelID)),
	}
}

// Identity returns the bot's account ID, or "" before Identify.
func (p *PollLoop) Identity() string { return p.identity }

// Watermark returns the loop's last-seen marker.
func (p *PollLoop) Watermark() *Watermark { return p.marker }

// Identify looks up the bot's own account once.
func (p *PollLoop) Identify(ctx context.Context) error {
	id, err := p.client.FetchIdentity(ctx)
	if err != nil {
		return err
	}
	p.identity = id
	p.logger.Info("bot identity resolved", zap.String("bot_id", id))
	return nil
}

// Run identifies the bot and then polls until ctx ends. It returns an error
// only if the identity lookup fails; cancellation is a clean stop.
func (p *PollLoop) Run(ctx context.Context) error {
	if err := p.Identify(ctx); err != nil {
		p.logger.Error("could not resolve bot identity", zap.Error(err))
		return fmt.Errorf("identify: %w", err)
	}

	p.logger.Info("reply loop started",
		zap.Bool("use_ai", p.config.UseAI),
		zap.Duration("read_delay", p.config.ReadDelay),
		zap.Duration("reply_delay", p.config.ReplyDelay))

	for {
		if _, err := p.Tick(ctx); err != nil && !stopped(err) {
			return err
		}
		if err := sleep(ctx, p.clock, p.config.ReadDelay); err != nil {
			p.logger.Info("reply loop stopped")
			return nil
		}
	}
}

// Tick performs one poll. Only the newest message is considered; older
// unseen messages in the same batch are not replied to.
func (p *PollLoop) Tick(ctx context.Context) (Outcome, error) {
	if p.identity == "" {
		return "", ErrNotIdentified
	}

	msgs, err := p.client.FetchLatestMessages(ctx, p.config.ChannelID)
	if err != nil {
		if stopped(err) && ctx.Err() != nil {
			return OutcomeCancelled, ctx.Err()
		}
		p.logger.Warn("failed to fetch messages", zap.Error(err))
		return OutcomeFetchFailed, nil
	}
	if len(msgs) == 0 {
		return OutcomeEmpty, nil
	}

	latest := msgs[0]
	log := p.logger.With(zap.String("message_id", latest.ID), zap.String("author_id", latest.Author.ID))

	switch {
	case !p.marker.IsNew(latest.ID):
		return OutcomeAlreadySeen, nil
	case latest.Author.ID == p.identity:
		return OutcomeOwnMessage, nil
	case latest.IsSystem():
		log.Debug("skipping system message", zap.Int("type", int(latest.Type)))
		return OutcomeSystemMessage, nil
	}

	log.Info("new message received", zap.Int("length", len(latest.Content)))

	out := p.replier.Generate(ctx, latest.Content, p.config.UseAI)
	if out.Fallback() {
		log.Info("using fallback reply", zap.String("source", string(out.Source)))
	}

	if err := sleep(ctx, p.clock, p.config.ReplyDelay); err != nil {
		return OutcomeCancelled, err
	}

	outcome := OutcomeReplied
	if err := p.client.PostMessage(ctx, p.config.ChannelID, out.Text, latest.ID); err != nil {
		log.Warn("failed to send reply", zap.Error(err))
		outcome = OutcomePostFailed
	} else {
		log.Info("reply sent", zap.String("source", string(out.Source)), zap.Int("length", len(out.Text)))
	}

	if _, err := p.marker.Advance(latest.ID); err != nil {
		log.Warn("failed to persist watermark", zap.Error(err))
	}
	return outcome, nil
}
