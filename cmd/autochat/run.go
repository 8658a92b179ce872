package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gliderlab/autochat/agent"
	"github.com/gliderlab/autochat/gateway/channels/discord"
	"github.com/gliderlab/autochat/pkg/config"
	"github.com/gliderlab/autochat/pkg/kv"
	"github.com/gliderlab/autochat/pkg/llm"
	"github.com/gliderlab/autochat/pkg/llm/factory"
	"github.com/gliderlab/autochat/pkg/logging"
	"github.com/gliderlab/autochat/pkg/messages"
	"github.com/gliderlab/autochat/pkg/reply"
)

// run loads configuration, wires the components for mode and blocks until ctx
// ends or the loop fails to start.
func run(ctx context.Context, opts *rootOptions, mode string, override func(*config.BotConfig)) error {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.Mode = mode
	if opts.channelID != "" {
		cfg.ChannelID = opts.channelID
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	secrets := config.ReadSecrets()
	if err := secrets.Require(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := discord.NewChannel(secrets.DiscordToken,
		discord.WithBaseURL(cfg.Discord.BaseURL),
		discord.WithTimeout(cfg.Discord.Timeout.Std()),
		discord.WithFetchLimit(cfg.Discord.FetchLimit),
		discord.WithLogger(logger))

	gen, err := newGenerator(ctx, cfg, secrets, logger)
	if err != nil {
		return err
	}

	logger.Info("[autochat] starting",
		zap.String("mode", cfg.Mode),
		zap.String("channel_id", cfg.ChannelID),
		zap.String("messages_file", cfg.MessagesFile))

	switch cfg.Mode {
	case config.ModeBroadcast:
		loop := agent.NewBroadcastLoop(client, gen, agent.BroadcastConfig{
			ChannelID: cfg.ChannelID,
			Interval:  cfg.SendInterval.Std(),
		}, agent.WithLogger(logger))
		return loop.Run(ctx)
	default:
		store, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		wm, err := agent.NewWatermark(store, cfg.ChannelID)
		if err != nil {
			return err
		}
		loop := agent.NewPollLoop(client, gen, agent.PollConfig{
			ChannelID:  cfg.ChannelID,
			UseAI:      cfg.UseAI,
			ReadDelay:  cfg.ReadDelay.Std(),
			ReplyDelay: cfg.ReplyDelay.Std(),
		}, agent.WithLogger(logger), agent.WithWatermark(wm))
		return loop.Run(ctx)
	}
}

func newGenerator(ctx context.Context, cfg *config.BotConfig, secrets config.Secrets, logger *zap.Logger) (*reply.Generator, error) {
	source := messages.NewSource(cfg.MessagesFile, messages.WithLogger(logger))
	opts := []reply.Option{
		reply.WithMaxLength(cfg.MaxReplyLength),
		reply.WithTimeout(cfg.AI.Timeout.Std()),
		reply.WithLogger(logger),
	}
	if cfg.NeedsAI() {
		provider, err := factory.New(ctx, cfg.LLMConfig(secrets))
		if err != nil {
			return nil, err
		}
		opts = append(opts, reply.WithProvider(provider), reply.WithTokenCounter(llm.NewBPECounter()))
		logger.Info("[autochat] AI replies enabled", zap.String("provider", provider.Name()))
	}
	return reply.New(source, opts...), nil
}

func openStore(cfg *config.BotConfig, logger *zap.Logger) (kv.WatermarkStore, error) {
	if cfg.State.Backend != config.StateBadger {
		return kv.NewMemoryStore(), nil
	}
	opts := kv.DefaultOptions(cfg.StateDir())
	opts.Logger = logger
	store, err := kv.OpenBadgerStore(opts)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return store, nil
}
