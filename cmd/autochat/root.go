package main

import (
	"github.com/spf13/cobra"

	"github.com/gliderlab/autochat/pkg/config"
)

type rootOptions struct {
	configPath string
	envFile    string
	channelID  string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "autochat",
		Short:        "Discord auto-reply and broadcast bot",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Config file path (YAML).")
	pf.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "File with DISCORD_TOKEN / GOOGLE_API_KEY.")
	pf.StringVar(&opts.channelID, "channel", "", "Discord channel ID (overrides channel_id).")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error.")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json.")

	cmd.AddCommand(newReplyCmd(opts))
	cmd.AddCommand(newBroadcastCmd(opts))
	return cmd
}

func newReplyCmd(root *rootOptions) *cobra.Command {
	var (
		useAI      bool
		readDelay  config.Duration
		replyDelay config.Duration
	)
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Reply to the newest message in the channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return run(cmd.Context(), root, config.ModeReply, func(c *config.BotConfig) {
				if flags.Changed("use-ai") {
					c.UseAI = useAI
				}
				if flags.Changed("read-delay") {
					c.ReadDelay = readDelay
				}
				if flags.Changed("reply-delay") {
					c.ReplyDelay = replyDelay
				}
			})
		},
	}
	cmd.Flags().BoolVar(&useAI, "use-ai", true, "Generate replies with the AI provider instead of the message file.")
	cmd.Flags().Var(&readDelay, "read-delay", "Wait between polls (seconds or duration).")
	cmd.Flags().Var(&replyDelay, "reply-delay", "Wait before posting a reply (seconds or duration).")
	return cmd
}

func newBroadcastCmd(root *rootOptions) *cobra.Command {
	var interval config.Duration
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Post a random line from the message file on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return run(cmd.Context(), root, config.ModeBroadcast, func(c *config.BotConfig) {
				if flags.Changed("interval") {
					c.SendInterval = interval
				}
			})
		},
	}
	cmd.Flags().Var(&interval, "interval", "Wait between broadcasts (seconds or duration).")
	return cmd
}
