package cmd

import (
	"os"
	"strings"

	"github.com/Iron-Ham/posthub/internal/config"
	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/Iron-Ham/posthub/internal/logging"
	"github.com/Iron-Ham/posthub/internal/mailbox"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "posthub",
		Short: "Filesystem maildrop for local users",
		Long: `posthub delivers short text messages into per-user mailboxes on a
shared filesystem and prints them back to their owner.

Each user's mailbox is <root>/<user>/Maildir with tmp, new and cur
subdirectories. Messages are staged in tmp, published to new, and moved
to cur once they have been read.`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return NewExitError(ExitUsage, "a command is required")
		},
	}
	rootCmd.SetFlagErrorFunc(flagError)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/posthub/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "mailbox root directory (default is ./POSTHUB, env POSTHUB_ROOT)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug records to stderr")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))

	rootCmd.AddCommand(
		newSendCmd(),
		newRecvCmd(),
		newStatusCmd(),
		newInitCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute runs the root command. The returned error, if any, carries the
// exit code; see GetExitCode.
func Execute() error {
	return classify(newRootCmd().Execute())
}

func initConfig(cmd *cobra.Command, args []string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("POSTHUB")
	// e.g., POSTHUB_DELIVERY_MAX_ID_ATTEMPTS for delivery.max_id_attempts
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		path := cfgFile
		if path == "" {
			path = viper.ConfigFileUsed()
		}
		return WrapExitError(ExitUsage, "cannot read config file",
			errors.NewConfigurationError("read config", err).WithPath(path))
	}
	return nil
}

// app bundles what a command needs to touch mailboxes.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	store  *mailbox.Store
}

// newApp loads the configuration and builds the mailbox store for cmd.
// The caller must Close the app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	logger = logger.WithOperation(cmd.Name())

	mode, err := cfg.Delivery.Mode()
	if err != nil {
		_ = logger.Close()
		return nil, errors.NewValidationError("invalid delivery.file_mode").
			WithField("delivery.file_mode").WithValue(cfg.Delivery.FileMode).WithCause(err)
	}

	bus := event.NewBus()
	logEvents(bus, logger)

	store := mailbox.NewStore(cfg.Root,
		mailbox.WithGenerator(mailbox.NewGenerator(mailbox.WithMaxAttempts(cfg.Delivery.MaxIDAttempts))),
		mailbox.WithLogger(logger),
		mailbox.WithBus(bus),
		mailbox.WithFileMode(os.FileMode(mode)),
	)

	logger.Debug("configuration loaded", "root", cfg.Root, "config_file", viper.ConfigFileUsed())
	return &app{cfg: cfg, logger: logger, bus: bus, store: store}, nil
}

// Close flushes and closes the log destination.
func (a *app) Close() error {
	return a.logger.Close()
}

// newLogger returns the configured logger. --verbose forces debug records to
// the command's stderr; otherwise logging stays off unless enabled in the
// configuration.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return logging.NewWriterLogger(cmd.ErrOrStderr(), logging.LevelDebug), nil
	}
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}

	logger, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, errors.NewConfigurationError("open log file", err).WithPath(cfg.Logging.File)
	}
	return logger, nil
}

// logEvents records every mailbox and broadcast event.
func logEvents(bus *event.Bus, logger *logging.Logger) {
	bus.SubscribeAll(func(e event.Event) {
		switch ev := e.(type) {
		case event.MessageDeliveredEvent:
			logger.Debug("event", "type", ev.EventType(), "user", ev.User, "message", ev.MessageID, "size", ev.Size)
		case event.MessageConsumedEvent:
			logger.Debug("event", "type", ev.EventType(), "user", ev.User, "message", ev.MessageID, "bytes", ev.Bytes)
		case event.MessageDeferredEvent:
			logger.Warn("event", "type", ev.EventType(), "user", ev.User, "message", ev.MessageID, "error", ev.Err.Error())
		case event.DeliveryFailedEvent:
			logger.Warn("event", "type", ev.EventType(), "user", ev.User, "stage", ev.Stage, "error", ev.Err.Error())
		case event.BroadcastCompletedEvent:
			logger.Info("event", "type", ev.EventType(), "attempted", ev.Attempted, "delivered", ev.Delivered, "failed", ev.Failed)
		default:
			logger.Debug("event", "type", e.EventType())
		}
	})
}
