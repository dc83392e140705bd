package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/raid/array"
	"github.com/spacemeshos/raid/config"
)

var (
	// Version is the version of the binary.
	Version string

	// Commit is the commit hash of the binary.
	Commit string

	cfg = config.DefaultConfig()

	configFile string
	logLevel   string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "raidcli",
	Short: "Store a payload on an array of drive files protected by XOR parity",
	Long: `raidcli splits a payload into stripes and spreads every stripe over a number of
member drives, each backed by a file in the datadir. The last member holds the XOR
parity of the others, so the content of any single lost drive can be reconstructed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		var err error
		logger, err = newLogger(logLevel)
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configFile, "config", "c", "", "path to configuration file")
	flags.StringVar(&logLevel, "log-level", zapcore.InfoLevel.String(), "log level (debug, info, warn, error, dpanic, panic, fatal)")

	flags.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "filesystem datadir path")
	flags.IntVar(&cfg.Members, "members", cfg.Members, "number of member drives, the last one holds parity")
	flags.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "number of bytes every member contributes to a stripe")
	flags.IntVar(&cfg.BufferedStripes, "buffered-stripes", cfg.BufferedStripes, "number of stripes queued between computation and disk I/O")
}

// Execute runs the root command. It is called once by main.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig fills cfg from the configuration file, if any. Flags set on the
// command line take precedence over the file.
func loadConfig(cmd *cobra.Command) error {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if configFile != "" {
		vip.SetConfigFile(smutil.GetCanonicalPath(configFile))
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := vip.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return config.Validate(cfg)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(lvl),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	return logger, nil
}

func openArray() (*array.Array, error) {
	return array.New(
		array.WithConfig(cfg),
		array.WithLogger(logger),
	)
}
