package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaki95/eventseq/config"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/vocab"
)

var version = "0.1.0"

var (
	configPath string
	dataDir    string
	seed       int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eventseq",
	Short: "Event-based music tokenization and sequence pipelines",
	Long: `eventseq turns MIDI and audio corpora into event token sequences
for sequence models and turns predictions back into music.

Pipeline: download → preprocess → split → vocab → generate`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "Path to the YAML configuration")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (overrides data_dir)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed (overrides seed)")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// loadConfig reads the configuration, falling back to defaults when the
// default config file is absent, and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}

func loadVocab(store storage.Storage, cfg *config.Config) (*vocab.Vocabulary, error) {
	r, err := store.GetReader(cfg.Vocab.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary %s (run `eventseq vocab` first): %w", cfg.Vocab.Snapshot, err)
	}
	defer r.Close()
	return vocab.Load(r)
}
