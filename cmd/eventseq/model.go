package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaki95/eventseq/internal/generate"
	"github.com/jaki95/eventseq/internal/model"
	"github.com/jaki95/eventseq/internal/preprocess"
	"github.com/jaki95/eventseq/internal/reconstruct"
	"github.com/jaki95/eventseq/internal/server"
)

var (
	maxSamples int
	inputPath  string
	outputPath string
	midiPath   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Prompt the model with test songs and write the predictions",
	Long: `Feed the start of every test song to the configured generator
command and write each continuation as generated_sample_<i>.csv and .mid.

The command reads the prompt indices as one comma separated line on stdin
and prints the predicted indices on stdout. EVENTSEQ_DEVICE and
EVENTSEQ_SEED are set in its environment.`,
	RunE: runGenerate,
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Turn predicted indices back into tokens and MIDI",
	Long: `Read comma or whitespace separated indices and write the decoded
event stream.

Example:
  eventseq decode -i predictions.txt -o song.csv --midi song.mid`,
	RunE: runDecode,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	generateCmd.Flags().IntVarP(&maxSamples, "max", "n", 0, "Samples to write (overrides generate.max_samples)")
	decodeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Indices file (default: stdin)")
	decodeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Token output file (default: stdout)")
	decodeCmd.Flags().StringVar(&midiPath, "midi", "", "Also write a MIDI file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := loadVocab(store, cfg)
	if err != nil {
		return err
	}
	gen, err := model.NewCommandGenerator(cfg.Generate.Command)
	if err != nil {
		return fmt.Errorf("generate.command: %w", err)
	}
	pipeOpts, err := preprocess.PipelineOptions(cfg)
	if err != nil {
		return err
	}

	opts := generate.Options{
		Store:        store,
		Vocab:        v,
		Generator:    gen,
		Exec:         model.ExecContext{Device: cfg.Generate.Device, Seed: cfg.Seed},
		Pipeline:     pipeOpts,
		MaxSamples:   cfg.Generate.MaxSamples,
		PromptLength: cfg.Generate.PromptLength,
		OutputDir:    cfg.Generate.OutputDir,
		MIDI:         reconstruct.MIDIOptions{StepsPerQuarter: cfg.Preprocess.StepsPerQuarter},
	}
	if maxSamples > 0 {
		opts.MaxSamples = maxSamples
	}

	report, err := generate.Run(ctx, opts)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := loadVocab(store, cfg)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	indices, err := model.ParseIndices(string(data))
	if err != nil {
		return err
	}

	res, err := reconstruct.Reconstruct(indices, v)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := res.WriteText(out); err != nil {
		return err
	}

	if midiPath == "" {
		return nil
	}
	f, err := os.Create(midiPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return res.WriteMIDI(f, reconstruct.MIDIOptions{StepsPerQuarter: cfg.Preprocess.StepsPerQuarter})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := loadVocab(store, cfg)
	if err != nil {
		slog.Warn("Serving without vocabulary", "error", err)
		v = nil
	}

	srv := server.New(cfg, store, v)
	slog.Info("Starting eventseq API server", "port", cfg.Server.Port)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
