package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/k0kubun/go-ansi"
	"github.com/spf13/cobra"

	"github.com/jaki95/eventseq/internal/dataset"
	"github.com/jaki95/eventseq/internal/downloader"
	"github.com/jaki95/eventseq/internal/preprocess"
	"github.com/jaki95/eventseq/internal/progress"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/vocab"
)

var (
	indexURL   string
	pack       string
	workers    int
	fromCorpus bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download raw corpus files into raw_data/",
	Long: `Crawl an index page and download every linked file with one of the
configured extensions. Files already present are skipped.

Example:
  eventseq download --url https://example.com/midi/`,
	RunE: runDownload,
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Stream raw_data/ into clean_data/",
	Long: `Convert raw songs to event token files, or slice meeting recordings
into utterances for audio corpora. Interrupted runs resume where they
stopped.

Example:
  eventseq preprocess --pack standard --workers 8`,
	RunE: runPreprocess,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Write train/val/test manifests over clean_data/",
	RunE:  runSplit,
}

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Build the vocabulary and save its snapshot",
	Long: `Enumerate the vocabulary from the configured instruments, pitch
range and wait limit, or collect the tokens observed in the train split
with --from-corpus.`,
	RunE: runVocab,
}

func init() {
	downloadCmd.Flags().StringVarP(&indexURL, "url", "u", "", "Index page to crawl (overrides download.index_url)")
	preprocessCmd.Flags().StringVarP(&pack, "pack", "p", "", "Pipeline pack (overrides pipeline.pack)")
	preprocessCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed concurrently (overrides preprocess.workers)")
	vocabCmd.Flags().BoolVar(&fromCorpus, "from-corpus", false, "Collect tokens observed in the train split")
}

func runDownload(cmd *cobra.Command, args []string) error {
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

	url := cfg.Download.IndexURL
	if indexURL != "" {
		url = indexURL
	}
	if url == "" {
		return fmt.Errorf("no index url: set download.index_url or pass --url")
	}

	crawler := downloader.NewCrawler(downloader.CrawlerOptions{
		Extensions: cfg.Download.Extensions,
		MaxDepth:   cfg.Download.MaxDepth,
		UserAgent:  cfg.Download.UserAgent,
	})
	d := downloader.NewHTTPDownloader(store, cfg.Download.UserAgent)

	res, err := downloader.Fetch(ctx, crawler, d, url, nil)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
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

	streamer, err := preprocess.FromConfig(cfg, store, pack, preprocess.StreamOptions{
		Workers: workers,
		Output:  ansi.NewAnsiStdout(),
	})
	if err != nil {
		return err
	}

	summary, err := streamer.Stream(ctx)
	if summary != nil {
		fmt.Println()
		if perr := printJSON(summary); perr != nil {
			return perr
		}
	}
	return err
}

func runSplit(cmd *cobra.Command, args []string) error {
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

	tracker := progress.NewProgressTracker()
	tracker.AddListener(func(e progress.Event) {
		slog.Debug("split progress", "stage", e.Stage, "progress", e.Progress, "message", e.Message)
	})

	res, err := preprocess.Split(store, cfg.Split, tracker)
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"train": len(res.Train), "val": len(res.Val), "test": len(res.Test)})
}

func runVocab(cmd *cobra.Command, args []string) error {
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

	var v *vocab.Vocabulary
	if fromCorpus {
		ds, err := dataset.Open(store, storage.TrainManifest, nil)
		if err != nil {
			return err
		}
		songs, err := ds.Tokens()
		if err != nil {
			return err
		}
		v, err = vocab.BuildFromSongs(songs, cfg.Vocab.Exclude...)
		if err != nil {
			return err
		}
	} else {
		v, err = vocab.Build(vocab.Corpus{
			Instruments: cfg.Vocab.Instruments,
			MinPitch:    uint8(cfg.Vocab.MinPitch),
			MaxPitch:    uint8(cfg.Vocab.MaxPitch),
			MaxWait:     cfg.Vocab.MaxWait,
		}, cfg.Vocab.Exclude...)
		if err != nil {
			return err
		}
	}

	w, err := store.GetWriter(cfg.Vocab.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Vocab.Snapshot, err)
	}
	if err := v.Save(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return printJSON(map[string]any{"snapshot": cfg.Vocab.Snapshot, "size": v.Len(), "checksum": v.Checksum()})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
