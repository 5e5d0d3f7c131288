package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"adledger/internal/ingest"
	"adledger/internal/runlog"
	"adledger/pkg/archive"
	"adledger/pkg/config"
	"adledger/pkg/ledger"
	"adledger/pkg/logger"
	"adledger/pkg/retry"
)

var (
	// Observe command flags
	ledgerPath    string
	outputRoot    string
	hashThreshold int
	workers       int
	publicBaseURL string
	saveRetries   int
)

// observeCmd represents the observe command
var observeCmd = &cobra.Command{
	Use:   "observe <manifest.jsonl>",
	Short: "Fold a run's captured banners into the ledger",
	Long: `Read a JSON-lines capture manifest, classify every image as an exact
duplicate, a near duplicate, or a new unique banner, and merge its context
into the persistent ledger.

Each manifest line holds the capture file and its context, for example:

  {"image":"news/2024-01-05/banner3.png","site":"news.mn",
   "date":"2024-01-05","click_url":"https://shop.example/landing",
   "page_url":"https://news.mn/"}

Unreadable or undecodable captures are skipped and counted; the ledger is
rewritten once at the end of the run.`,
	Example: `  # Fold today's captures into the default ledger
  adledger observe captures.jsonl

  # Looser near-duplicate matching, custom ledger location
  adledger observe captures.jsonl --ledger out/banner_master.csv --threshold 10`,
	Args: cobra.ExactArgs(1),
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)

	observeCmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "ledger CSV path")
	observeCmd.Flags().StringVarP(&outputRoot, "output-root", "o", "", "capture tree root")
	observeCmd.Flags().IntVarP(&hashThreshold, "threshold", "t", -1, "max perceptual-hash distance for a near match")
	observeCmd.Flags().IntVar(&workers, "workers", 0, "concurrent capture readers")
	observeCmd.Flags().StringVar(&publicBaseURL, "public-base-url", "", "base URL for clickable example links")
	observeCmd.Flags().IntVar(&saveRetries, "save-retries", 3, "attempts for the final ledger save")
}

func runObserve(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	flags := make(map[string]interface{})
	if ledgerPath != "" {
		flags["ledger"] = ledgerPath
	}
	if outputRoot != "" {
		flags["output-root"] = outputRoot
	}
	if hashThreshold >= 0 {
		flags["threshold"] = hashThreshold
	}
	if workers > 0 {
		flags["workers"] = workers
	}
	if publicBaseURL != "" {
		flags["public-base-url"] = publicBaseURL
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("adledger starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	arch, err := archive.NewManager(cfg.Ingest.OutputRoot)
	if err != nil {
		return err
	}

	led := ledger.New(cfg.Ledger.CSVPath, ledger.Options{
		MaxHashDistance: cfg.Ledger.MaxHashDistance,
		PublicBaseURL:   cfg.Ledger.PublicBaseURL,
		DenylistExtra:   cfg.Ledger.DenylistExtra,
	})

	runner := ingest.New(led, arch, cfg.Ingest.Workers)
	summary, err := runner.Run(ctx, manifestPath)
	if err != nil {
		return err
	}
	summary.LedgerPath = cfg.Ledger.CSVPath

	// A crashed run before this point leaves the on-disk store untouched.
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = saveRetries
	retryCfg.Context = ctx
	if err := retry.Do(led.Save, retryCfg); err != nil {
		log.WithError(err).Error("ledger save failed")
		return err
	}

	runs, err := runlog.NewManager(cfg.Ingest.OutputRoot)
	if err != nil {
		log.WithError(err).Warn("run log unavailable")
	} else if err := runs.Save(summary); err != nil {
		log.WithError(err).Warn("run summary not recorded")
	}

	log.InfoWithFields("run complete", map[string]interface{}{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"new":       summary.New,
		"exact":     summary.Exact,
		"near":      summary.Near,
		"unique":    summary.UniqueBanners,
		"ledger":    cfg.Ledger.CSVPath,
	})
	return nil
}
