package main

import (
	"github.com/spf13/cobra"

	"adledger/pkg/config"
	"adledger/pkg/ledger"
	"adledger/pkg/logger"
	"adledger/pkg/report"
)

var (
	// Report command flags
	reportLedgerPath string
	xlsxPath         string
	sheetName        string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the ledger as an XLSX workbook",
	Long: `Export the full banner ledger to an XLSX workbook with a clickable
example_link column.

Links prefer the configured public base URL; records without one fall back
to file:// links into the local capture tree.`,
	Example: `  adledger report
  adledger report --ledger out/banner_master.csv --xlsx out/banners.xlsx`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportLedgerPath, "ledger", "l", "", "ledger CSV path")
	reportCmd.Flags().StringVarP(&xlsxPath, "xlsx", "x", "", "output XLSX path")
	reportCmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name")
}

func runReport(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if reportLedgerPath != "" {
		flags["ledger"] = reportLedgerPath
	}
	if xlsxPath != "" {
		flags["xlsx"] = xlsxPath
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if sheetName != "" {
		cfg.Report.SheetName = sheetName
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	led := ledger.New(cfg.Ledger.CSVPath, ledger.Options{
		MaxHashDistance: cfg.Ledger.MaxHashDistance,
		PublicBaseURL:   cfg.Ledger.PublicBaseURL,
		DenylistExtra:   cfg.Ledger.DenylistExtra,
	})

	if err := report.WriteXLSX(led.Records(), cfg.Report.XLSXPath, cfg.Report.SheetName); err != nil {
		return err
	}

	log.InfoWithFields("report written", map[string]interface{}{
		"records": led.Len(),
		"xlsx":    cfg.Report.XLSXPath,
	})
	return nil
}
