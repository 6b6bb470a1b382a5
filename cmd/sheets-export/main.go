package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
)

func main() {
	now := time.Now()
	userID := flag.Int64("user", 0, "id of the user whose transactions are exported")
	year := flag.Int("year", now.Year(), "year to export")
	month := flag.Int("month", int(now.Month()), "month to export (1-12)")
	dryRun := flag.Bool("dry-run", false, "build the rows in memory instead of writing to Google Sheets")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSheets)
	cfg := cli.LoadAndValidateConfig(logger)

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "-user is required")
		flag.Usage()
		os.Exit(2)
	}
	y, m := core.ResolveMonth(*year, *month, now)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()
	ctx = applog.IntoContext(ctx, logger)

	var sink sheets.Sink
	if *dryRun {
		sink = mem.New()
		logger.Info("Dry run - rows stay in memory")
	} else {
		if err := cfg.ValidateSheets(); err != nil {
			cli.Fatal(logger, "Google Sheets configuration invalid", err)
		}
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		sink = client
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	report, err := services.NewSheetsExporter(repo, sink, cfg.Location()).ExportMonth(ctx, *userID, y, m)
	if err != nil {
		cli.Fatal(logger, "Export failed", err, applog.FieldUserID, *userID)
	}

	fmt.Printf("exported %d rows for %04d-%02d to %s\n", report.Rows, y, m, report.Ref)
	fmt.Printf("sheet totals: income %s, expense %s (%d rows)\n",
		core.FormatAmount(report.Totals.Income),
		core.FormatAmount(report.Totals.Expense),
		report.Totals.Rows)
}
