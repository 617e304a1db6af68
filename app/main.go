package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crobledo/vulnwatch/app/alert"
	"github.com/crobledo/vulnwatch/app/catalog"
	"github.com/crobledo/vulnwatch/app/cfg"
	"github.com/crobledo/vulnwatch/app/database"
	"github.com/crobledo/vulnwatch/app/detect"
	"github.com/crobledo/vulnwatch/app/pipeline"
	"github.com/crobledo/vulnwatch/app/source"
	"github.com/crobledo/vulnwatch/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting vulnwatch run", "version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open alert database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database ready", "schema_version", version, "dirty", dirty)

	products, err := catalog.Load(appCfg.ProductsPath)
	if err != nil {
		slog.Error("Failed to load product catalog", "path", appCfg.ProductsPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded product catalog", "products", len(products))

	sources, err := source.LoadSources(appCfg.SourcesPath)
	if err != nil {
		slog.Error("Failed to load source list", "path", appCfg.SourcesPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded source list", "sources", len(sources))

	minSeverity, err := detect.ParseSeverity(appCfg.MinSeverity)
	if err != nil {
		slog.Error("Invalid minimum severity", "value", appCfg.MinSeverity, "error", err)
		os.Exit(1)
	}

	matcher := detect.NewMatcher(appCfg.FuzzyThreshold, appCfg.MinFuzzyLen)
	policy := detect.Policy{MinSeverity: minSeverity, RequireCVE: appCfg.RequireCVE}
	dedup := alert.NewDeduplicator(database.NewAlertRepository(db))

	var sinks []alert.Sink
	if appCfg.Send {
		emailSink, err := alert.NewEmailSink(appCfg.SMTP)
		if err != nil {
			slog.Error("Failed to set up email delivery", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, emailSink)
	} else {
		sinks = append(sinks, &alert.ConsoleSink{Out: os.Stdout})
	}

	var audit *alert.AuditLog
	if appCfg.LogFile != "" {
		audit = alert.NewAuditLog(appCfg.LogFile)
	}

	timeout := time.Duration(appCfg.Timeout) * time.Second
	fetcher := source.NewFetcher(&http.Client{Timeout: timeout}, appCfg.UserAgent, timeout, appCfg.ExtractContent)
	pipe := pipeline.New(products, matcher, policy, dedup, sinks, audit)

	scanTasks := make([]tasks.TaskInterface, 0, len(sources))
	for _, src := range sources {
		scanTasks = append(scanTasks, tasks.NewScanSourceTask(src, fetcher, pipe))
	}

	slog.Info("Scanning sources", "sources", len(scanTasks), "workers", appCfg.WorkerCount)

	runner := tasks.NewRunner(appCfg.WorkerCount)
	failed := runner.Run(ctx, scanTasks)

	var total pipeline.Stats
	for _, task := range scanTasks {
		if scan, ok := task.(*tasks.ScanSourceTask); ok {
			total.Merge(scan.Stats())
		}
	}

	slog.Info("Run complete",
		"sources", len(sources),
		"failed_sources", failed,
		"units", total.Units,
		"novel", total.Novel,
		"duplicates", total.Duplicate,
		"rejected", total.Rejected)

	if failed > 0 && failed == len(scanTasks) {
		os.Exit(1)
	}
}
