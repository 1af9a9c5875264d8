package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"review-harvester/browser"
	"review-harvester/config"
	"review-harvester/models"
	"review-harvester/scraper"
	"review-harvester/services"
	"review-harvester/storage"
	"review-harvester/utils"
)

// main only picks the exit code; run holds the deferred cleanups so they
// complete before the process exits.
func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	product := flag.String("product", "", "Product slug on the review site (e.g. 'slack')")
	startStr := flag.String("start", "", "Window start date, YYYY-MM-DD (inclusive)")
	endStr := flag.String("end", "", "Window end date, YYYY-MM-DD (inclusive)")
	source := flag.String("source", "g2", "Review source: g2, trustradius or capterra")
	maxPages := flag.Int("max-pages", 10, "Maximum listing pages to fetch")
	debugHTML := flag.Bool("debug-html", false, "Dump raw page markup per fetched page")
	headless := flag.Bool("headless", true, "Run the browser headless (disable when bot checks trigger)")
	slowMo := flag.Int("slow-mo", 0, "Extra per-action delay in milliseconds")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Directory for harvested output")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	logger := utils.NewLogger(*verbose)

	if *product == "" || *startStr == "" || *endStr == "" {
		logger.Error("-product, -start and -end are required")
		flag.Usage()
		return 2
	}

	window, err := parseWindow(*startStr, *endStr)
	if err != nil {
		logger.Error("Invalid date window (local configuration problem): %v", err)
		return 2
	}

	adapter, err := scraper.ForSource(*source)
	if err != nil {
		logger.Error("%v", err)
		return 2
	}

	// Local preconditions are checked before any network activity.
	if err := storage.EnsureDir(*outputDir); err != nil {
		logger.Error("Output location problem (local configuration): %v", err)
		return 1
	}

	logger.Info("=== Review harvest starting ===")
	logger.Info("Product: %s | source: %s | window: %s .. %s | max pages: %d",
		*product, adapter.Source, window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"), *maxPages)

	metrics := scraper.NewMetrics()
	if *metricsAddr != "" {
		go func() {
			server := &http.Server{
				Addr:    *metricsAddr,
				Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
			}
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("Metrics listener failed: %v", err)
			}
		}()
		logger.Info("Serving metrics on %s", *metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pacer := utils.NewRandomPacer(time.Duration(*slowMo) * time.Millisecond)

	var fetcher scraper.PageFetcher
	if !adapter.Stub {
		session, err := browser.NewSession(browser.Options{
			Headless:    *headless,
			ChromeBin:   cfg.ChromeBin,
			NavTimeout:  time.Duration(cfg.NavTimeoutMs) * time.Millisecond,
			ScrollDelta: cfg.ScrollDeltaPx,
			Pacer:       pacer,
			Logger:      logger,
			NavRetries:  metrics.NavRetries,
		})
		if err != nil {
			logger.Error("Failed to launch browser session (local configuration problem): %v", err)
			return 1
		}
		defer session.Close()
		fetcher = session
	}

	debugDir := ""
	if *debugHTML {
		debugDir = *outputDir
	}

	harvester := scraper.NewHarvester(adapter, fetcher, *product, window, scraper.Options{
		MaxPages:     *maxPages,
		ContainerCap: cfg.ContainerCap,
		DebugDir:     debugDir,
		Pacer:        pacer,
		Metrics:      metrics,
	}, logger)

	result, err := harvester.Run(ctx)
	if err != nil {
		logger.Error("Harvest failed: %v", err)
		logger.Error("Repeated navigation failures usually mean the site is blocking this environment — try -headless=false or a different network.")
		return 1
	}

	outPath := storage.OutputPath(*outputDir, *product, adapter.Source)
	jsonWriter := storage.NewJSONWriter(outPath)
	if err := jsonWriter.Write(result.Reviews); err != nil {
		logger.Error("Failed to write output (local configuration problem): %v", err)
		return 1
	}

	// The summary prefers the stored corpus when PostgreSQL is on, so repeated
	// harvests of the same product report the accumulated picture.
	summaryInput := result.Reviews
	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		if err != nil {
			logger.Error("PostgreSQL unavailable, JSON output kept: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(result.Reviews); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Reviews stored in PostgreSQL (table: reviews)")
				if stored, err := pgWriter.FetchAll(); err != nil {
					logger.Warn("Could not read stored reviews back for the summary: %v", err)
				} else {
					summaryInput = stored
				}
			}
		}
	}

	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(summarySvc.Generate(summaryInput))

	logger.Info("Saved %d reviews to %s (stop reason: %s, pages fetched: %d)",
		len(result.Reviews), outPath, result.StopReason, result.PagesFetched)
	return 0
}

func parseWindow(startStr, endStr string) (models.DateWindow, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return models.DateWindow{}, fmt.Errorf("start date %q: %w", startStr, err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return models.DateWindow{}, fmt.Errorf("end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return models.DateWindow{}, fmt.Errorf("end date %s precedes start date %s", endStr, startStr)
	}
	return models.DateWindow{Start: models.DateOf(start), End: models.DateOf(end)}, nil
}
