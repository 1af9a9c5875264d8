package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"review-harvester/models"
	"review-harvester/storage"
	"review-harvester/utils"
)

// PageFetcher renders one listing page and returns its full markup. The
// browser session implements it in production; tests supply canned pages.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string, scrollSteps int) (string, error)
}

// Options tunes a single harvest run.
type Options struct {
	MaxPages     int
	ContainerCap int
	// DebugDir, when non-empty, receives a raw markup dump per fetched page.
	DebugDir string
	Pacer    utils.Pacer
	Metrics  *Metrics
}

// Harvester drives one site adapter page by page, aggregating in-window
// reviews until a stop condition fires. State is per-run and discarded after
// aggregation; a Harvester must not be reused.
type Harvester struct {
	adapter *Adapter
	fetcher PageFetcher
	slug    string
	window  models.DateWindow

	maxPages     int
	containerCap int
	debugDir     string
	pacer        utils.Pacer
	metrics      *Metrics
	logger       *utils.Logger
	seen         *utils.SeenSet
}

// NewHarvester wires a ready-to-run Harvester for one product/source/window.
func NewHarvester(adapter *Adapter, fetcher PageFetcher, slug string, window models.DateWindow, opts Options, logger *utils.Logger) *Harvester {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10
	}
	if opts.ContainerCap <= 0 {
		opts.ContainerCap = 60
	}
	if opts.Pacer == nil {
		opts.Pacer = utils.NewRandomPacer(0)
	}

	return &Harvester{
		adapter:      adapter,
		fetcher:      fetcher,
		slug:         slug,
		window:       window,
		maxPages:     opts.MaxPages,
		containerCap: opts.ContainerCap,
		debugDir:     opts.DebugDir,
		pacer:        opts.Pacer,
		metrics:      opts.Metrics,
		logger:       logger,
		seen:         utils.NewSeenSet(),
	}
}

// Run executes the pagination loop. Reviews collected before a stop condition
// fired are always returned; only an unrecoverable navigation failure yields
// an error, and even then the result carries everything harvested so far.
// A fetcher that holds real resources is released when the loop exits,
// whatever the exit path.
func (h *Harvester) Run(ctx context.Context) (*models.HarvestResult, error) {
	src := string(h.adapter.Source)
	result := &models.HarvestResult{
		Source:     h.adapter.Source,
		Reviews:    make([]*models.Review, 0),
		StopReason: models.StopNone,
	}
	defer func() {
		h.metrics.IncStop(string(result.StopReason))
		h.releaseFetcher()
	}()

	if h.adapter.Stub {
		h.logger.Warn("[%s] Adapter is a placeholder and collects nothing yet.", src)
		return result, nil
	}

	stopDueToOld := false

	for page := 1; page <= h.maxPages; page++ {
		pageURL := h.adapter.PageURL(h.slug, page)
		h.logger.Info("[%s] Fetching page %d: %s", src, page, pageURL)

		start := time.Now()
		html, err := h.fetcher.FetchPage(ctx, pageURL, h.adapter.ScrollSteps)
		h.metrics.ObserveFetch(time.Since(start))
		if err != nil {
			return result, fmt.Errorf("fetch page %d: %w", page, err)
		}
		result.PagesFetched++
		h.metrics.IncPage(src)

		if h.debugDir != "" {
			name := fmt.Sprintf("debug_%s_page_%d.html", strings.ToLower(src), page)
			if path, err := storage.DumpHTML(h.debugDir, name, html); err != nil {
				h.logger.Warn("[%s] Failed to save debug markup: %v", src, err)
			} else {
				h.logger.Debug("[%s] Saved markup to %s", src, path)
			}
		}

		// A suspected interstitial is never harvested from, even when it
		// happens to contain review-shaped markup.
		if IsBlocked(html) {
			h.logger.Warn("[%s] Bot-check or interstitial page served on page %d. Try running headful: -headless=false", src, page)
			h.metrics.IncBlocked()
			result.StopReason = models.StopBlocked
			return result, nil
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return result, fmt.Errorf("parse page %d markup: %w", page, err)
		}

		if !h.probeContainers(doc) {
			h.logger.Warn("[%s] No review-like containers found on page %d.", src, page)
			h.logger.Warn("[%s] This usually means the site changed its DOM or suppressed rendering in this environment.", src)
			result.StopReason = models.StopNoContainers
			return result, nil
		}

		containers := doc.Find(h.adapter.containerQuery())
		count := containers.Length()
		if count > h.containerCap {
			count = h.containerCap
		}
		h.logger.Debug("[%s] Page %d — processing %d containers", src, page, count)

		for i := 0; i < count; i++ {
			review, old := h.adapter.extract(containers.Eq(i), h.window)
			if old {
				// Listings are reverse-chronological: one pre-window date
				// means everything after it is older still.
				stopDueToOld = true
				continue
			}
			if review == nil {
				continue
			}
			key := utils.Key(string(review.Source), review.Date.Format("2006-01-02"), review.Body)
			if !h.seen.Add(key) {
				h.logger.Debug("[%s] Skipping duplicate review card on page %d", src, page)
				continue
			}
			result.Reviews = append(result.Reviews, review)
			h.metrics.IncReview(src)
		}

		if stopDueToOld {
			h.logger.Info("[%s] Reached reviews older than the window start. Stopping pagination.", src)
			result.StopReason = models.StopDateBoundary
			return result, nil
		}

		if page == h.maxPages {
			result.StopReason = models.StopMaxPages
			break
		}

		h.pacer.Pause(800*time.Millisecond, 1600*time.Millisecond)
	}

	return result, nil
}

// releaseFetcher shuts the page fetcher down when it owns a real browser.
// Without this, a fatal navigation error would leave the Chrome process
// running after the loop has given up.
func (h *Harvester) releaseFetcher() {
	if c, ok := h.fetcher.(interface{ Close() }); ok {
		c.Close()
	}
}

// probeContainers checks the candidate container selectors in order and
// reports whether any review-like container is present at all.
func (h *Harvester) probeContainers(doc *goquery.Document) bool {
	for _, sel := range h.adapter.containerSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
