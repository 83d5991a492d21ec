package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/riverbend/localwaters/internal/adapter/debughttp"
	"github.com/riverbend/localwaters/internal/adapter/httpx"
	"github.com/riverbend/localwaters/internal/adapter/reportsfeed"
	"github.com/riverbend/localwaters/internal/adapter/usgs"
	"github.com/riverbend/localwaters/internal/adapter/zippopotam"
	"github.com/riverbend/localwaters/internal/aggregator"
	"github.com/riverbend/localwaters/internal/cache"
	"github.com/riverbend/localwaters/internal/config"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/flow"
	"github.com/riverbend/localwaters/internal/location"
	"github.com/riverbend/localwaters/internal/observability"
	"github.com/riverbend/localwaters/internal/reports"
	"github.com/riverbend/localwaters/internal/store"
)

func main() {
	zipFlag := flag.String("zip", "", "set the active location from a 5-digit ZIP code")
	clearFlag := flag.Bool("clear-location", false, "forget the saved location and exit")
	jsonFlag := flag.Bool("json", false, "emit the view as JSON instead of text")
	watchFlag := flag.Bool("watch", false, "keep refreshing on an interval and serve debug endpoints")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	volatile := cache.NewMemoryStore()
	locStore := store.NewFileStore(cfg.LocationFile)

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	usgsClient := usgs.NewClient(
		cfg.USGSIVBaseURL, cfg.USGSStatBaseURL,
		httpx.New("usgs", httpClient, httpx.DefaultBackoff),
		metrics, logger,
	)
	zipClient := zippopotam.NewClient(
		cfg.ZipBaseURL,
		httpx.New("zippopotam", httpClient, httpx.DefaultBackoff),
		metrics, logger,
	)
	feedClient := reportsfeed.NewClient(
		cfg.ReportsFeedURL,
		httpx.New("reportsfeed", httpClient, httpx.DefaultBackoff),
		metrics, logger,
	)

	var locator location.Locator = location.UnavailableLocator{}
	if cfg.DeviceFixSet {
		locator = location.StaticLocator{Lat: cfg.DeviceLat, Lon: cfg.DeviceLon}
	}

	resolver := location.NewResolver(locStore, locator, zipClient, volatile, metrics, logger)
	flowSource := flow.New(usgsClient, volatile, flow.Config{
		RadiusMiles: cfg.RadiusMiles,
		MaxSites:    cfg.MaxSites,
		CacheTTL:    cfg.SiteCacheTTL,
	}, metrics, logger)
	reportSource := reports.New(feedClient, volatile, reports.Config{
		MaxReports: cfg.MaxReports,
		CacheTTL:   cfg.ReportCacheTTL,
	}, metrics, logger)

	coordinator := aggregator.New(resolver, flowSource, reportSource, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *clearFlag {
		if err := resolver.Clear(); err != nil {
			logger.Error("failed to clear location", "error", err)
			os.Exit(1)
		}
		fmt.Println("saved location cleared")
		return
	}

	if *zipFlag != "" {
		loc, err := resolver.GeocodeZip(ctx, *zipFlag)
		if err != nil {
			logger.Error("failed to geocode zip", "zip", *zipFlag, "error", err)
			os.Exit(1)
		}
		if err := resolver.SetLocation(loc); err != nil {
			logger.Error("failed to save location", "error", err)
			os.Exit(1)
		}
		logger.Info("location saved", "name", loc.Name, "zip", loc.Zip)
	}

	if *watchFlag {
		runWatch(ctx, coordinator, cfg, logger)
		return
	}

	view := aggregator.BuildView(coordinator.Load(ctx))
	if err := emit(os.Stdout, view, *jsonFlag); err != nil {
		logger.Error("failed to render view", "error", err)
		os.Exit(1)
	}
}

func emit(w io.Writer, view aggregator.View, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return renderText(w, view)
}

// refresher reloads the view on an interval and serves the latest copy to
// the debug endpoints.
type refresher struct {
	coordinator *aggregator.Coordinator

	mu    sync.RWMutex
	view  aggregator.View
	ready bool
}

func (r *refresher) refresh(ctx context.Context) {
	view := aggregator.BuildView(r.coordinator.Load(ctx))

	r.mu.Lock()
	r.view = view
	r.ready = true
	r.mu.Unlock()
}

func (r *refresher) CurrentView() aggregator.View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

func (r *refresher) CheckReadiness(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.ready {
		return errors.New("no refresh completed yet")
	}
	return nil
}

func runWatch(ctx context.Context, coordinator *aggregator.Coordinator, cfg *config.Config, logger *slog.Logger) {
	r := &refresher{coordinator: coordinator}

	var srv *debughttp.Server
	if cfg.HTTPAddr != "" {
		srv = debughttp.NewServer(cfg.HTTPAddr, r, r, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug http server error", "error", err)
			}
		}()
	}

	logger.Info("watch mode started", "interval", cfg.RefreshInterval)
	r.refresh(ctx)

	ticker := domain.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("debug http server shutdown error", "error", err)
				}
			}
			logger.Info("shutdown complete")
			return
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}
