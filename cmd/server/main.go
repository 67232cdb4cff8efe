package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/checkout"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/config"
	httpd "github.com/mainakxbuilds/makXsensi-frontend/internal/delivery/http"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/health"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/logger"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/notify"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/orderclient"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/repository"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/storefront"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/widget"
)

// pages nobody touched for this long are dropped
const pageIdleTimeout = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(reg)

	repo, err := repository.NewSQLiteRepo(cfg.SQLiteDSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	client := orderclient.New(orderclient.Options{
		BaseURL: cfg.OrderAPIURL,
		Secret:  cfg.OrderAPISecret,
		Timeout: cfg.OrderAPITimeout,
		Metrics: m,
		Logger:  zl.Named("orderclient"),
	})

	bridge := widget.NewBridge(zl.Named("widget"))
	defer bridge.Close()

	orch := checkout.New(client, bridge, repo, m, zl.Named("checkout"), checkout.Config{
		IdleLabel:     cfg.IdleLabel,
		Brand:         cfg.BrandName,
		BrandImage:    cfg.BrandImage,
		WidgetTimeout: cfg.WidgetTimeout,
		VerifyTimeout: cfg.OrderAPITimeout,
	})

	packs, err := cfg.PackList()
	if err != nil {
		return err
	}
	items := make([]storefront.Pack, 0, len(packs))
	for _, p := range packs {
		items = append(items, storefront.Pack{Name: p.Name, AmountMinor: p.AmountMinor})
	}
	catalog := storefront.NewCatalog(cfg.Currency, items...)

	notifyLog := zl.Named("notify")
	pages := storefront.NewRegistry(catalog, cfg.IdleLabel, func() *notify.Presenter {
		return notify.New(notify.Options{
			AutoDismiss:  cfg.SuccessAutoDismiss,
			DetachDelay:  cfg.DismissDelay,
			SupportEmail: cfg.SupportEmail,
			Metrics:      m,
			Logger:       notifyLog,
		})
	})

	warmer := health.NewWarmer(client, cfg.HealthInterval, m, zl.Named("health"))
	go warmer.Run(ctx)
	go sweepPages(ctx, pages, zl)

	h := httpd.NewHandler(httpd.Deps{
		Orchestrator: orch,
		Bridge:       bridge,
		Pages:        pages,
		Catalog:      catalog,
		Repo:         repo,
		Warmer:       warmer,
		Gatherer:     reg,
		Logger:       zl.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           h.Routes(httpd.RouteConfig{AllowedOrigins: cfg.CORSAllowedOrigins, SiteDir: cfg.SiteDir}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("order_api", cfg.OrderAPIURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepPages(ctx context.Context, pages *storefront.Registry, zl *zap.Logger) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := pages.CloseIdle(pageIdleTimeout); n > 0 {
				zl.Debug("closed idle pages", zap.Int("count", n))
			}
		}
	}
}
