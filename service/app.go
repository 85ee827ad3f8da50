package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"fairway/app/ai"
	"fairway/app/brand"
	"fairway/app/config"
	"fairway/app/middleware"
	"fairway/app/providers/kakao"
	"fairway/app/providers/solapi"
	"fairway/app/repositories"
	"fairway/app/repositories/postgres"
	"fairway/app/routes"
	"fairway/app/scheduler"
	"fairway/app/services"
)

const (
	shutdownTimeout = 15 * time.Second
	limiterSweep    = "@every 5m"
)

// App is the wired application: stores, providers, services, router and
// background jobs.
type App struct {
	Handler   http.Handler
	Services  routes.Services
	Scheduler *scheduler.Scheduler

	cfg     *config.Config
	log     *zap.Logger
	closers []func() error
}

// NewApp opens the configured store and wires every service.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	repos, health, err := app.openStore()
	if err != nil {
		return nil, err
	}

	b, err := loadBrand(cfg.BrandFile)
	if err != nil {
		app.Close()
		return nil, err
	}

	text, err := ai.NewTextGenerator(ctx, cfg.AISettings())
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			app.Close()
			return nil, err
		}
		log.Warn("AI text generation disabled", zap.Error(err))
	}
	image, err := ai.NewImageGenerator(cfg.AISettings())
	if err != nil {
		log.Warn("AI image generation disabled", zap.Error(err))
	}

	sms := solapi.New(cfg.SolapiKey, cfg.SolapiSecret, cfg.SolapiSender, solapi.WithPFID(cfg.SolapiPFID))
	if !sms.Configured() {
		log.Warn("SMS provider not configured; sends will be rejected")
	}
	friendTalk := kakao.New(cfg.KakaoAdmin)

	links := services.NewShortLinkService(repos.ShortLinks, cfg.PublicBaseURL, log)
	dispatch := services.NewDispatchService(repos, sms, log)
	app.Services = routes.Services{
		Auth:         services.NewAuthService(cfg.AdminUser, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL, log),
		Blog:         services.NewBlogService(repos.Blog, repos.Calendar, log),
		Channels:     services.NewChannelService(repos, links, dispatch, sms, cfg.SiteURL, log),
		Kakao:        services.NewKakaoService(repos, friendTalk, sms, log),
		Customers:    services.NewCustomerService(repos, log),
		Calendar:     services.NewCalendarService(repos.Calendar, log),
		Content:      services.NewContentService(b, text, image, log),
		Multichannel: services.NewMultichannelService(repos, b, text, log),
		Dispatch:     dispatch,
		ShortLinks:   links,
	}
	if !app.Services.Auth.Enabled() {
		log.Warn("admin login not configured; admin routes are open")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	}

	app.Scheduler = scheduler.New(log)
	if cfg.DispatchSchedule != "" {
		if err := app.Scheduler.AddDispatch(cfg.DispatchSchedule, dispatch, cfg.DispatchDryRun); err != nil {
			app.Close()
			return nil, err
		}
	}
	if limiter != nil {
		err := app.Scheduler.Every(limiterSweep, "rate limiter cleanup", func(context.Context) {
			if n := limiter.Cleanup(); n > 0 {
				log.Debug("dropped idle rate limiters", zap.Int("count", n))
			}
		})
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	app.Handler = routes.SetupRoutes(app.Services, routes.Options{
		Origins:    cfg.Origins(),
		CronSecret: cfg.CronSecret,
		Limiter:    limiter,
		Health:     health,
	}, log)
	return app, nil
}

func (a *App) openStore() (repositories.Set, func() error, error) {
	switch a.cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(a.cfg.DatabaseURL)
		if err != nil {
			return repositories.Set{}, nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.MigrateUp(db.DB); err != nil {
			a.Close()
			return repositories.Set{}, nil, err
		}
		a.log.Info("using postgres store")
		return postgres.Repositories(db), db.Ping, nil

	case config.DriverMemory:
		store, err := repositories.NewInMemoryStore()
		if err != nil {
			return repositories.Set{}, nil, fmt.Errorf("open memory store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.log.Warn("using in-memory store; data is lost on exit")
		return store.Repositories(), badgerHealth(store), nil

	default:
		store, err := repositories.NewStore(a.cfg.BadgerPath)
		if err != nil {
			return repositories.Set{}, nil, fmt.Errorf("open badger store at %s: %w", a.cfg.BadgerPath, err)
		}
		a.closers = append(a.closers, store.Close)
		a.log.Info("using badger store", zap.String("path", a.cfg.BadgerPath))
		return store.Repositories(), badgerHealth(store), nil
	}
}

func badgerHealth(store *repositories.Store) func() error {
	return func() error {
		if store.DB().IsClosed() {
			return errors.New("store is closed")
		}
		return nil
	}
}

func loadBrand(path string) (*brand.Data, error) {
	if path == "" {
		return brand.Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brand file: %w", err)
	}
	return brand.Parse(raw)
}

// Close releases the store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve runs the HTTP server and the scheduler on ln until ctx is cancelled,
// then drains both.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// AI generation can take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	a.Scheduler.Start()
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		a.log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server shutdown failed", zap.Error(err))
	}
	if err := a.Scheduler.Stop(shutdownCtx); err != nil {
		a.log.Error("scheduler did not stop in time", zap.Error(err))
	}
	return serveErr
}

// RunServer wires the application and serves it on cfg.HTTPAddr until ctx
// is cancelled.
func RunServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	return app.Serve(ctx, ln)
}

// RunDispatch sends the due scheduled SMS once.
func RunDispatch(ctx context.Context, cfg *config.Config, log *zap.Logger, dryRun bool) (*services.DispatchReport, error) {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return app.Services.Dispatch.RunScheduled(ctx, dryRun)
}
