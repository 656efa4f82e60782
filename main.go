package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/catalog"
	"github.com/TheRealTwizzy/raiderdle/internal/daily"
	"github.com/TheRealTwizzy/raiderdle/internal/icons"
	"github.com/TheRealTwizzy/raiderdle/internal/wordle"
)

// deps is everything the routes need.
type deps struct {
	svc        *daily.Service
	bugReports BugReportStore
	limiter    *rateLimiter
	icons      *icons.Dir
	proxy      *http.Client
	features   FeatureFlags
	adminToken string
	now        func() time.Time
	log        *zap.Logger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg.State, log)
	if err != nil {
		return fmt.Errorf("open state backend: %w", err)
	}
	defer backend.Close()

	words, err := wordle.Default()
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	log.Info("loaded word list", zap.Int("answers", words.Answers()))

	client := catalog.NewClient(catalog.Options{
		BaseURL:  cfg.Catalog.BaseURL,
		PageSize: cfg.Catalog.PageSize,
		MaxPages: cfg.Catalog.MaxPages,
		Timeout:  cfg.Catalog.Timeout,
	}, log.Named("catalog"))

	iconDir := icons.NewDir(cfg.IconsDir, cfg.IconsPublicURL)
	svc := daily.New(daily.Config{
		Catalog: client,
		Icons:   iconDir,
		Store:   backend,
		Words:   words,
		Log:     log.Named("daily"),

		// Every page of a build may take up to the per-request timeout.
		BuildTimeout: cfg.Catalog.Timeout * time.Duration(cfg.Catalog.MaxPages),
	})

	trusted, err := parseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := newRateLimiter(cfg.BugReportRateLimit, cfg.BugReportRateWindow, time.Now).trustProxies(trusted)

	d := deps{
		svc:        svc,
		bugReports: backend,
		limiter:    limiter,
		icons:      iconDir,
		proxy:      &http.Client{Timeout: cfg.Catalog.Timeout},
		features:   cfg.Features,
		adminToken: cfg.AdminToken,
		now:        time.Now,
		log:        log,
	}
	mux := http.NewServeMux()
	registerRoutes(mux, d)

	janitor := startCacheJanitor(ctx, svc, cfg.CachePruneInterval, log)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + strconv.Itoa(cfg.Port),
		Handler:           withRequestLog(withCORS(mux, cfg.AllowedOrigins), log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.State.Backend))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete", zap.Error(err))
	}
	stop()
	<-janitor
	return nil
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, d deps) {
	log := d.log.Named("api")

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /api/health", healthHandler)

	mux.HandleFunc("GET /api/{category}/today", todayHandler(d.svc, log))
	mux.HandleFunc("POST /api/secret/guess", guessHandler(d.svc, log))
	mux.HandleFunc("GET /api/secret/guess", guessHandler(d.svc, log))
	mux.HandleFunc("GET /api/secret/reveal", revealHandler(d.svc))

	mux.HandleFunc("GET /api/items", listingHandler(d.svc, "items", log))
	mux.HandleFunc("GET /api/arcs", listingHandler(d.svc, "arcs", log))

	mux.HandleFunc("GET /api/icons", iconsListHandler(d.svc, log))
	mux.HandleFunc("GET /api/icons/image/{filename}", iconImageHandler(d.icons, log))

	if d.features.ImageProxy {
		mux.HandleFunc("GET /api/proxy-image", imageProxyHandler(d.proxy, log))
	}
	if d.features.BugReports {
		mux.HandleFunc("POST /api/bug-report", bugReportSubmitHandler(d.bugReports, d.limiter, d.now, log))
	}
	mux.HandleFunc("GET /api/admin/bug-reports", adminBugReportsHandler(d.bugReports, d.adminToken, log))
}
