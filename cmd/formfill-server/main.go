package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-formfill"
	"github.com/goliatone/go-formfill/internal/config"
	"github.com/goliatone/go-formfill/internal/metrics"
	"github.com/goliatone/go-formfill/internal/server"
	"github.com/goliatone/go-formfill/pkg/client"
)

// main wires configuration, the backend client, and the HTTP host, then
// serves until interrupted.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	addr := flag.String("addr", cfg.Addr, "listen address")
	basePath := flag.String("base-path", cfg.BasePath, "path prefix for every page")
	backendURL := flag.String("backend", cfg.BackendURL, "remote backend URL (empty serves forms from -forms)")
	formsDir := flag.String("forms", cfg.FormsDir, "directory of JSON/YAML forms for the in-memory backend")
	flag.Parse()

	cfg.Addr = *addr
	cfg.BasePath = config.NormalizeBasePath(*basePath)
	cfg.BackendURL = *backendURL
	cfg.FormsDir = *formsDir

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("configure logger: %v", err)
	}
	slog.SetDefault(logger)

	m := metrics.New()
	svc, err := newService(cfg, logger, m)
	if err != nil {
		log.Fatalf("configure backend: %v", err)
	}

	srv, err := server.New(svc,
		server.WithLogger(logger),
		server.WithMetrics(m),
		server.WithBasePath(cfg.BasePath),
		server.WithPublicOrigin(cfg.PublicOrigin),
		server.WithRedirectDelay(cfg.RedirectDelay),
		server.WithOptionCheck(cfg.OptionCheck),
	)
	if err != nil {
		log.Fatalf("configure server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting formfill", "addr", cfg.Addr, "base_path", cfg.BasePath, "memory_backend", cfg.UsesMemoryBackend())
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	logger.Info("formfill stopped")
}

func newService(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*client.Service, error) {
	opts := []client.Option{
		client.WithServiceID(cfg.ServiceID),
		client.WithLogger(logger),
		client.WithCallObserver(m),
	}
	if !cfg.UsesMemoryBackend() {
		return formfill.NewHTTPService(cfg.BackendURL, []client.HTTPOption{client.WithTimeout(cfg.Timeout)}, opts...)
	}

	catalog, err := formfill.LoadForms(os.DirFS(cfg.FormsDir))
	if err != nil {
		return nil, err
	}
	logger.Info("serving forms from disk", "dir", cfg.FormsDir, "forms", catalog.Len())
	svc, _ := formfill.NewMemoryService(catalog, opts...)
	return svc, nil
}
