package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "github.com/okravets/linktally/internal/api/http"
	"github.com/okravets/linktally/internal/config"
	"github.com/okravets/linktally/internal/service"
	"github.com/okravets/linktally/internal/storage/memory"
)

// Run assembles the application and serves HTTP traffic until ctx is
// canceled. All state lives in process memory, so a restart starts from
// an empty link registry.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := httplog.NewLogger("linktally", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
		LogLevel: slog.LevelInfo,
	})

	store := memory.NewStore()
	linkSvc := service.NewLinkService(store)
	r := api.NewRouter(logger, linkSvc, cfg.BaseURL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
