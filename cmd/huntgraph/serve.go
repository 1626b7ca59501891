package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/huntgraph/internal/api"
	"github.com/gyaneshwarpardhi/huntgraph/internal/backend"
	"github.com/gyaneshwarpardhi/huntgraph/internal/config"
	"github.com/gyaneshwarpardhi/huntgraph/internal/feed"
	"github.com/gyaneshwarpardhi/huntgraph/internal/session"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filtered graph view over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

// loadConfig returns the validated config and, when a file was given, the
// loader that owns it.
func loadConfig() (*config.Config, *config.Loader, error) {
	if cfgPath == "" {
		cfg := config.Default()
		return cfg, nil, config.Validate(cfg)
	}
	loader, err := config.NewLoader(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func serve(parent context.Context, addrOverride string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, loader, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	// ── Backend client ────────────────────────────────────────────────────────
	opts := cfg.Backend.BackendOptions()
	opts.Logger = slog.Default()
	client, err := backend.New(opts)
	if err != nil {
		return err
	}

	// ── Session ───────────────────────────────────────────────────────────────
	initial, err := cfg.Filters.InitialState()
	if err != nil {
		return err
	}
	style := cfg.Render.Style()
	sess := session.New(session.Options{
		Fetcher: client,
		Initial: &initial,
		Style:   &style,
		Logger:  slog.Default(),
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Backend.RefreshOnStart {
		if err := sess.Refresh(ctx); err != nil {
			slog.Warn("initial graph fetch failed, serving empty view", "url", client.URL(), "err", err)
		} else {
			v := sess.View()
			slog.Info("graph loaded", "nodes", v.TotalNodes, "links", v.TotalEdges, "visible", len(v.Nodes))
		}
	}

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	if loader != nil {
		// Reload validates before notifying, so newCfg is always valid here.
		loader.OnChange(func(newCfg *config.Config) {
			sess.SetStyle(newCfg.Render.Style())
			slog.Info("render settings hot-reloaded", "path", loader.Path())
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── Event feed ────────────────────────────────────────────────────────────
	var wg sync.WaitGroup
	if cfg.Feed.Enabled {
		fopts := cfg.Feed.FeedOptions()
		fopts.Logger = slog.Default()
		listener := feed.NewListener(fopts)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Run(ctx, sess.HandleEvent); err != nil {
				slog.Error("event feed stopped", "err", err)
			}
		}()
		slog.Info("event feed enabled", "url", cfg.Feed.URL, "triggers", listener.Triggers().List())
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(sess, loader, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         slog.Default(),
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "backend", client.URL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	select {
	case err := <-errc:
		stop()
		wg.Wait()
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutMs)*time.Millisecond)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("shutdown incomplete", "err", err)
	}
	wg.Wait()
	slog.Info("goodbye")
	return nil
}
