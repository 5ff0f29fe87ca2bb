// CLAUDE:SUMMARY Entry point for the cartwatch service — registry catalog, chi HTTP surface, optional browser and MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/cartwatch/browse"
	"github.com/hazyhaar/cartwatch/cartdiff"
	"github.com/hazyhaar/cartwatch/htmldoc"
	"github.com/hazyhaar/cartwatch/resolve"
	"github.com/hazyhaar/cartwatch/selreg"
	"github.com/hazyhaar/cartwatch/snapshot"
)

func main() {
	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := LoadConfigFile(path)
		if err != nil {
			slog.Error("config file", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Port = env("PORT", cfg.Port)
	cfg.SelectorDir = env("SELECTOR_DIR", cfg.SelectorDir)
	cfg.CatalogDB = env("CATALOG_DB", cfg.CatalogDB)
	if v := os.Getenv("BROWSER_REMOTE_URL"); v != "" {
		cfg.Browser.Enabled = true
		cfg.Browser.RemoteURL = v
	}
	cfg.defaults()

	mcpTransport := env("MCP_TRANSPORT", "")

	// Logging.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Registry: durable catalog first, then any file-based selector sets.
	reg := selreg.New(logger)
	cat, err := selreg.OpenCatalog(cfg.CatalogDB, logger)
	if err != nil {
		slog.Error("catalog open", "error", err)
		os.Exit(1)
	}
	defer cat.Close()
	if err := cat.LoadInto(ctx, reg); err != nil {
		slog.Error("catalog load", "error", err)
		os.Exit(1)
	}
	if cfg.SelectorDir != "" {
		if err := selreg.LoadDir(os.DirFS(cfg.SelectorDir), reg); err != nil {
			slog.Error("selector dir load", "dir", cfg.SelectorDir, "error", err)
			os.Exit(1)
		}
	}

	// Resolver + extractor.
	metrics := resolve.NewMetrics()
	resolver := resolve.New(resolve.Config{StrategyTimeout: cfg.Resolver.StrategyTimeout}, logger, metrics)
	extractor := snapshot.New(reg, resolver, logger)

	// Optional live browser.
	var browser *browse.Manager
	if cfg.Browser.Enabled {
		browser = browse.NewManager(browse.Config{
			RemoteURL:        cfg.Browser.RemoteURL,
			MemoryLimit:      cfg.Browser.MemoryLimit,
			RecycleInterval:  cfg.Browser.RecycleInterval,
			NavigateTimeout:  cfg.Browser.NavigateTimeout,
			ResourceBlocking: cfg.Browser.ResourceBlocking,
			Logger:           logger,
		})
		if _, err := browser.Start(ctx); err != nil {
			slog.Error("browser start", "error", err)
			os.Exit(1)
		}
		defer browser.Close()
	}

	// Optional MCP stdio transport.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "cartwatch",
			Version: "1.0.0",
		}, nil)
		(&selreg.MCP{Registry: reg, Catalog: cat}).RegisterMCP(mcpSrv)
		cartdiff.RegisterMCP(mcpSrv, cfg.Diff.PriceThreshold)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
		}()
	}

	// Router.
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		selreg.RegisterHTTP(r, reg, cat)
		cartdiff.RegisterHTTP(r, cfg.Diff.PriceThreshold)

		r.Get("/catalog/stats", func(w http.ResponseWriter, req *http.Request) {
			stats, err := cat.Stats(req.Context())
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, stats)
		})

		// Snapshot of an order or cart page: either live via the browser
		// (url) or from caller-supplied markup (html).
		r.Post("/snapshot", func(w http.ResponseWriter, req *http.Request) {
			var in struct {
				URL  string `json:"url"`
				HTML string `json:"html"`
				Kind string `json:"kind"` // "order" or "cart"
				Page string `json:"page"`
			}
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeError(w, 400, err)
				return
			}

			var doc resolve.DocumentContext
			switch {
			case in.HTML != "":
				d, err := htmldoc.ParseString(in.HTML)
				if err != nil {
					writeError(w, 400, err)
					return
				}
				doc = d
			case browser != nil:
				session, err := browser.Open(req.Context(), in.URL)
				if err != nil {
					writeError(w, 502, err)
					return
				}
				defer session.Close()
				doc = session.Document()
			default:
				writeJSON(w, 503, map[string]string{"error": "browser is not enabled; pass html instead"})
				return
			}
			schema := snapshot.Schema{PageID: in.Page}
			switch in.Kind {
			case "order":
				out, err := extractor.Order(req.Context(), doc, schema)
				if err != nil {
					writeError(w, 502, err)
					return
				}
				writeJSON(w, 200, out)
			case "cart":
				out, err := extractor.Cart(req.Context(), doc, schema)
				if err != nil {
					writeError(w, 502, err)
					return
				}
				writeJSON(w, 200, out)
			default:
				writeJSON(w, 400, map[string]string{"error": "kind must be order or cart"})
			}
		})
	})

	// HTTP server.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "pages", reg.Pages())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// --- Helpers ---

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
