package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/diagrams/internal/asset"
	"github.com/inamate/diagrams/internal/auth"
	"github.com/inamate/diagrams/internal/config"
	"github.com/inamate/diagrams/internal/db"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/export"
	"github.com/inamate/diagrams/internal/library"
	"github.com/inamate/diagrams/internal/logging"
	mw "github.com/inamate/diagrams/internal/middleware"
	"github.com/inamate/diagrams/internal/preview"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("configure logging", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	engineOpts := engine.Options{PlotWidth: cfg.RenderWidth, PlotHeight: cfg.RenderHeight}
	pages := engine.NewPages(engineOpts)

	authService := auth.NewService(auth.NewPGUserStore(pool), cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	thumbnails := asset.NewThumbnails(cfg.AssetDir)
	libraryHandler := library.NewHandler(library.NewService(library.NewPGStore(pool), thumbnails, engineOpts))
	exportHandler := export.NewHandler(pages, engineOpts)

	hub := preview.NewHub(pages)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","pages":%d}`, pages.Len())
	}).Methods("GET")

	// Rendering is public: lesson pages are viewed without an account
	exportHandler.Routes(r)
	r.PathPrefix("/thumbnails/").Handler(thumbnails.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.RequireScope(auth.ScopeLibrary))
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	libraryHandler.Routes(api.PathPrefix("/diagrams").Subrouter())

	// Live preview: authors and anonymous viewers share a page room
	origins := originPatterns(cfg.Origins())
	r.Handle("/ws/page/{pageId}", authService.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, origins)
	})))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so every page cache is torn down
		hub.Stop()
		pages.TeardownAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// originPatterns strips schemes, since websocket.AcceptOptions matches hosts.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *preview.Hub, origins []string) {
	pageID := mux.Vars(r)["pageId"]
	if pageID == "" || len(pageID) > 64 {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	// Authors present under their own name; everyone else watches anonymously
	userID, displayName := "anon-"+uuid.New().String()[:8], "Anonymous"
	p, ok := auth.PrincipalFromContext(r.Context())
	anonymous := !ok || !p.Can(auth.ScopePreview)
	if !anonymous {
		userID, displayName = p.AuthorID, p.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := preview.NewClient(hub, conn, userID, displayName, pageID, uuid.New().String(), anonymous)
	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
