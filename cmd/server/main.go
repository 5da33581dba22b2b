package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wifivault/internal/config"
	"wifivault/internal/handler"
	"wifivault/internal/hub"
	"wifivault/internal/repository/sqlite"
	"wifivault/internal/secretbox"
	"wifivault/internal/service"
	"wifivault/internal/watcher"
)

func main() {
	// Command line flags override the config file
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	configPath := flag.String("config", "", "Config file path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting WifiVault server...")

	// Load configuration
	var cfg *config.Config
	var cfgSource string
	var err error
	if *configPath != "" {
		cfg, cfgSource, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgSource, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgSource != "" {
		log.Printf("Config loaded: %s", cfgSource)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Listen.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Open the at-rest encryption key
	box, err := secretbox.Open(cfg.Keys.Dir)
	if err != nil {
		log.Fatalf("Failed to open encryption key: %v", err)
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path, box)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	sseHub := hub.New()
	go sseHub.Run()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Initialize services
	profileSvc := service.NewProfileService(repo, eventBus)
	templateSvc, err := service.NewTemplateService(service.TemplateConfig{
		Format:      cfg.Secrets.Format,
		ExamplePath: cfg.Secrets.ExamplePath,
		LivePath:    cfg.Secrets.Path,
		GuardRoot:   cfg.Secrets.GuardRoot,
	}, repo, eventBus)
	if err != nil {
		log.Fatalf("Failed to initialize template service: %v", err)
	}

	// Make sure the committed example template exists
	if err := templateSvc.WriteExample(false); err != nil {
		log.Printf("Warning: failed to write example secrets file: %v", err)
	}

	// Watch the live secrets file for edits made outside the API
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watcher.WatchEnabled() {
		fileWatcher := watcher.New(templateSvc.LivePath(), func() {
			templateSvc.HandleFileChange(watchCtx)
		}).WithDebounce(cfg.Watcher.Debounce.Duration())
		go func() {
			if err := fileWatcher.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	// Initialize HTTP handlers
	profilesHandler := handler.NewProfilesHandler(profileSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc, cfg.Secrets.Format)

	// Setup routes
	mux := http.NewServeMux()

	// Profile endpoints
	mux.HandleFunc("GET /api/profiles", profilesHandler.ListProfiles)
	mux.HandleFunc("POST /api/profiles", profilesHandler.CreateProfile)
	mux.HandleFunc("GET /api/profiles/{id}", profilesHandler.GetProfile)
	mux.HandleFunc("PUT /api/profiles/{id}", profilesHandler.UpdateProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", profilesHandler.DeleteProfile)
	mux.HandleFunc("POST /api/profiles/{id}/activate", templateHandler.ActivateProfile)

	// Template and secrets file endpoints
	mux.HandleFunc("GET /api/formats", templateHandler.ListFormats)
	mux.HandleFunc("GET /api/template", templateHandler.RenderTemplate)
	mux.HandleFunc("POST /api/template/write", templateHandler.WriteExample)
	mux.HandleFunc("GET /api/secrets-file", templateHandler.GetSecretsFile)
	mux.HandleFunc("GET /api/guard", templateHandler.RunGuard)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Listen.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Listen.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	watchCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
