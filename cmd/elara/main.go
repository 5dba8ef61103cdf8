package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/manudrel/elara/internal/auth"
	"github.com/manudrel/elara/internal/config"
	"github.com/manudrel/elara/internal/contextstore"
	"github.com/manudrel/elara/internal/gateway"
	"github.com/manudrel/elara/internal/groq"
	"github.com/manudrel/elara/internal/httpapi"
	"github.com/manudrel/elara/internal/observability"
	"github.com/manudrel/elara/internal/persona"
	"github.com/manudrel/elara/internal/registry"
	"github.com/manudrel/elara/internal/router"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := registry.NewStore(ctx, cfg.DatabaseURL, cfg.UsersFile)
	if err != nil {
		log.Fatalf("registry store init failed: %v", err)
	}
	defer store.Close()

	reg, err := registry.NewRegistry(ctx, store)
	if err != nil {
		log.Fatalf("registry load failed: %v", err)
	}
	metrics.RegistryUsers.Set(float64(len(reg.ListAll())))

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		log.Fatalf("persona load failed: %v", err)
	}

	oracleCfg := groq.Config{
		Mode:         cfg.GroqMode,
		BaseURL:      cfg.GroqBaseURL,
		APIKey:       cfg.GroqAPIKey,
		ParserAPIKey: cfg.GroqParserAPIKey,
		ChatModel:    cfg.GroqChatModel,
		ParserModel:  cfg.GroqParserModel,
	}
	classifier := groq.NewClassifier(oracleCfg)
	generator := groq.NewGenerator(oracleCfg)
	if cfg.GroqAPIKey == "" && cfg.GroqMode != "mock" {
		log.Printf("no GROQ_API_KEY set, oracles run in mock mode")
	}

	contexts := contextstore.New(cfg.AssistantName, cfg.ContextMaxTurns)
	engine := auth.NewEngine(reg)
	rt := router.New(reg, engine, contexts, classifier, generator, p, metrics)
	gw := gateway.New(cfg.AssistantName, reg, contexts, rt, metrics)

	api := httpapi.New(cfg, gw, reg, contexts, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
