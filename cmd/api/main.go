package main

import (
	"context"
	"net/http"
	"os"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/config"
	apphttp "github.com/AndresFMC/RAG-powered-AI-assistant/internal/http"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/logger"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/providers"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	log := logger.New(logger.WithJSON(os.Getenv("LOG_FORMAT") == "json"))

	// Warm the pipeline before accepting traffic; a broken provider
	// configuration must fail the process, not the first request.
	if _, err := providers.Get(ctx, cfg, log); err != nil {
		log.Error("failed to init pipeline", "error", err)
		os.Exit(1)
	}

	h := apphttp.NewHandler(func(ctx context.Context) (*rag.Pipeline, error) {
		return providers.Get(ctx, cfg, log)
	})
	router := apphttp.NewRouter(h)

	addr := ":" + cfg.Port
	log.Info("API listening", "addr", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(router)); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
