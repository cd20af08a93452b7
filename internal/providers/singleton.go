package providers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/config"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// The pipeline is process-wide state: provider clients are expensive
// to construct, so one instance is built on first use and reused for
// every subsequent query until process exit. A failed first build is
// replayed to every caller; the process never half-initializes.
var (
	pipelineOnce sync.Once
	pipeline     *rag.Pipeline
	pipelineErr  error
)

// Get returns the shared pipeline, building it on first call.
func Get(ctx context.Context, cfg *config.Config, log *slog.Logger) (*rag.Pipeline, error) {
	pipelineOnce.Do(func() {
		var components *Components
		components, pipelineErr = Build(ctx, cfg, log)
		if pipelineErr != nil {
			return
		}
		pipeline = components.Pipeline(cfg, log)
	})
	return pipeline, pipelineErr
}
