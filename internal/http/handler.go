package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/rag"
)

// PipelineProvider hands the handler the shared pipeline, building it
// on first use. Kept as a function so tests can inject a pipeline
// wired to fakes.
type PipelineProvider func(ctx context.Context) (*rag.Pipeline, error)

type Handler struct {
	pipeline PipelineProvider
}

func NewHandler(pipeline PipelineProvider) *Handler {
	return &Handler{pipeline: pipeline}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type request struct {
	Action   string `json:"action"`
	Country  string `json:"country"`
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type errorBody struct {
	Error string `json:"error"`
}

type countriesBody struct {
	Countries []string `json:"countries"`
}

// Dispatch maps a JSON action request onto the pipeline. Request
// mistakes (missing fields, unknown action, unsupported country) are
// client errors; provider and bootstrap failures are server errors.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}

	p, err := h.pipeline(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	switch req.Action {
	case "", "query":
		if req.Country == "" || req.Question == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required fields: country and question"})
			return
		}
		result := p.Query(r.Context(), rag.QueryRequest{
			Country:  req.Country,
			Question: req.Question,
			TopK:     req.TopK,
		})
		status := http.StatusOK
		if result.Failed() {
			status = http.StatusInternalServerError
			if result.ClientError() {
				status = http.StatusBadRequest
			}
		}
		writeJSON(w, status, result)

	case "list_countries":
		writeJSON(w, http.StatusOK, countriesBody{Countries: p.ListCountries()})

	case "stats":
		result := p.IndexStats(r.Context())
		status := http.StatusOK
		if result.Error != "" {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, result)

	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Unknown action: %s", req.Action)})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
