package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/config"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

type Router struct {
	chat     ports.ChatService
	sessions ports.SessionReader
	ingestor ports.CatalogIngestor
	jobs     ports.CatalogReader
	images   ports.ObjectStorage

	rateLimitRPS     float64
	rateLimitBurst   int
	maxConcurrent    int
	backpressureWait time.Duration
}

func NewRouter(
	chat ports.ChatService,
	sessions ports.SessionReader,
	ingestor ports.CatalogIngestor,
	jobs ports.CatalogReader,
	images ports.ObjectStorage,
	cfg config.Config,
) *Router {
	return &Router{
		chat:     chat,
		sessions: sessions,
		ingestor: ingestor,
		jobs:     jobs,
		images:   images,

		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxConcurrent:    cfg.APIMaxConcurrent,
		backpressureWait: time.Duration(cfg.APIBackpressureMSecs) * time.Millisecond,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.handleChat)
	mux.HandleFunc("/v1/sessions/", rt.getSessionMessages)
	mux.HandleFunc("/v1/catalog", rt.uploadCatalog)
	mux.HandleFunc("/v1/catalog/", rt.getCatalogJob)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxConcurrent, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) getSessionMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	id, ok := strings.CutSuffix(rest, "/messages")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	messages, err := rt.sessions.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"messages":   messages,
	})
}

func (rt *Router) uploadCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	job, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getCatalogJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/catalog/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	job, err := rt.jobs.GetJobByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
