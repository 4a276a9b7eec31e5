// Package httpapi exposes the analysis pipeline over HTTP: document
// processing, chat, health, and text downloads.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

// Request size cap for JSON bodies. OCR text payloads can be large but
// bounded; anything bigger points at a misbehaving client.
const maxBodyBytes = 16 << 20

// Server handles the HTTP API surface.
type Server struct {
	analysis  driving.AnalysisService
	chat      driving.ChatService
	store     driven.AnalysisStore
	extractor driven.TextExtractor
	modelName string
}

// NewServer creates a new API server. modelName is reported by the health
// endpoint; empty means fallback-only operation.
func NewServer(
	analysis driving.AnalysisService,
	chat driving.ChatService,
	store driven.AnalysisStore,
	extractor driven.TextExtractor,
	modelName string,
) *Server {
	return &Server{
		analysis:  analysis,
		chat:      chat,
		store:     store,
		extractor: extractor,
		modelName: modelName,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/process", s.handleProcess).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/results", s.handleListResults).Methods(http.MethodGet)
	r.HandleFunc("/api/download/{kind:ocr|summary}", s.handleDownload).Methods(http.MethodPost)
	return r
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("HTTP API listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type processRequest struct {
	// Files are paths to pre-extracted OCR text documents.
	Files              []string `json:"files"`
	OCRLanguage        string   `json:"ocr_language"`
	ClassificationMode string   `json:"classification_mode"`
}

type chatRequest struct {
	Message string `json:"message"`

	// ProcessedData carries the analysis result inline; ResultID references
	// a stored one instead. ProcessedData wins when both are set.
	ProcessedData *domain.AnalysisResult `json:"processed_data"`
	ResultID      string                 `json:"result_id"`

	History []domain.ChatTurn `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type downloadRequest struct {
	ResultID string `json:"result_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"ai_mode":   s.modelName != "",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.modelName != "" {
		status["model"] = s.modelName
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	doc, err := s.extractor.Extract(r.Context(), req.Files, req.OCRLanguage)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("reading input: %v", err))
		return
	}

	result, err := s.analysis.Process(r.Context(), doc, driving.ProcessOptions{
		OCRLanguage:        req.OCRLanguage,
		ClassificationMode: req.ClassificationMode,
		FilesProcessed:     len(req.Files),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := req.ProcessedData
	if result == nil && req.ResultID != "" {
		stored, err := s.store.Get(r.Context(), req.ResultID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "result not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result = stored
	}

	answer, err := s.chat.Respond(r.Context(), req.Message, result, req.History)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Summaries only; full text is fetched per result.
	type item struct {
		ID           string                `json:"id"`
		DocumentType string                `json:"document_type"`
		CreatedAt    time.Time             `json:"created_at"`
		Mode         domain.ProcessingMode `json:"processing_mode"`
		TopCategory  *domain.CategoryScore `json:"top_category,omitempty"`
	}
	items := make([]item, 0, len(results))
	for i := range results {
		it := item{
			ID:           results[i].ID,
			DocumentType: results[i].DocumentType,
			CreatedAt:    results[i].CreatedAt,
			Mode:         results[i].Metadata.ProcessingMode,
		}
		if len(results[i].Classification) > 0 {
			it.TopCategory = &results[i].Classification[0]
		}
		items = append(items, it)
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	var req downloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ResultID == "" {
		writeError(w, http.StatusBadRequest, "result_id is required")
		return
	}

	result, err := s.store.Get(r.Context(), req.ResultID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var body, filename string
	switch kind {
	case "ocr":
		body, filename = result.OCRText, "ocr_text.txt"
	case "summary":
		body, filename = result.Summary, "summary.txt"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// decodeJSON decodes the request body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
