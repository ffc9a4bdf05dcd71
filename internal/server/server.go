// Package server exposes the bill parsing pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ledgerline/billparse/internal/pipeline"
	"github.com/ledgerline/billparse/internal/store"
)

// Parser processes a raw PDF document into a normalized result.
type Parser interface {
	Process(ctx context.Context, document []byte) (*pipeline.Result, error)
}

// Server handles HTTP requests for bill parsing.
type Server struct {
	parser   Parser
	store    store.Store
	maxBytes int64
}

// New creates a Server. maxBytes caps uploaded document size; <= 0
// means a 25 MB default.
func New(parser Parser, st store.Store, maxBytes int64) *Server {
	if maxBytes <= 0 {
		maxBytes = 25 << 20
	}
	return &Server{parser: parser, store: st, maxBytes: maxBytes}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/parse-file", s.handleParseFile)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// parseResponse is the envelope returned for a successful extraction.
type parseResponse struct {
	Status           string      `json:"status"`
	BillID           string      `json:"bill_id"`
	ExtractionMethod string      `json:"extraction_method"`
	Data             interface{} `json:"data"`
}

func (s *Server) handleParseFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if len(doc) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	zap.L().Info("parse request",
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(doc)))

	// The stub row is created before extraction starts so a failed
	// extraction still leaves an auditable trace.
	billID, err := s.store.CreateBill(ctx)
	if err != nil {
		zap.L().Error("create bill", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create bill record")
		return
	}

	result, err := s.parser.Process(ctx, doc)
	if err != nil {
		zap.L().Error("extraction failed",
			zap.String("bill_id", billID),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "extraction failed: "+err.Error())
		return
	}

	if err := s.store.SaveBill(ctx, billID, result.Bill, result.Method); err != nil {
		zap.L().Error("save bill", zap.String("bill_id", billID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save bill record")
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Status:           "success",
		BillID:           billID,
		ExtractionMethod: result.Method,
		Data:             result.Bill,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
