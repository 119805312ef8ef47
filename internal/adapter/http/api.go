package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// CallerHeader carries the identity asserted by the upstream auth gateway.
const CallerHeader = "X-User-ID"

type parseRequest struct {
	URL string `json:"url"`
}

type parseResponse struct {
	Locations []domain.ParsedLocation `json:"locations"`
}

type importRequest struct {
	Items []domain.ImportItem `json:"items"`
}

type importResponse struct {
	Success bool                  `json:"success"`
	Outcome *domain.ImportOutcome `json:"outcome,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	locations, err := s.parser.Parse(r.Context(), req.URL)
	switch {
	case err == nil:
		if locations == nil {
			locations = []domain.ParsedLocation{}
		}
		writeJSON(w, http.StatusOK, parseResponse{Locations: locations})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.CallerMessage(err)})
	case domain.IsFetchError(err), domain.IsDataError(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: domain.CallerMessage(err)})
	default:
		s.logger.Error("parse request failed", "url", req.URL, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.MessageParseFailed})
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	caller := domain.Caller{ID: strings.TrimSpace(r.Header.Get(CallerHeader))}

	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, importResponse{Error: "invalid request body"})
		return
	}

	outcome, err := s.importer.Import(r.Context(), r.PathValue("id"), caller, req.Items)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, importResponse{Success: true, Outcome: &outcome})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, importResponse{Error: "authentication required"})
	case errors.Is(err, domain.ErrCollectionNotFound):
		writeJSON(w, http.StatusNotFound, importResponse{Error: "collection not found"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Rows inserted before the interruption are committed; report them.
		s.logger.Warn("import interrupted", "collection_id", r.PathValue("id"), "imported", outcome.Imported, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, importResponse{Outcome: &outcome, Error: "import interrupted"})
	default:
		s.logger.Error("import request failed", "collection_id", r.PathValue("id"), "error", err)
		writeJSON(w, http.StatusInternalServerError, importResponse{Error: "import failed"})
	}
}
