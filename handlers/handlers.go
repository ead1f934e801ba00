package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/nijaru/yt-transcript/validation"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "YouTube Transcript API Service",
		"version": s.config.Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":     "/api/health",
			"transcript": "/api/transcript (POST)",
			"languages":  "/api/transcript/languages (POST)",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.config.ServiceName,
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTranscriptRequest(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.service.GetTranscript(r.Context(), req.VideoInput(), req.LanguageCode)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTranscriptRequest(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	list, err := s.service.ListLanguages(r.Context(), req.VideoInput())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	utils.HandleError(w, "not found", http.StatusNotFound)
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	if s.lookups == nil {
		utils.HandleError(w, "lookup journal is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.HandleError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	lookups, err := s.lookups.RecentLookups(r.Context(), limit)
	if err != nil {
		s.handleError(w, r, errors.Upstream("Server.handleLookups", err, "failed to read lookups"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string][]models.Lookup{"lookups": lookups})
}

// decodeTranscriptRequest reads and validates the JSON body shared by both
// transcript routes.
func decodeTranscriptRequest(r *http.Request) (*models.TranscriptRequest, error) {
	const op = "handlers.decodeTranscriptRequest"

	var req models.TranscriptRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if pkgerrors.Is(err, io.EOF) {
			return nil, errors.InvalidInput(op, err, "video_id or url is required")
		}
		return nil, errors.InvalidInput(op, err, "invalid JSON body")
	}

	if err := validation.ValidateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// statusCode maps an error kind onto the HTTP status reported to clients.
func statusCode(kind errors.Kind) int {
	switch kind {
	case errors.KindInvalidInput, errors.KindTranscriptsDisabled:
		return http.StatusBadRequest
	case errors.KindNotFound, errors.KindEmptyTranscript:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errors.KindOf(err)
	code := statusCode(kind)

	entry := s.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"kind":       kind.String(),
		"status":     code,
	}).WithError(err)
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Debug("Request rejected")
	}

	utils.HandleError(w, errors.MessageOf(err), code)
}
