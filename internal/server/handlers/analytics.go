// internal/server/handlers/analytics.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"threadscope/internal/domain/analytics"
	"threadscope/internal/service/analyzer"
)

// Analyzer runs the analytics pipeline for each entity kind.
type Analyzer interface {
	AnalyzePost(ctx context.Context, rawURL string, withInsight bool) (*analyzer.PostResult, error)
	AnalyzeUser(ctx context.Context, username string) (*analyzer.UserResult, error)
	AnalyzeSubreddit(ctx context.Context, name string) (*analyzer.SubredditResult, error)
}

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	service Analyzer
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service Analyzer) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

type postRequest struct {
	URL     string `json:"url"`
	Insight bool   `json:"insight"`
}

type successResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Cached  bool        `json:"cached"`
	Warning string      `json:"warning,omitempty"`
}

// PostAnalytics computes analytics for a post URL
func (h *AnalyticsHandler) PostAnalytics(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithCodedError(w, analytics.NewError(analytics.CodeInvalidInput, "valid JSON body is required", err))
		return
	}

	result, err := h.service.AnalyzePost(r.Context(), req.URL, req.Insight)
	if err != nil {
		respondWithCodedError(w, err)
		return
	}

	message := "Post analytics fetched successfully"
	if result.Cached {
		message = "Post analytics fetched from cache"
	}

	respondWithJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: message,
		Data:    result.Data,
		Cached:  result.Cached,
		Warning: strings.Join(result.Warnings, "; "),
	})
}

// UserAnalytics computes analytics for a username
func (h *AnalyticsHandler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	result, err := h.service.AnalyzeUser(r.Context(), username)
	if err != nil {
		respondWithCodedError(w, err)
		return
	}

	message := "User analytics fetched successfully"
	if result.Cached {
		message = "User analytics fetched from cache"
	}

	respondWithJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: message,
		Data:    result.Data,
		Cached:  result.Cached,
		Warning: strings.Join(result.Warnings, "; "),
	})
}

// SubredditAnalytics computes analytics for a subreddit name
func (h *AnalyticsHandler) SubredditAnalytics(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := h.service.AnalyzeSubreddit(r.Context(), name)
	if err != nil {
		respondWithCodedError(w, err)
		return
	}

	message := "Subreddit analytics fetched successfully"
	if result.Cached {
		message = "Subreddit analytics fetched from cache"
	}

	respondWithJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: message,
		Data:    result.Data,
		Cached:  result.Cached,
		Warning: strings.Join(result.Warnings, "; "),
	})
}

// respondWithCodedError maps the pipeline error taxonomy onto HTTP
// statuses. Anything without a code is an internal error.
func respondWithCodedError(w http.ResponseWriter, err error) {
	var coded *analytics.Error
	if !errors.As(err, &coded) {
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch coded.Code {
	case analytics.CodeInvalidInput, analytics.CodeInvalidURL,
		analytics.CodeInvalidUsername, analytics.CodeInvalidSubreddit:
		status = http.StatusBadRequest
	case analytics.CodeNotFound:
		status = http.StatusNotFound
	case analytics.CodeUpstream:
		status = http.StatusBadGateway
	}

	respondWithJSON(w, status, map[string]string{
		"error": coded.Message,
		"code":  string(coded.Code),
	})
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
