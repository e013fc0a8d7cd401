package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"datadash/domain/dataset"
	apperrors "datadash/internal/errors"
	"datadash/internal/loader"
)

type remoteRequest struct {
	RepoURL  string `json:"repo_url"`
	FilePath string `json:"file_path"`
}

type remoteResponse struct {
	URL     string           `json:"url"`
	Dataset *dataset.Dataset `json:"dataset"`
}

type uploadResponse struct {
	Source  dataset.SourceDescriptor `json:"source"`
	Dataset *dataset.Dataset         `json:"dataset"`
}

type chartRequest struct {
	Dataset *dataset.Dataset `json:"dataset"`
	X       string           `json:"x"`
	Y       string           `json:"y"`
}

type chartResponse struct {
	Rendered bool                 `json:"rendered"`
	Points   []dataset.ChartPoint `json:"points"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	StatusCode int    `json:"status_code,omitempty"`
	Extension  string `json:"extension,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleURL(w http.ResponseWriter, r *http.Request) {
	repoURL := r.URL.Query().Get("repo_url")
	filePath := r.URL.Query().Get("file_path")
	writeJSON(w, http.StatusOK, map[string]string{"url": loader.RawFileURL(repoURL, filePath)})
}

func (h *Handler) handleRemote(w http.ResponseWriter, r *http.Request) {
	var req remoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("request body must be a JSON object with repo_url and file_path"))
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		writeError(w, apperrors.InvalidInput("repo_url is required"))
		return
	}

	ds, err := h.remote.Load(r.Context(), req.RepoURL, req.FilePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remoteResponse{URL: loader.RawFileURL(req.RepoURL, req.FilePath), Dataset: ds})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload exceeds size limit", Code: apperrors.CodeInvalidInput})
			return
		}
		writeError(w, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperrors.InvalidInput("failed to read uploaded file"))
		return
	}

	ds, err := h.uploads.Load(header.Filename, content)
	if err != nil {
		writeError(w, err)
		return
	}
	// API uploads belong to no session; keep them only if a dashboard session holds the same content
	h.uploads.Discard(h.uploads.Key(header.Filename, content))
	writeJSON(w, http.StatusOK, uploadResponse{Source: ds.Source, Dataset: ds})
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("request body must be a JSON object with dataset, x and y"))
		return
	}

	points, ok := loader.PrepareChart(req.Dataset, dataset.AxisSelection{X: req.X, Y: req.Y})
	if points == nil {
		points = []dataset.ChartPoint{}
	}
	writeJSON(w, http.StatusOK, chartResponse{Rendered: ok, Points: points})
}

// StatusFor maps an application error to the HTTP status reported for it
func StatusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeRemoteFetch:
		return http.StatusBadGateway
	case apperrors.CodeParse:
		return http.StatusUnprocessableEntity
	case apperrors.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Code: apperrors.GetCode(err)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.StatusCode = appErr.StatusCode
		resp.Extension = appErr.Extension
	}
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[api] ERROR - %v", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] Failed to encode response: %v", err)
	}
}
