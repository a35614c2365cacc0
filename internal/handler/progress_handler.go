package handler

import (
	"net/http"
	"path/filepath"

	"tracker/internal/service"
)

// ProgressTracker reports roster import progress.
type ProgressTracker interface {
	GetFileProgress(fileName string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
}

type ProgressHandler struct {
	progress ProgressTracker
}

func NewProgressHandler(progress ProgressTracker) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GetFileProgress returns the progress for a specific file
func (h *ProgressHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		writeErrorMessage(w, http.StatusBadRequest, "fileName parameter is required")
		return
	}

	progress := h.progress.GetFileProgress(filepath.Base(fileName))
	if progress == nil {
		writeErrorMessage(w, http.StatusNotFound, "file not found or not being processed")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// GetAllProgress returns the progress for all imported files
func (h *ProgressHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.progress.GetAllFileProgress())
}
