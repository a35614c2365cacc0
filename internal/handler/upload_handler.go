package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// RosterImporter processes a saved roster file.
type RosterImporter interface {
	ProcessCSV(filePath string) error
}

type UploadHandler struct {
	importer  RosterImporter
	uploadDir string
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewUploadHandler(importer RosterImporter, uploadDir string, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{importer: importer, uploadDir: uploadDir, logger: logger}
}

// UploadCSV stores each uploaded roster and imports it in the background.
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "failed to create uploads directory")
		return
	}

	err := r.ParseMultipartForm(10 << 20) // 10MB
	if err != nil {
		writeErrorMessage(w, http.StatusRequestEntityTooLarge, "file too large or bad request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	fileNames := make([]string, 0, len(files))
	for _, header := range files {
		name := filepath.Base(header.Filename)
		savePath := filepath.Join(h.uploadDir, name)
		if err := saveUpload(header, savePath); err != nil {
			h.logger.Error("error saving upload", "file", name, "error", err)
			continue
		}
		fileNames = append(fileNames, name)

		h.wg.Add(1)
		go func(filePath string) {
			defer h.wg.Done()
			if err := h.importer.ProcessCSV(filePath); err != nil {
				h.logger.Error("error processing roster", "file", filePath, "error", err)
			}
		}(savePath)
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "files uploaded successfully and processing started",
		"files":   fileNames,
	})
}

// Wait blocks until every started import has finished.
func (h *UploadHandler) Wait() {
	h.wg.Wait()
}

func saveUpload(header *multipart.FileHeader, savePath string) error {
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	outFile, err := os.Create(savePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, file); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
