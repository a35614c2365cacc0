package handler

import (
	"bytes"
	"net/http"

	"tracker/internal/model"
	"tracker/internal/report"
)

// Snapshotter gives read-only access to the whole database.
type Snapshotter interface {
	Snapshot() model.Database
}

type ReportHandler struct {
	students Snapshotter
}

func NewReportHandler(students Snapshotter) *ReportHandler {
	return &ReportHandler{students: students}
}

// GetReport returns the per-student summary rows.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.Build(h.students.Snapshot()))
}

// ExportCSV streams the CSV summary as a download.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.ExportSummary(&buf, h.students.Snapshot()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="students_export.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
