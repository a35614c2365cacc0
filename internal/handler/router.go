package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint and wraps the router in CORS handling.
func NewRouter(students *StudentHandler, reports *ReportHandler, uploads *UploadHandler, progress *ProgressHandler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/students", students.ListStudents).Methods("GET")
	r.HandleFunc("/students", students.AddStudent).Methods("POST")
	r.HandleFunc("/students/{roll}", students.GetStudent).Methods("GET")
	r.HandleFunc("/students/{roll}", students.RemoveStudent).Methods("DELETE")
	r.HandleFunc("/students/{roll}/attendance/{date}", students.MarkAttendance).Methods("PUT")
	r.HandleFunc("/students/{roll}/marks", students.AddMark).Methods("POST")

	r.HandleFunc("/report", reports.GetReport).Methods("GET")
	r.HandleFunc("/export", reports.ExportCSV).Methods("GET")

	r.HandleFunc("/upload", uploads.UploadCSV).Methods("POST")
	r.HandleFunc("/progress", progress.GetAllProgress).Methods("GET")
	r.HandleFunc("/progress/file", progress.GetFileProgress).Methods("GET")

	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
}
