package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"tracker/internal/model"
)

// StudentStore is the record store as seen by the HTTP layer.
type StudentStore interface {
	AddStudent(roll, name string) (*model.StudentRecord, error)
	RemoveStudent(roll string) error
	MarkAttendance(roll string, date model.Date, status model.Status) error
	AddMark(roll string, mark model.Mark) error
	Get(roll string) (*model.StudentRecord, error)
	List() []*model.StudentRecord
	Snapshot() model.Database
}

type StudentHandler struct {
	students StudentStore
}

func NewStudentHandler(students StudentStore) *StudentHandler {
	return &StudentHandler{students: students}
}

type studentResponse struct {
	Roll       string                      `json:"roll"`
	Name       string                      `json:"name"`
	Attendance map[model.Date]model.Status `json:"attendance"`
	Marks      []model.Mark                `json:"marks"`
}

func toResponse(r *model.StudentRecord) studentResponse {
	return studentResponse{Roll: r.Roll, Name: r.Name, Attendance: r.Attendance, Marks: r.Marks}
}

// ListStudents returns students ordered by roll, optionally filtered by a
// name fragment and paginated.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	name := strings.ToLower(strings.TrimSpace(query.Get("name")))

	matched := make([]studentResponse, 0)
	for _, rec := range h.students.List() {
		if name != "" && !strings.Contains(strings.ToLower(rec.Name), name) {
			continue
		}
		matched = append(matched, toResponse(rec))
	}

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       matched[start:end],
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

type addStudentRequest struct {
	Roll string `json:"roll"`
	Name string `json:"name"`
}

func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var req addStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.students.AddStudent(req.Roll, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	rec, err := h.students.Get(mux.Vars(r)["roll"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *StudentHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.students.RemoveStudent(mux.Vars(r)["roll"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attendanceRequest struct {
	Status string `json:"status"`
}

func (h *StudentHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := model.ParseDate(vars["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.students.MarkAttendance(vars["roll"], date, status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markRequest struct {
	Value *float64 `json:"value"`
}

func (h *StudentHandler) AddMark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeErrorMessage(w, http.StatusBadRequest, "value must be a number")
		return
	}
	mark, err := model.NewMark(*req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.students.AddMark(mux.Vars(r)["roll"], mark); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
