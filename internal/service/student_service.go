package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tracker/internal/database"
	"tracker/internal/model"
)

// StudentService owns the in-memory student database. Every successful
// mutation is followed by a full save through the persister; a failed
// validation changes nothing and saves nothing.
type StudentService struct {
	mu        sync.Mutex
	db        model.Database
	persister database.Persister
	logger    *slog.Logger
}

// NewStudentService loads the database. Corrupt stored data is logged and
// replaced by an empty database; other load errors are returned.
func NewStudentService(persister database.Persister, logger *slog.Logger) (*StudentService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := persister.Load()
	if errors.Is(err, model.ErrCorruptData) {
		logger.Warn("failed to read data file, starting with empty database", "error", err)
		db = model.Database{}
	} else if err != nil {
		return nil, err
	}

	logger.Debug("student database loaded", "students", len(db))
	return &StudentService{db: db, persister: persister, logger: logger}, nil
}

func (s *StudentService) save(op string) error {
	if err := s.persister.Save(s.db); err != nil {
		s.logger.Error("failed to save student database", "op", op, "error", err)
		return model.WrapError(op, model.ErrPersist, "save student database", err)
	}
	return nil
}

func notFound(op, roll string) error {
	return model.NewError(op, model.ErrNotFound, fmt.Sprintf("student %s not found", roll))
}

// AddStudent inserts a new record with no attendance and no marks.
func (s *StudentService) AddStudent(roll, name string) (*model.StudentRecord, error) {
	r, err := model.NewStudentRecord(roll, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.db[r.Roll]; exists {
		return nil, model.NewError("AddStudent", model.ErrAlreadyExists, fmt.Sprintf("roll number %s already exists", r.Roll))
	}
	s.db[r.Roll] = r
	if err := s.save("AddStudent"); err != nil {
		return nil, err
	}
	s.logger.Info("student added", "roll", r.Roll)
	return r.Clone(), nil
}

// NewStudent is one row of a bulk insert.
type NewStudent struct {
	Roll string
	Name string
}

// AddStudents inserts every valid entry whose roll is not yet taken and
// saves once. It returns the rolls added and the rolls skipped.
func (s *StudentService) AddStudents(entries []NewStudent) (added, skipped []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		r, verr := model.NewStudentRecord(e.Roll, e.Name)
		if verr != nil {
			skipped = append(skipped, strings.TrimSpace(e.Roll))
			continue
		}
		if _, exists := s.db[r.Roll]; exists {
			s.logger.Debug("skipping duplicate roll", "roll", r.Roll)
			skipped = append(skipped, r.Roll)
			continue
		}
		s.db[r.Roll] = r
		added = append(added, r.Roll)
	}

	if len(added) == 0 {
		return added, skipped, nil
	}
	if err := s.save("AddStudents"); err != nil {
		return nil, nil, err
	}
	s.logger.Info("students added", "added", len(added), "skipped", len(skipped))
	return added, skipped, nil
}

// RemoveStudent deletes a record and everything recorded for it.
func (s *StudentService) RemoveStudent(roll string) error {
	roll = strings.TrimSpace(roll)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.db[roll]; !exists {
		return notFound("RemoveStudent", roll)
	}
	delete(s.db, roll)
	if err := s.save("RemoveStudent"); err != nil {
		return err
	}
	s.logger.Info("student removed", "roll", roll)
	return nil
}

// MarkAttendance sets the status of one student for one day, replacing
// any earlier status for that day.
func (s *StudentService) MarkAttendance(roll string, date model.Date, status model.Status) error {
	roll = strings.TrimSpace(roll)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.db[roll]
	if !exists {
		return notFound("MarkAttendance", roll)
	}
	r.Attendance[date] = status
	return s.save("MarkAttendance")
}

// MarkAttendanceAll records one day of roll-call. Rolls missing from
// statuses are left unchanged. Nothing is applied if any roll is unknown.
func (s *StudentService) MarkAttendanceAll(date model.Date, statuses map[string]model.Status) error {
	trimmed := make(map[string]model.Status, len(statuses))
	for roll, status := range statuses {
		trimmed[strings.TrimSpace(roll)] = status
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for roll := range trimmed {
		if _, exists := s.db[roll]; !exists {
			return notFound("MarkAttendanceAll", roll)
		}
	}
	if len(trimmed) == 0 {
		return nil
	}
	for roll, status := range trimmed {
		s.db[roll].Attendance[date] = status
	}
	if err := s.save("MarkAttendanceAll"); err != nil {
		return err
	}
	s.logger.Info("attendance recorded", "date", date, "students", len(trimmed))
	return nil
}

// AddMark appends a score to a student's exam history.
func (s *StudentService) AddMark(roll string, mark model.Mark) error {
	roll = strings.TrimSpace(roll)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.db[roll]
	if !exists {
		return notFound("AddMark", roll)
	}
	r.Marks = append(r.Marks, mark)
	return s.save("AddMark")
}

// Get returns a copy of one record.
func (s *StudentService) Get(roll string) (*model.StudentRecord, error) {
	roll = strings.TrimSpace(roll)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.db[roll]
	if !exists {
		return nil, notFound("Get", roll)
	}
	return r.Clone(), nil
}

// List returns copies of all records ordered by roll.
func (s *StudentService) List() []*model.StudentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.StudentRecord, 0, len(s.db))
	for _, roll := range s.db.Rolls() {
		out = append(out, s.db[roll].Clone())
	}
	return out
}

// Snapshot returns a deep copy of the whole database.
func (s *StudentService) Snapshot() model.Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Clone()
}

func (s *StudentService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.db)
}
