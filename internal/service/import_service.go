package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Import states.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// ProgressInfo describes one roster import.
type ProgressInfo struct {
	JobID        string
	FileName     string
	TotalRecords int
	Processed    int
	Added        int
	Skipped      int
	Status       string // "processing", "completed", "error"
	Error        string
	StartTime    time.Time
	EndTime      time.Time
}

// RosterStore is the part of StudentService an import needs.
type RosterStore interface {
	AddStudents(entries []NewStudent) (added, skipped []string, err error)
}

// ImportService adds students from roster CSV files (roll,name) and keeps
// the progress of every import by file name.
type ImportService struct {
	students  RosterStore
	logger    *slog.Logger
	batchSize int

	fileProgressMap  map[string]*ProgressInfo
	fileProgressLock sync.RWMutex
}

func NewImportService(students RosterStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		students:        students,
		logger:          logger,
		batchSize:       100,
		fileProgressMap: make(map[string]*ProgressInfo),
	}
}

func (s *ImportService) startProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	progress := &ProgressInfo{
		JobID:     uuid.NewString(),
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: time.Now(),
	}
	s.fileProgressMap[fileName] = progress
	return progress
}

func (s *ImportService) updateProgress(progress *ProgressInfo, fn func(p *ProgressInfo)) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()
	fn(progress)
}

func (s *ImportService) updateProgressError(progress *ProgressInfo, err error) error {
	s.updateProgress(progress, func(p *ProgressInfo) {
		p.Status = StatusError
		p.Error = err.Error()
		p.EndTime = time.Now()
	})
	s.logger.Error("roster import failed", "file", progress.FileName, "job", progress.JobID, "error", err)
	return err
}

// GetFileProgress returns a copy of the latest import of fileName, or nil.
func (s *ImportService) GetFileProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		copyProgress := *progress
		return &copyProgress
	}
	return nil
}

// GetAllFileProgress returns copies of all imports ordered by file name.
func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		copyProgress := *progress
		result = append(result, &copyProgress)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FileName < result[j].FileName })
	return result
}

// ProcessCSV imports the roster stored at filePath.
func (s *ImportService) ProcessCSV(filePath string) error {
	fileName := filepath.Base(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		progress := s.startProgress(fileName)
		return s.updateProgressError(progress, fmt.Errorf("open roster: %w", err))
	}
	defer file.Close()

	return s.ImportRoster(fileName, file)
}

// ImportRoster reads roll,name rows from r. A leading header row is
// skipped. Rows without both fields are counted as skipped, as are rolls
// that already exist.
func (s *ImportService) ImportRoster(fileName string, r io.Reader) error {
	progress := s.startProgress(fileName)
	startTime := progress.StartTime

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return s.updateProgressError(progress, fmt.Errorf("read roster: %w", err))
	}
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}
	s.updateProgress(progress, func(p *ProgressInfo) { p.TotalRecords = len(records) })

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		var batch []NewStudent
		invalid := 0
		for _, record := range records[start:end] {
			if len(record) < 2 || strings.TrimSpace(record[0]) == "" || strings.TrimSpace(record[1]) == "" {
				s.logger.Warn("skipping incomplete roster row", "file", fileName, "row", record)
				invalid++
				continue
			}
			batch = append(batch, NewStudent{Roll: record[0], Name: record[1]})
		}

		added, skipped, err := s.students.AddStudents(batch)
		if err != nil {
			return s.updateProgressError(progress, err)
		}
		s.updateProgress(progress, func(p *ProgressInfo) {
			p.Processed += end - start
			p.Added += len(added)
			p.Skipped += len(skipped) + invalid
		})
	}

	var final ProgressInfo
	s.updateProgress(progress, func(p *ProgressInfo) {
		p.Status = StatusCompleted
		p.EndTime = time.Now()
		final = *p
	})
	s.logger.Info("roster import completed",
		"file", fileName,
		"job", final.JobID,
		"added", final.Added,
		"skipped", final.Skipped,
		"duration", time.Since(startTime),
	)
	return nil
}

func isHeader(record []string) bool {
	return len(record) >= 2 &&
		strings.EqualFold(strings.TrimSpace(record[0]), "roll") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "name")
}
