// Package report turns the student database into summary rows, the
// console report and the CSV export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"tracker/internal/metrics"
	"tracker/internal/model"
)

// SummaryHeader is the fixed first row of the CSV export.
var SummaryHeader = []string{"roll", "name", "attendance_days", "present_days", "attendance_pct", "avg_marks"}

// Row is the aggregate view of one student.
type Row struct {
	Roll              string  `json:"roll"`
	Name              string  `json:"name"`
	AttendancePercent float64 `json:"attendance_pct"`
	DaysRecorded      int     `json:"attendance_days"`
	PresentDays       int     `json:"present_days"`
	AverageMarks      float64 `json:"avg_marks"`
	MarkCount         int     `json:"mark_count"`
}

// NewRow computes the summary for a single record.
func NewRow(r *model.StudentRecord) Row {
	return Row{
		Roll:              r.Roll,
		Name:              r.Name,
		AttendancePercent: metrics.Round1(metrics.AttendancePercent(r)),
		DaysRecorded:      metrics.DaysRecorded(r),
		PresentDays:       metrics.PresentDays(r),
		AverageMarks:      metrics.Round1(metrics.AverageMarks(r)),
		MarkCount:         len(r.Marks),
	}
}

// Build returns one row per student, ordered by roll number.
func Build(db model.Database) []Row {
	rows := make([]Row, 0, len(db))
	for _, roll := range db.Rolls() {
		rows = append(rows, NewRow(db[roll]))
	}
	return rows
}

func format1(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}

// ExportSummary writes the CSV summary of db to w.
func ExportSummary(w io.Writer, db model.Database) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for _, roll := range db.Rolls() {
		r := db[roll]
		record := []string{
			roll,
			r.Name,
			strconv.Itoa(metrics.DaysRecorded(r)),
			strconv.Itoa(metrics.PresentDays(r)),
			format1(metrics.AttendancePercent(r)),
			format1(metrics.AverageMarks(r)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes the CSV summary to path, replacing any existing file.
func ExportFile(path string, db model.Database) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := ExportSummary(f, db); err != nil {
		f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	return f.Close()
}

// WriteReport prints the attendance and performance report.
func WriteReport(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No students to report.")
		return
	}
	fmt.Fprintln(w, "\n---- Attendance & Performance Report ----")
	for _, row := range rows {
		fmt.Fprintf(w, "\nRoll: %s\n", row.Roll)
		fmt.Fprintf(w, "  Name: %s\n", row.Name)
		fmt.Fprintf(w, "  Attendance: %s%%  (Days recorded: %d)\n", format1(row.AttendancePercent), row.DaysRecorded)
		fmt.Fprintf(w, "  Average Marks: %s  (Entries: %d)\n", format1(row.AverageMarks), row.MarkCount)
	}
	fmt.Fprintln(w, "-----------------------------------------")
}

// WriteDetails prints every attendance entry and mark of one student.
func WriteDetails(w io.Writer, r *model.StudentRecord) {
	fmt.Fprintf(w, "\nDetails for %s (%s)\n", r.Name, r.Roll)
	fmt.Fprintln(w, "Attendance records:")
	if len(r.Attendance) == 0 {
		fmt.Fprintln(w, "  No attendance recorded.")
	}
	for _, d := range r.Dates() {
		fmt.Fprintf(w, "  %s: %s\n", d, r.Attendance[d])
	}
	fmt.Fprintln(w, "Marks:")
	if len(r.Marks) == 0 {
		fmt.Fprintln(w, "  No marks recorded.")
	}
	for i, m := range r.Marks {
		fmt.Fprintf(w, "  Exam %d: %s\n", i+1, m)
	}
}
