// Package metrics computes per-student aggregates. Every function is pure
// and defined for empty records.
package metrics

import (
	"strconv"

	"tracker/internal/model"
)

// DaysRecorded is the number of distinct days with any status.
func DaysRecorded(r *model.StudentRecord) int {
	return len(r.Attendance)
}

// PresentDays counts days marked present.
func PresentDays(r *model.StudentRecord) int {
	n := 0
	for _, s := range r.Attendance {
		if s == model.StatusPresent {
			n++
		}
	}
	return n
}

// AttendancePercent returns present days over recorded days, scaled to 100.
// Absences count toward the denominator. Empty attendance yields 0.
func AttendancePercent(r *model.StudentRecord) float64 {
	total := DaysRecorded(r)
	if total == 0 {
		return 0
	}
	return 100 * float64(PresentDays(r)) / float64(total)
}

// AverageMarks returns the arithmetic mean of all marks, or 0 when none.
func AverageMarks(r *model.StudentRecord) float64 {
	if len(r.Marks) == 0 {
		return 0
	}
	var sum float64
	for _, m := range r.Marks {
		sum += float64(m)
	}
	return sum / float64(len(r.Marks))
}

// Round1 rounds x to one decimal place the same way it is printed with
// one decimal, so a rounded value and its formatted text always agree.
func Round1(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}
