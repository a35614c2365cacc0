package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk and display format of attendance dates.
const DateLayout = "2006-01-02"

// storedDateLayout also accepts the unpadded month and day found in older
// data files.
const storedDateLayout = "2006-1-2"

// Status is the attendance state recorded for one day.
type Status string

const (
	StatusPresent Status = "P"
	StatusAbsent  Status = "A"
)

// ParseStatus accepts P/A or present/absent in any case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P", "PRESENT":
		return StatusPresent, nil
	case "A", "ABSENT":
		return StatusAbsent, nil
	}
	return "", NewError("ParseStatus", ErrInvalidInput, fmt.Sprintf("status %q must be P or A", s))
}

// Date is a calendar day in canonical YYYY-MM-DD form.
type Date string

// ParseDate validates s as a real calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", WrapError("ParseDate", ErrInvalidDate, fmt.Sprintf("date %q must be YYYY-MM-DD", s), err)
	}
	return DateOf(t), nil
}

// parseStoredDate reads an attendance key from persisted data.
func parseStoredDate(s string) (Date, error) {
	t, err := time.Parse(storedDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Mark is one exam score. The 0-100 range is expected but not enforced.
type Mark float64

// NewMark rejects values that cannot be persisted.
func NewMark(v float64) (Mark, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewError("NewMark", ErrInvalidInput, "mark must be a finite number")
	}
	return Mark(v), nil
}

// String formats the mark with at least one decimal place, e.g. 80.0.
func (m Mark) String() string {
	s := strconv.FormatFloat(float64(m), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseMark parses a decimal score.
func ParseMark(s string) (Mark, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, WrapError("ParseMark", ErrInvalidInput, fmt.Sprintf("mark %q is not a number", s), err)
	}
	return NewMark(v)
}

// StudentRecord is everything tracked for one roll number.
type StudentRecord struct {
	Roll       string          `json:"-"`
	Name       string          `json:"name"`
	Attendance map[Date]Status `json:"attendance"`
	Marks      []Mark          `json:"marks"`
}

// NewStudentRecord builds an empty record after validating roll and name.
func NewStudentRecord(roll, name string) (*StudentRecord, error) {
	roll = strings.TrimSpace(roll)
	name = strings.TrimSpace(name)
	if roll == "" {
		return nil, NewError("NewStudentRecord", ErrInvalidInput, "roll number cannot be empty")
	}
	if name == "" {
		return nil, NewError("NewStudentRecord", ErrInvalidInput, "name cannot be empty")
	}
	return &StudentRecord{
		Roll:       roll,
		Name:       name,
		Attendance: map[Date]Status{},
		Marks:      []Mark{},
	}, nil
}

// Clone returns a deep copy.
func (r *StudentRecord) Clone() *StudentRecord {
	c := &StudentRecord{
		Roll:       r.Roll,
		Name:       r.Name,
		Attendance: make(map[Date]Status, len(r.Attendance)),
		Marks:      make([]Mark, len(r.Marks)),
	}
	for d, s := range r.Attendance {
		c.Attendance[d] = s
	}
	copy(c.Marks, r.Marks)
	return c
}

// Dates returns the recorded attendance days in ascending order.
func (r *StudentRecord) Dates() []Date {
	dates := make([]Date, 0, len(r.Attendance))
	for d := range r.Attendance {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Database maps roll numbers to their records.
type Database map[string]*StudentRecord

// Clone returns a deep copy of every record.
func (db Database) Clone() Database {
	c := make(Database, len(db))
	for roll, r := range db {
		c[roll] = r.Clone()
	}
	return c
}

// Rolls returns all roll numbers in ascending order.
func (db Database) Rolls() []string {
	rolls := make([]string, 0, len(db))
	for roll := range db {
		rolls = append(rolls, roll)
	}
	sort.Strings(rolls)
	return rolls
}

// Normalize checks decoded data and fills in what the wire format leaves
// implicit: the roll on each record and empty collections in place of null.
func (db Database) Normalize() error {
	for roll, r := range db {
		if strings.TrimSpace(roll) == "" {
			return NewError("Normalize", ErrCorruptData, "empty roll number")
		}
		if r == nil {
			return NewError("Normalize", ErrCorruptData, fmt.Sprintf("roll %s has no record", roll))
		}
		if strings.TrimSpace(r.Name) == "" {
			return NewError("Normalize", ErrCorruptData, fmt.Sprintf("roll %s has no name", roll))
		}
		r.Roll = roll
		if r.Attendance == nil {
			r.Attendance = map[Date]Status{}
		}
		if r.Marks == nil {
			r.Marks = []Mark{}
		}
		attendance, err := canonicalAttendance(roll, r.Attendance)
		if err != nil {
			return err
		}
		r.Attendance = attendance
	}
	return nil
}

// canonicalAttendance re-keys stored dates to YYYY-MM-DD. When several keys
// name the same day, the canonical spelling wins, then the last key in
// sorted order.
func canonicalAttendance(roll string, in map[Date]Status) (map[Date]Status, error) {
	keys := make([]Date, 0, len(in))
	for d := range in {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make(map[Date]Status, len(in))
	exact := make(map[Date]bool, len(in))
	for _, d := range keys {
		s := in[d]
		if s != StatusPresent && s != StatusAbsent {
			return nil, NewError("Normalize", ErrCorruptData, fmt.Sprintf("roll %s has status %q on %s", roll, s, d))
		}
		day, err := parseStoredDate(string(d))
		if err != nil {
			return nil, NewError("Normalize", ErrCorruptData, fmt.Sprintf("roll %s has bad date %q", roll, d))
		}
		if exact[day] {
			continue
		}
		out[day] = s
		exact[day] = day == d
	}
	return out, nil
}
