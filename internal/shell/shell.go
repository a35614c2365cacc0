// Package shell implements the numbered console menu over the record store.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tracker/internal/model"
	"tracker/internal/report"
)

// Store is the record store as used by the menu.
type Store interface {
	AddStudent(roll, name string) (*model.StudentRecord, error)
	RemoveStudent(roll string) error
	MarkAttendanceAll(date model.Date, statuses map[string]model.Status) error
	AddMark(roll string, mark model.Mark) error
	Get(roll string) (*model.StudentRecord, error)
	List() []*model.StudentRecord
	Snapshot() model.Database
}

type Shell struct {
	store      Store
	in         *bufio.Scanner
	out        io.Writer
	exportFile string
	now        func() time.Time
}

// New creates a shell reading commands from in and writing to out.
// exportFile is offered as the default CSV target.
func New(store Store, in io.Reader, out io.Writer, exportFile string) *Shell {
	return &Shell{
		store:      store,
		in:         bufio.NewScanner(in),
		out:        out,
		exportFile: exportFile,
		now:        time.Now,
	}
}

const menu = `
--- Student Tracker ---
1. Add student
2. List students
3. Mark attendance
4. Add marks
5. View report (all)
6. View single student details
7. Remove student
8. Export summary CSV
9. Exit`

// Run loops until the user exits or input ends. It returns an error only
// when a change could not be saved.
func (s *Shell) Run() error {
	for {
		fmt.Fprintln(s.out, menu)
		choice, err := s.readLine("Enter choice: ")
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case "1":
			err = s.addStudent()
		case "2":
			s.listStudents()
		case "3":
			err = s.markAttendance()
		case "4":
			err = s.addMarks()
		case "5":
			report.WriteReport(s.out, report.Build(s.store.Snapshot()))
		case "6":
			err = s.studentDetails()
		case "7":
			err = s.removeStudent()
		case "8":
			err = s.exportCSV()
		case "9":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}

		if err != nil {
			return s.finish(err)
		}
	}
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out)
		return nil
	}
	return err
}

func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) readNonEmpty(prompt string) (string, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil || line != "" {
			return line, err
		}
	}
}

// fail prints validation and lookup errors and passes anything else on.
func (s *Shell) fail(err error, message string) error {
	if errors.Is(err, model.ErrPersist) {
		return err
	}
	fmt.Fprintln(s.out, message)
	return nil
}

func (s *Shell) addStudent() error {
	roll, err := s.readNonEmpty("Enter roll number (unique): ")
	if err != nil {
		return err
	}
	if _, err := s.store.Get(roll); err == nil {
		fmt.Fprintln(s.out, "That roll number already exists.")
		return nil
	}
	name, err := s.readNonEmpty("Enter student name: ")
	if err != nil {
		return err
	}
	r, err := s.store.AddStudent(roll, name)
	if err != nil {
		return s.fail(err, err.Error())
	}
	fmt.Fprintf(s.out, "Student %s (%s) added.\n", r.Name, r.Roll)
	return nil
}

func (s *Shell) listStudents() {
	students := s.store.List()
	if len(students) == 0 {
		fmt.Fprintln(s.out, "No students in database.")
		return
	}
	fmt.Fprintln(s.out, "\nStudents:")
	for _, r := range students {
		fmt.Fprintf(s.out, "  %s - %s\n", r.Roll, r.Name)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) markAttendance() error {
	students := s.store.List()
	if len(students) == 0 {
		fmt.Fprintln(s.out, "No students available. Add students first.")
		return nil
	}

	line, err := s.readLine("Enter date (YYYY-MM-DD) [default: today]: ")
	if err != nil {
		return err
	}
	date := model.DateOf(s.now())
	if line != "" {
		if date, err = model.ParseDate(line); err != nil {
			fmt.Fprintln(s.out, "Invalid date format. Use YYYY-MM-DD.")
			return nil
		}
	}

	fmt.Fprintln(s.out, "Mark attendance: P = present, A = absent, S = skip (leave unchanged)")
	statuses := make(map[string]model.Status, len(students))
	for _, r := range students {
		for {
			val, err := s.readLine(fmt.Sprintf("%s %s: (P/A/S) ", r.Roll, r.Name))
			if err != nil {
				return err
			}
			val = strings.ToUpper(val)
			if val == "S" {
				break
			}
			if val == "P" || val == "A" {
				statuses[r.Roll] = model.Status(val)
				break
			}
			fmt.Fprintln(s.out, "Please enter P, A, or S.")
		}
	}

	if err := s.store.MarkAttendanceAll(date, statuses); err != nil {
		return s.fail(err, err.Error())
	}
	fmt.Fprintf(s.out, "Attendance recorded for %s.\n", date)
	return nil
}

func (s *Shell) addMarks() error {
	if len(s.store.List()) == 0 {
		fmt.Fprintln(s.out, "No students available. Add students first.")
		return nil
	}
	roll, err := s.readNonEmpty("Enter roll number: ")
	if err != nil {
		return err
	}
	r, err := s.store.Get(roll)
	if err != nil {
		fmt.Fprintln(s.out, "Student not found.")
		return nil
	}
	line, err := s.readNonEmpty("Enter marks (0-100): ")
	if err != nil {
		return err
	}
	mark, err := model.ParseMark(line)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid number.")
		return nil
	}
	if err := s.store.AddMark(r.Roll, mark); err != nil {
		return s.fail(err, "Student not found.")
	}
	fmt.Fprintf(s.out, "Added %s for %s.\n", mark, r.Name)
	return nil
}

func (s *Shell) studentDetails() error {
	roll, err := s.readNonEmpty("Enter roll number: ")
	if err != nil {
		return err
	}
	r, err := s.store.Get(roll)
	if err != nil {
		fmt.Fprintln(s.out, "Student not found.")
		return nil
	}
	report.WriteDetails(s.out, r)
	fmt.Fprintln(s.out)
	return nil
}

func (s *Shell) removeStudent() error {
	roll, err := s.readNonEmpty("Enter roll number to remove: ")
	if err != nil {
		return err
	}
	r, err := s.store.Get(roll)
	if err != nil {
		fmt.Fprintln(s.out, "Not found.")
		return nil
	}
	confirm, err := s.readLine(fmt.Sprintf("Delete %s (%s)? (y/N): ", r.Name, r.Roll))
	if err != nil {
		return err
	}
	if strings.ToLower(confirm) != "y" {
		return nil
	}
	if err := s.store.RemoveStudent(r.Roll); err != nil {
		return s.fail(err, "Not found.")
	}
	fmt.Fprintln(s.out, "Deleted.")
	return nil
}

func (s *Shell) exportCSV() error {
	path, err := s.readLine(fmt.Sprintf("CSV filename to write (default %s): ", s.exportFile))
	if err != nil {
		return err
	}
	if path == "" {
		path = s.exportFile
	}
	if err := report.ExportFile(path, s.store.Snapshot()); err != nil {
		fmt.Fprintf(s.out, "Export failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(s.out, "Exported to %s\n", path)
	return nil
}
