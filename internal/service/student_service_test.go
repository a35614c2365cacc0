package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracker/internal/database"
	"tracker/internal/model"
)

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Load() (model.Database, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Database), args.Error(1)
}

func (m *MockPersister) Save(db model.Database) error {
	args := m.Called(db)
	return args.Error(0)
}

func (m *MockPersister) Close() error {
	return nil
}

func newMockService(t *testing.T, db model.Database) (*StudentService, *MockPersister) {
	t.Helper()
	p := new(MockPersister)
	p.On("Load").Return(db, nil)
	svc, err := NewStudentService(p, nil)
	require.NoError(t, err)
	return svc, p
}

func setupFileService(t *testing.T) (*StudentService, *database.FileStore) {
	t.Helper()
	store := database.NewFileStore(filepath.Join(t.TempDir(), "students.json"))
	svc, err := NewStudentService(store, nil)
	require.NoError(t, err)
	return svc, store
}

func TestNewStudentServiceCorruptData(t *testing.T) {
	p := new(MockPersister)
	p.On("Load").Return(nil, model.NewError("Load", model.ErrCorruptData, "decode students.json"))

	svc, err := NewStudentService(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.Count())
	p.AssertNotCalled(t, "Save", mock.Anything)
}

func TestNewStudentServiceLoadError(t *testing.T) {
	p := new(MockPersister)
	p.On("Load").Return(nil, errors.New("connection refused"))

	_, err := NewStudentService(p, nil)
	assert.Error(t, err)
}

func TestAddStudent(t *testing.T) {
	svc, store := setupFileService(t)

	r, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)
	assert.Equal(t, &model.StudentRecord{
		Roll:       "101",
		Name:       "Asha",
		Attendance: map[model.Date]model.Status{},
		Marks:      []model.Mark{},
	}, r)

	// Persisted immediately.
	db, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, svc.Snapshot(), db)
}

func TestAddStudentDuplicate(t *testing.T) {
	svc, p := newMockService(t, model.Database{})
	p.On("Save", mock.Anything).Return(nil)

	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)
	before := svc.Snapshot()

	_, err = svc.AddStudent("101", "Someone Else")
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.Equal(t, before, svc.Snapshot())
	p.AssertNumberOfCalls(t, "Save", 1)
}

func TestAddStudentValidation(t *testing.T) {
	svc, p := newMockService(t, model.Database{})

	_, err := svc.AddStudent("", "Asha")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = svc.AddStudent("101", "  ")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	assert.Equal(t, 0, svc.Count())
	p.AssertNotCalled(t, "Save", mock.Anything)
}

func TestRemoveStudent(t *testing.T) {
	svc, store := setupFileService(t)
	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)
	_, err = svc.AddStudent("102", "Ravi")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveStudent("101"))
	_, err = svc.Get("101")
	assert.ErrorIs(t, err, model.ErrNotFound)

	db, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"102"}, db.Rolls())

	assert.ErrorIs(t, svc.RemoveStudent("101"), model.ErrNotFound)
}

func TestMarkAttendance(t *testing.T) {
	svc, store := setupFileService(t)
	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAttendance("101", "2024-01-01", model.StatusPresent))
	require.NoError(t, svc.MarkAttendance("101", "2024-01-02", model.StatusAbsent))

	r, err := svc.Get("101")
	require.NoError(t, err)
	assert.Equal(t, map[model.Date]model.Status{"2024-01-01": "P", "2024-01-02": "A"}, r.Attendance)

	// Marking the same day again overwrites.
	require.NoError(t, svc.MarkAttendance("101", "2024-01-02", model.StatusPresent))
	require.NoError(t, svc.MarkAttendance("101", "2024-01-02", model.StatusPresent))
	r, err = svc.Get("101")
	require.NoError(t, err)
	assert.Len(t, r.Attendance, 2)
	assert.Equal(t, model.StatusPresent, r.Attendance["2024-01-02"])

	db, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, r.Attendance, db["101"].Attendance)
}

func TestMarkAttendanceUnknownRoll(t *testing.T) {
	svc, p := newMockService(t, model.Database{})

	err := svc.MarkAttendance("999", "2024-01-01", model.StatusPresent)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, svc.Count())
	p.AssertNotCalled(t, "Save", mock.Anything)
}

func TestMarkAttendanceAll(t *testing.T) {
	svc, p := newMockService(t, model.Database{})
	p.On("Save", mock.Anything).Return(nil)
	for _, roll := range []string{"101", "102", "103"} {
		_, err := svc.AddStudent(roll, "Student "+roll)
		require.NoError(t, err)
	}

	err := svc.MarkAttendanceAll("2024-01-05", map[string]model.Status{
		"101": model.StatusPresent,
		"103": model.StatusAbsent,
	})
	require.NoError(t, err)
	p.AssertNumberOfCalls(t, "Save", 4)

	db := svc.Snapshot()
	assert.Equal(t, model.StatusPresent, db["101"].Attendance["2024-01-05"])
	assert.Empty(t, db["102"].Attendance)
	assert.Equal(t, model.StatusAbsent, db["103"].Attendance["2024-01-05"])

	// Any unknown roll aborts the whole roll-call.
	err = svc.MarkAttendanceAll("2024-01-06", map[string]model.Status{
		"101": model.StatusPresent,
		"999": model.StatusPresent,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NotContains(t, svc.Snapshot()["101"].Attendance, model.Date("2024-01-06"))
	p.AssertNumberOfCalls(t, "Save", 4)
	// Rolls are matched after trimming, like every other operation.
	err = svc.MarkAttendanceAll("2024-01-07", map[string]model.Status{" 102 ": model.StatusAbsent})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbsent, svc.Snapshot()["102"].Attendance["2024-01-07"])
	p.AssertNumberOfCalls(t, "Save", 5)
}

func TestAddMark(t *testing.T) {
	svc, _ := setupFileService(t)
	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)

	for _, m := range []model.Mark{80, 90, 70} {
		require.NoError(t, svc.AddMark("101", m))
	}
	r, err := svc.Get("101")
	require.NoError(t, err)
	assert.Equal(t, []model.Mark{80, 90, 70}, r.Marks)

	assert.ErrorIs(t, svc.AddMark("999", 50), model.ErrNotFound)
}

func TestSaveFailureIsReported(t *testing.T) {
	svc, p := newMockService(t, model.Database{})
	p.On("Save", mock.Anything).Return(errors.New("disk full"))

	_, err := svc.AddStudent("101", "Asha")
	assert.ErrorIs(t, err, model.ErrPersist)
	assert.False(t, model.IsValidation(err))
}

func TestAddStudents(t *testing.T) {
	svc, p := newMockService(t, model.Database{})
	p.On("Save", mock.Anything).Return(nil)
	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)

	added, skipped, err := svc.AddStudents([]NewStudent{
		{Roll: "102", Name: "Ravi"},
		{Roll: "101", Name: "Duplicate"},
		{Roll: "103", Name: "Meera"},
		{Roll: "103", Name: "Repeated"},
		{Roll: "104", Name: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"102", "103"}, added)
	assert.Equal(t, []string{"101", "103", "104"}, skipped)
	p.AssertNumberOfCalls(t, "Save", 2)

	r, err := svc.Get("103")
	require.NoError(t, err)
	assert.Equal(t, "Meera", r.Name)

	// Nothing new means nothing saved.
	_, _, err = svc.AddStudents([]NewStudent{{Roll: "101", Name: "Asha"}})
	require.NoError(t, err)
	p.AssertNumberOfCalls(t, "Save", 2)
}

func TestReadsReturnCopies(t *testing.T) {
	svc, _ := setupFileService(t)
	_, err := svc.AddStudent("102", "Ravi")
	require.NoError(t, err)
	_, err = svc.AddStudent("101", "Asha")
	require.NoError(t, err)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "101", list[0].Roll)
	assert.Equal(t, "102", list[1].Roll)

	list[0].Marks = append(list[0].Marks, 100)
	snap := svc.Snapshot()
	snap["102"].Attendance["2024-01-01"] = model.StatusPresent

	r, err := svc.Get("101")
	require.NoError(t, err)
	assert.Empty(t, r.Marks)
	r, err = svc.Get("102")
	require.NoError(t, err)
	assert.Empty(t, r.Attendance)
}

func TestRoundTripThroughService(t *testing.T) {
	svc, store := setupFileService(t)
	_, err := svc.AddStudent("101", "Asha")
	require.NoError(t, err)
	require.NoError(t, svc.MarkAttendance("101", "2024-01-01", model.StatusPresent))
	require.NoError(t, svc.AddMark("101", 88.5))

	reopened, err := NewStudentService(store, nil)
	require.NoError(t, err)
	assert.Equal(t, svc.Snapshot(), reopened.Snapshot())
}
