package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tracker/internal/service"
)

type MockProgressTracker struct {
	mock.Mock
}

func (m *MockProgressTracker) GetFileProgress(fileName string) *service.ProgressInfo {
	args := m.Called(fileName)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.ProgressInfo)
}

func (m *MockProgressTracker) GetAllFileProgress() []*service.ProgressInfo {
	args := m.Called()
	return args.Get(0).([]*service.ProgressInfo)
}

func TestGetFileProgress(t *testing.T) {
	tracker := new(MockProgressTracker)

	progress := &service.ProgressInfo{
		FileName:     "test.csv",
		TotalRecords: 100,
		Processed:    50,
		Status:       service.StatusProcessing,
	}
	tracker.On("GetFileProgress", "test.csv").Return(progress)
	tracker.On("GetFileProgress", "nonexistent.csv").Return(nil)

	h := NewProgressHandler(tracker)
	router := mux.NewRouter()
	router.HandleFunc("/progress/file", h.GetFileProgress)

	// Existing file
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/progress/file?fileName=test.csv", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response service.ProgressInfo
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "test.csv", response.FileName)
	assert.Equal(t, 100, response.TotalRecords)
	assert.Equal(t, 50, response.Processed)
	assert.Equal(t, service.StatusProcessing, response.Status)

	// Unknown file
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/progress/file?fileName=nonexistent.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing parameter
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/progress/file", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tracker.AssertExpectations(t)
}

func TestGetAllProgress(t *testing.T) {
	tracker := new(MockProgressTracker)
	tracker.On("GetAllFileProgress").Return([]*service.ProgressInfo{
		{FileName: "file1.csv", TotalRecords: 100, Processed: 75, Status: service.StatusProcessing},
		{FileName: "file2.csv", TotalRecords: 200, Processed: 200, Status: service.StatusCompleted},
	})

	h := NewProgressHandler(tracker)
	w := httptest.NewRecorder()
	h.GetAllProgress(w, httptest.NewRequest("GET", "/progress", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response []*service.ProgressInfo
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response, 2)
	assert.Equal(t, "file1.csv", response[0].FileName)
	assert.Equal(t, service.StatusCompleted, response[1].Status)

	tracker.AssertExpectations(t)
}
