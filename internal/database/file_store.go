package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"tracker/internal/model"
)

// FileStore keeps the database as one indented JSON document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load reads the file. A missing file is an empty database; an unreadable
// or malformed one is reported as corrupt.
func (f *FileStore) Load() (model.Database, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Database{}, nil
	}
	if err != nil {
		return nil, model.WrapError("Load", model.ErrCorruptData, "read "+f.path, err)
	}

	var db model.Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, model.WrapError("Load", model.ErrCorruptData, "decode "+f.path, err)
	}
	if db == nil {
		db = model.Database{}
	}
	if err := db.Normalize(); err != nil {
		return nil, err
	}
	return db, nil
}

// Save overwrites the file in place.
func (f *FileStore) Save(db model.Database) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
