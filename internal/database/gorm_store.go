package database

import (
	"fmt"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type studentRow struct {
	Roll string `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (studentRow) TableName() string { return "students" }

type attendanceRow struct {
	Roll   string `gorm:"primaryKey"`
	Date   string `gorm:"primaryKey"`
	Status string `gorm:"size:1;not null"`
}

func (attendanceRow) TableName() string { return "attendance_entries" }

type markRow struct {
	ID    uint   `gorm:"primaryKey"`
	Roll  string `gorm:"index;not null"`
	Seq   int    `gorm:"not null"`
	Value float64
}

func (markRow) TableName() string { return "mark_entries" }

const batchSize = 500

// GormStore keeps the database in SQL tables. Every save rewrites all rows
// inside one transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the schema and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&studentRow{}, &attendanceRow{}, &markRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate the database: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Load() (model.Database, error) {
	var students []studentRow
	if err := g.db.Order("roll").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	var attendance []attendanceRow
	if err := g.db.Find(&attendance).Error; err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	var marks []markRow
	if err := g.db.Order("roll, seq").Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("load marks: %w", err)
	}

	db := make(model.Database, len(students))
	for _, s := range students {
		db[s.Roll] = &model.StudentRecord{
			Roll:       s.Roll,
			Name:       s.Name,
			Attendance: map[model.Date]model.Status{},
			Marks:      []model.Mark{},
		}
	}
	for _, a := range attendance {
		r, ok := db[a.Roll]
		if !ok {
			return nil, model.NewError("Load", model.ErrCorruptData, "attendance for unknown roll "+a.Roll)
		}
		r.Attendance[model.Date(a.Date)] = model.Status(a.Status)
	}
	for _, m := range marks {
		r, ok := db[m.Roll]
		if !ok {
			return nil, model.NewError("Load", model.ErrCorruptData, "mark for unknown roll "+m.Roll)
		}
		r.Marks = append(r.Marks, model.Mark(m.Value))
	}

	if err := db.Normalize(); err != nil {
		return nil, err
	}
	return db, nil
}

func (g *GormStore) Save(db model.Database) error {
	var (
		students   []studentRow
		attendance []attendanceRow
		marks      []markRow
	)
	for _, roll := range db.Rolls() {
		r := db[roll]
		students = append(students, studentRow{Roll: roll, Name: r.Name})
		for _, d := range r.Dates() {
			attendance = append(attendance, attendanceRow{Roll: roll, Date: string(d), Status: string(r.Attendance[d])})
		}
		for i, m := range r.Marks {
			marks = append(marks, markRow{Roll: roll, Seq: i, Value: float64(m)})
		}
	}

	return g.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, table := range []interface{}{&markRow{}, &attendanceRow{}, &studentRow{}} {
			if err := all.Delete(table).Error; err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}
		if len(students) > 0 {
			if err := tx.CreateInBatches(&students, batchSize).Error; err != nil {
				return fmt.Errorf("insert students: %w", err)
			}
		}
		if len(attendance) > 0 {
			if err := tx.CreateInBatches(&attendance, batchSize).Error; err != nil {
				return fmt.Errorf("insert attendance: %w", err)
			}
		}
		if len(marks) > 0 {
			if err := tx.CreateInBatches(&marks, batchSize).Error; err != nil {
				return fmt.Errorf("insert marks: %w", err)
			}
		}
		return nil
	})
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
