package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is one row of the kv_slots table
type slotRecord struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName specifies the table name for slotRecord
func (slotRecord) TableName() string {
	return "kv_slots"
}

// SQLiteSlot implements Slot as a row in a SQLite table
type SQLiteSlot struct {
	db   *gorm.DB
	name string
}

// NewSQLiteSlot opens (or creates) the database at dbPath and binds the slot name
func NewSQLiteSlot(dbPath, name string) (*SQLiteSlot, error) {
	if name == "" {
		return nil, errors.New("slot name is required")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteSlot{db: db, name: name}, nil
}

// Read returns the stored payload or ErrSlotEmpty
func (s *SQLiteSlot) Read() ([]byte, error) {
	var record slotRecord
	err := s.db.Where("name = ?", s.name).Limit(1).Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.Name == "" {
		return nil, ErrSlotEmpty
	}
	return []byte(record.Value), nil
}

// Write upserts the payload
func (s *SQLiteSlot) Write(data []byte) error {
	record := slotRecord{
		Name:      s.name,
		Value:     string(data),
		UpdatedAt: time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

// UpdatedAt returns when the slot was last written
func (s *SQLiteSlot) UpdatedAt() (time.Time, error) {
	var record slotRecord
	err := s.db.Where("name = ?", s.name).Limit(1).Find(&record).Error
	if err != nil {
		return time.Time{}, err
	}
	if record.Name == "" {
		return time.Time{}, ErrSlotEmpty
	}
	return record.UpdatedAt, nil
}

// Close closes the database connection
func (s *SQLiteSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
