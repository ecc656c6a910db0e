package session

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one persisted key-value pair.
type Record struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName keeps the table name explicit.
func (Record) TableName() string {
	return "session_records"
}

// GORMStorage is a GORM implementation of Storage. The default deployment
// points it at a local SQLite file; a Postgres DSN works the same way.
type GORMStorage struct {
	db *gorm.DB
}

// NewGORMStorage creates a new GORMStorage and migrates its table.
func NewGORMStorage(db *gorm.DB) (*GORMStorage, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session storage: %w", err)
	}
	return &GORMStorage{db: db}, nil
}

// Get reads one key. A missing key is not an error.
func (s *GORMStorage) Get(key string) (string, bool, error) {
	var rec Record
	if err := s.db.First(&rec, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set writes one key, replacing any previous value.
func (s *GORMStorage) Set(key, value string) error {
	rec := Record{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

// Delete removes one key. Deleting an absent key is a no-op.
func (s *GORMStorage) Delete(key string) error {
	if err := s.db.Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}
