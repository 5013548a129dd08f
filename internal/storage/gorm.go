package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type StoredRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// GormBackend stores records in the stored_records table through gorm.
type GormBackend struct {
	db *gorm.DB
}

var _ Backend = (*GormBackend)(nil)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return db, nil
}

func NewGormBackend(ctx context.Context, db *gorm.DB) (*GormBackend, error) {
	if err := db.WithContext(ctx).AutoMigrate(&StoredRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored_records: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var rec StoredRecord
	err := g.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return rec.Value, nil
}

func (g *GormBackend) Set(ctx context.Context, key string, value []byte) error {
	rec := StoredRecord{Key: key, Value: value}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (g *GormBackend) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&StoredRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
