// Package score persists game scores as a durable key/value map backed by
// an embedded sqlite database. Writes are synchronous: when Set returns,
// the value has been committed, so a crash right after a match never
// loses awarded points.
package score

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/kankarej/pkg/logger"
	"github.com/shashiranjanraj/kankarej/pkg/metrics"
)

// Well-known keys. Both values are monotone: they only ever grow.
const (
	KeyHighScore  = "high_score"
	KeyTotalScore = "total_score"
)

type record struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value int    `gorm:"not null"`
}

func (record) TableName() string { return "scores" }

// Store is the sqlite-backed score map.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens (creating if needed) the score database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // pkg/logger does the talking
	})
	if err != nil {
		return nil, fmt.Errorf("score: open %q: %w", path, err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("score: migrate: %w", err)
	}
	return &Store{db: db, log: logger.For("score")}, nil
}

// Get returns the stored value for key, or def when absent.
func (s *Store) Get(key string, def int) int {
	var rec record
	err := s.db.First(&rec, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("read failed", "key", key, "err", err)
		}
		return def
	}
	return rec.Value
}

// Set writes key=value and returns once the row is durable.
func (s *Store) Set(key string, value int) error {
	if err := s.db.Save(&record{Key: key, Value: value}).Error; err != nil {
		return fmt.Errorf("score: set %s: %w", key, err)
	}
	metrics.ScoreWrites.Inc()
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Memory is an in-process score map for tests and throwaway sessions.
type Memory struct {
	mu sync.Mutex
	m  map[string]int
}

func NewMemory() *Memory {
	return &Memory{m: map[string]int{}}
}

func (s *Memory) Get(key string, def int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok {
		return v
	}
	return def
}

func (s *Memory) Set(key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
