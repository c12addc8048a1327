package main

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// inMemoryDSN keeps the journal in process memory; nothing touches disk.
const inMemoryDSN = ":memory:"

// Journal keeps a bounded history of poll cycles. It is never read back into
// the session state.
type Journal struct {
	db   *gorm.DB
	keep int
}

// NewJournal opens the journal at dbPath, or in memory when dbPath is empty.
// keep bounds the number of rows retained; zero disables pruning.
func NewJournal(dbPath string, keep int) (*Journal, error) {
	dsn := dbPath
	if dsn == "" {
		dsn = inMemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate tables
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	return &Journal{db: db, keep: keep}, nil
}

// RecordCycle stores a cycle and prunes the oldest rows beyond the limit.
func (j *Journal) RecordCycle(cycle PollCycle) error {
	if err := j.db.Create(&cycle).Error; err != nil {
		return fmt.Errorf("failed to insert poll cycle: %w", err)
	}

	if j.keep > 0 {
		if _, err := j.Prune(j.keep); err != nil {
			return err
		}
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (j *Journal) RecentCycles(limit int) ([]PollCycle, error) {
	var cycles []PollCycle
	result := j.db.Order("id DESC").Limit(limit).Find(&cycles)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query poll cycles: %w", result.Error)
	}
	return cycles, nil
}

// Prune deletes everything but the newest keep cycles.
func (j *Journal) Prune(keep int) (int64, error) {
	result := j.db.Exec(`
		DELETE FROM poll_cycles
		WHERE id NOT IN (SELECT id FROM poll_cycles ORDER BY id DESC LIMIT ?)`, keep)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune poll cycles: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// JournalStats summarizes the retained history.
type JournalStats struct {
	Total       int64      `json:"total"`
	Failures    int64      `json:"failures"`
	LastSuccess *PollCycle `json:"lastSuccess,omitempty"`
}

func (j *Journal) Stats() (JournalStats, error) {
	var stats JournalStats

	if err := j.db.Model(&PollCycle{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("failed to count poll cycles: %w", err)
	}
	if err := j.db.Model(&PollCycle{}).Where("success = ?", false).Count(&stats.Failures).Error; err != nil {
		return stats, fmt.Errorf("failed to count failed cycles: %w", err)
	}

	var last PollCycle
	result := j.db.Where("success = ?", true).Order("id DESC").Limit(1).Find(&last)
	if result.Error != nil {
		return stats, fmt.Errorf("failed to query last success: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		stats.LastSuccess = &last
	}

	return stats, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
