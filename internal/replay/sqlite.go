package replay

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
)

// usedPayload is the row persisted per consumed invite payload hash.
type usedPayload struct {
	PayloadHashHex string `gorm:"primaryKey"`
	ConsumedAtUnix int64
}

// SQLiteStore is a durable replay store backed by GORM/SQLite,
// surviving process restarts, using the same driver as the audit
// package's SQLiteLog.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if absent) a SQLite database at path
// and migrates the replay-protection table.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("replay: open database: %w", err)
	}
	if err := db.AutoMigrate(&usedPayload{}); err != nil {
		return nil, fmt.Errorf("replay: migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MarkUsed reports whether payloadHash was already marked used, and
// marks it used as a side effect if not. The insert and the check are
// one atomic statement: a primary-key conflict is treated as "already
// used" rather than raced against a prior First.
func (s *SQLiteStore) MarkUsed(ctx context.Context, payloadHash []byte) (bool, error) {
	hashHex := hex.EncodeToString(payloadHash)

	row := usedPayload{PayloadHashHex: hashHex, ConsumedAtUnix: time.Now().Unix()}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("replay: mark used: %w", result.Error)
	}
	return result.RowsAffected == 0, nil
}

var _ middleware.ReplayStore = (*SQLiteStore)(nil)
