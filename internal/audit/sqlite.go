package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xmtplabs/convos-node-sdk/internal/appctx"
	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
)

// entryRow is the row persisted per join decision.
type entryRow struct {
	ID             uint `gorm:"primaryKey"`
	Outcome        string
	SenderInboxID  string `gorm:"index"`
	Detail         string
	RecordedAtUnix int64
}

// SQLiteLog is a durable audit log backed by GORM/SQLite, grounded on
// the same driver used for replay-protection persistence.
type SQLiteLog struct {
	db *gorm.DB
}

// OpenSQLiteLog opens (creating if absent) a SQLite database at path
// and migrates the audit table.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, fmt.Errorf("audit: migrate: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

// Close releases the underlying database connection.
func (l *SQLiteLog) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record persists an entry. Errors are logged rather than returned,
// matching the AuditLog interface, which must never fail a join
// decision because its audit trail could not be written.
func (l *SQLiteLog) Record(ctx context.Context, outcome middleware.Outcome, senderInboxID, detail string) {
	row := entryRow{
		Outcome:        outcome.String(),
		SenderInboxID:  senderInboxID,
		Detail:         detail,
		RecordedAtUnix: time.Now().Unix(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		appctx.GetLogger(ctx).Error("audit: record entry", "error", err)
	}
}

// Entries returns all recorded entries for senderInboxID, oldest first.
func (l *SQLiteLog) Entries(ctx context.Context, senderInboxID string) ([]Entry, error) {
	var rows []entryRow
	result := l.db.WithContext(ctx).Where("sender_inbox_id = ?", senderInboxID).Order("id asc").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("audit: list entries: %w", result.Error)
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{
			Outcome:       parseOutcome(r.Outcome),
			SenderInboxID: r.SenderInboxID,
			Detail:        r.Detail,
			RecordedAt:    time.Unix(r.RecordedAtUnix, 0),
		}
	}
	return out, nil
}

func parseOutcome(s string) middleware.Outcome {
	for _, o := range []middleware.Outcome{
		middleware.OutcomeNotJoinRequest,
		middleware.OutcomeBlockSender,
		middleware.OutcomeSendError,
		middleware.OutcomeInviteEvent,
	} {
		if o.String() == s {
			return o
		}
	}
	return middleware.OutcomeNotJoinRequest
}

var _ middleware.AuditLog = (*SQLiteLog)(nil)
