// Package postgres implements the message store on PostgreSQL via GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kittors/simple-message-service/internal/message"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// messageRow is the GORM model for the messages table. gorm.DeletedAt gives
// the soft-delete semantics the service relies on: every query implicitly
// filters `deleted_at IS NULL`, and Delete sets the timestamp instead of
// removing the row.
type messageRow struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	ClientKey string         `gorm:"column:client_key;size:255;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (messageRow) TableName() string { return "messages" }

func (r messageRow) toEntity() message.Message {
	m := message.Message{
		ID:        r.ID,
		ClientKey: r.ClientKey,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		m.DeletedAt = &t
	}
	return m
}

// Store is the Postgres-backed message store.
type Store struct {
	db     *gorm.DB
	logger logpkg.Logger
}

// Open connects to Postgres, verifies connectivity, and migrates the
// messages table.
func Open(dsn string, logger logpkg.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	if logger == nil {
		logger = logpkg.NewLogger().WithComponent("store")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: resolve sql db handle: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if err := db.AutoMigrate(&messageRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres: migrate messages table: %w", err)
	}
	logger.Info("messages table ready")
	return &Store{db: db, logger: logger}, nil
}

// Append inserts a message and returns it with the assigned id/createdAt.
func (s *Store) Append(ctx context.Context, key, content string) (message.Message, error) {
	row := messageRow{ClientKey: key, Content: content}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return message.Message{}, fmt.Errorf("postgres: append: %w", err)
	}
	s.logger.Debug("message saved", logpkg.Str("key", key), logpkg.Uint64("id", row.ID))
	return row.toEntity(), nil
}

// History returns active messages for key, newest first. The id tiebreak
// keeps pages stable when rows share a createdAt timestamp.
func (s *Store) History(ctx context.Context, key string, page, limit int) ([]message.Message, error) {
	if page < 1 {
		page = 1
	}
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("client_key = ?", key).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: history: %w", err)
	}
	out := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// SoftDelete marks matching active key-owned rows deleted. GORM's implicit
// `deleted_at IS NULL` clause makes re-deletes count zero rather than error.
func (s *Store) SoftDelete(ctx context.Context, key string, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("client_key = ? AND id IN ?", key, ids).
		Delete(&messageRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("postgres: soft delete: %w", res.Error)
	}
	s.logger.Debug("messages soft-deleted",
		logpkg.Str("key", key), logpkg.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}

// Ping reports store reachability.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
