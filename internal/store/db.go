package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AppendExchange stores a user turn and the assistant reply to it, creating the
// conversation on first use.
func (d *Database) AppendExchange(ctx context.Context, conversationID string, user, assistant Message) error {
	if d == nil {
		return errors.New("database is nil")
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return errors.New("conversation id is required")
	}
	user.ConversationID = conversationID
	user.Role = RoleUser
	assistant.ConversationID = conversationID
	assistant.Role = RoleAssistant

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := &Conversation{ID: conversationID, MessageCount: 2}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"message_count": gorm.Expr("message_count + ?", 2),
				"updated_at":    time.Now(),
			}),
		}).Create(conv).Error
		if err != nil {
			return fmt.Errorf("upsert conversation: %w", err)
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("save user message: %w", err)
		}
		if err := tx.Create(&assistant).Error; err != nil {
			return fmt.Errorf("save assistant message: %w", err)
		}
		return nil
	})
}

// RecentMessages returns up to limit of the latest turns of a conversation in
// chronological order.
func (d *Database) RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	if limit <= 0 {
		limit = 5
	}
	var rows []Message
	err := d.gorm.WithContext(ctx).
		Where("conversation_id = ?", strings.TrimSpace(conversationID)).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// GetConversation loads a conversation by id.
func (d *Database) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	if err := d.gorm.WithContext(ctx).First(&conv, "id = ?", strings.TrimSpace(conversationID)).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// EscalationStats counts assistant turns per source.
func (d *Database) EscalationStats(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Source string
		Total  int64
	}
	var rows []row
	err := d.gorm.WithContext(ctx).Model(&Message{}).
		Select("source, COUNT(*) AS total").
		Where("role = ?", RoleAssistant).
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Source] = r.Total
	}
	return out, nil
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_messages_conversation_id_id ON messages(conversation_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_messages_role_source ON messages(role, source)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
