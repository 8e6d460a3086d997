package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/chat"
)

// ChatLogRepository records accepted chat messages for moderation review.
// It implements chat.Recorder.
type ChatLogRepository struct {
	db *pgxpool.Pool
}

// NewChatLogRepository creates a ChatLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewChatLogRepository(db *pgxpool.Pool) *ChatLogRepository {
	return &ChatLogRepository{db: db}
}

// Record inserts one chat entry.
func (r *ChatLogRepository) Record(ctx context.Context, e chat.Entry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_log (id, socket_id, sender, message, ip, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, int64(e.SocketID), e.Sender, e.Message, e.IP, e.SentAt,
	)
	if err != nil {
		return fmt.Errorf("inserting chat entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries sent at or after since, newest first.
func (r *ChatLogRepository) Recent(ctx context.Context, since time.Time, limit int) ([]chat.Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, socket_id, sender, message, ip, sent_at
		 FROM chat_log
		 WHERE sent_at >= $1
		 ORDER BY sent_at DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat log: %w", err)
	}
	defer rows.Close()

	var entries []chat.Entry
	for rows.Next() {
		var (
			e        chat.Entry
			id       uuid.UUID
			socketID int64
		)
		if err := rows.Scan(&id, &socketID, &e.Sender, &e.Message, &e.IP, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scanning chat entry: %w", err)
		}
		e.ID = id
		e.SocketID = uint32(socketID)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat log: %w", err)
	}
	return entries, nil
}

// Purge deletes entries older than cutoff and returns the number removed.
// The original server ran this daily.
func (r *ChatLogRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM chat_log WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging chat log: %w", err)
	}
	return tag.RowsAffected(), nil
}
