package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

// ChatRepository handles chat message data access. Conversations are keyed
// by student email.
type ChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// Insert persists a new message with status=sent.
func (r *ChatRepository) Insert(ctx context.Context, m *model.ChatMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (student_email, sender, message, status, admin_name)
		 VALUES ($1, $2, $3, 'sent', NULLIF($4, ''))
		 RETURNING id, status, created_at`,
		m.StudentEmail, m.Sender, m.Message, m.AdminName,
	).Scan(&m.ID, &m.Status, &m.CreatedAt)
}

// MarkRead bulk-transitions all unread messages from the given sender in one
// conversation to read. The status filter keeps the operation cheap and
// idempotent.
func (r *ChatRepository) MarkRead(ctx context.Context, studentEmail string, from model.ChatSender) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chat_messages SET status = 'read'
		 WHERE student_email = $1 AND sender = $2 AND status <> 'read'`,
		studentEmail, from,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListConversation retrieves one conversation's messages, oldest first.
func (r *ChatRepository) ListConversation(ctx context.Context, studentEmail string, limit, offset int) ([]model.ChatMessage, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE student_email = $1`, studentEmail,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, student_email, sender, message, status, COALESCE(admin_name, ''), created_at
		 FROM chat_messages WHERE student_email = $1
		 ORDER BY created_at LIMIT $2 OFFSET $3`,
		studentEmail, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.StudentEmail, &m.Sender, &m.Message, &m.Status, &m.AdminName, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// CountUnread counts unread messages from the given sender in one conversation.
func (r *ChatRepository) CountUnread(ctx context.Context, studentEmail string, from model.ChatSender) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages
		 WHERE student_email = $1 AND sender = $2 AND status <> 'read'`,
		studentEmail, from,
	).Scan(&n)
	return n, err
}

// ListConversationSummaries builds the admin inbox: one row per student who
// has ever chatted, with unread-from-student counts and the latest message.
func (r *ChatRepository) ListConversationSummaries(ctx context.Context) ([]model.ConversationSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.student_email,
			COALESCE(s.name, ''),
			COUNT(*) FILTER (WHERE m.sender = 'student' AND m.status <> 'read') AS unread,
			(SELECT message FROM chat_messages last
			 WHERE last.student_email = m.student_email ORDER BY last.created_at DESC LIMIT 1),
			MAX(m.created_at)
		 FROM chat_messages m
		 LEFT JOIN students s ON s.email = m.student_email
		 GROUP BY m.student_email, s.name
		 ORDER BY MAX(m.created_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.ConversationSummary
	for rows.Next() {
		var cs model.ConversationSummary
		if err := rows.Scan(&cs.StudentEmail, &cs.StudentName, &cs.UnreadCount, &cs.LastMessage, &cs.LastMessageAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}
