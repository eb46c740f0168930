package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindredhq/kindred/internal/domain"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// GetOrCreate inserts the conversation unless one already exists for its
// pair. ON CONFLICT DO NOTHING plus a re-read keeps concurrent first access
// by both participants down to a single stored row.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, conv *domain.Conversation) error {
	insert := `
		INSERT INTO conversations (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, conv.ID, conv.User1ID, conv.User2ID, conv.CreatedAt); err != nil {
		return err
	}

	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM conversations
		WHERE user1_id = $1 AND user2_id = $2`
	return r.pool.QueryRow(ctx, query, conv.User1ID, conv.User2ID).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt,
	)
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, conversation_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Text, msg.CreatedAt,
	)
	return err
}

func (r *ConversationRepo) GetMessageByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.text, m.created_at,
			u.first_name, u.last_name
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.ChatMessage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Text, &msg.CreatedAt,
		&msg.SenderFirstName, &msg.SenderLastName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.ChatMessage, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.text, m.created_at,
			u.first_name, u.last_name
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at, m.id`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Text, &msg.CreatedAt,
			&msg.SenderFirstName, &msg.SenderLastName,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *ConversationRepo) CountMessagesForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat_messages m
		JOIN conversations c ON m.conversation_id = c.id
		WHERE c.user1_id = $1 OR c.user2_id = $1`,
		userID,
	).Scan(&count)
	return count, err
}
