package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
)

// ErrDuplicatePair is returned by ConnectionRepository.Create when a ledger
// row already exists for the unordered pair, in either direction.
var ErrDuplicatePair = errors.New("connection request already exists for this pair")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListCandidates returns users that are neither the viewer nor in the
	// exclusion set, ordered by (created_at, id) ascending. The ordering is
	// stable across pages absent concurrent writes.
	ListCandidates(ctx context.Context, viewerID uuid.UUID, exclude []uuid.UUID, offset, limit int) ([]domain.User, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, req *domain.ConnectionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error)
	// GetByPair looks the pair up in either direction.
	GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) error
	ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error)
	ListPairs(ctx context.Context, userID uuid.UUID) ([]domain.Pair, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConnectionRequest, error)
	HasAccepted(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	CountByStatuses(ctx context.Context, userID uuid.UUID, statuses []domain.Status) (int, error)
}

type ConversationRepository interface {
	// GetOrCreate persists conv unless a conversation already exists for its
	// pair, in which case conv is overwritten with the stored row. Safe under
	// concurrent first access by both participants.
	GetOrCreate(ctx context.Context, conv *domain.Conversation) error
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	GetMessageByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error)
	// ListMessages returns the full message sequence in insertion order.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.ChatMessage, error)
	CountMessagesForUser(ctx context.Context, userID uuid.UUID) (int, error)
}
