package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage = errors.New("message text is required")
	ErrSelfChat     = errors.New("cannot chat with yourself")
	ErrNotConnected = errors.New("users are not connected")
)

type ChatService struct {
	convRepo repository.ConversationRepository
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
	notifier Notifier
	log      *zap.Logger

	// pairLocks serializes append+broadcast per conversation so broadcast
	// order always equals persisted order.
	mu        sync.Mutex
	pairLocks map[string]*sync.Mutex

	droppedUngated atomic.Int64
}

func NewChatService(convRepo repository.ConversationRepository, connRepo repository.ConnectionRepository, userRepo repository.UserRepository, log *zap.Logger) *ChatService {
	return &ChatService{
		convRepo:  convRepo,
		connRepo:  connRepo,
		userRepo:  userRepo,
		log:       log,
		pairLocks: make(map[string]*sync.Mutex),
	}
}

// SetNotifier wires the realtime fan-out. Called once at startup, after the
// hub exists; not safe to call concurrently with sends.
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ConversationView is a conversation with its full message sequence, as the
// chat screen consumes it.
type ConversationView struct {
	*domain.Conversation
	Messages []domain.ChatMessage `json:"messages"`
}

// GetConversation finds or lazily creates the conversation between the user
// and the target, returning its full ordered message log.
func (s *ChatService) GetConversation(ctx context.Context, userID, targetUserID uuid.UUID) (*ConversationView, error) {
	conv, err := s.getOrCreate(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}

	messages, err := readStore(ctx, func(c context.Context) ([]domain.ChatMessage, error) {
		return s.convRepo.ListMessages(c, conv.ID)
	})
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	return &ConversationView{Conversation: conv, Messages: messages}, nil
}

// SendMessage is the synchronous fallback path: it persists exactly like the
// realtime path but involves no room subscription, and it is the only path
// that reports delivery errors back to the sender.
func (s *ChatService) SendMessage(ctx context.Context, senderID, targetUserID uuid.UUID, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	unlock := s.lockPair(senderID, targetUserID)
	defer unlock()

	return s.append(ctx, senderID, targetUserID, text)
}

// SendRealtime is the live path: delivery is gated on an accepted ledger row
// between the two users. Ungated sends are dropped without an error to the
// sender; the drop is logged and counted server-side.
func (s *ChatService) SendRealtime(ctx context.Context, senderID, targetUserID uuid.UUID, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	accepted, err := readStore(ctx, func(c context.Context) (bool, error) {
		return s.connRepo.HasAccepted(c, senderID, targetUserID)
	})
	if err != nil {
		return nil, err
	}
	if !accepted {
		s.droppedUngated.Add(1)
		s.log.Warn("dropping message between unconnected users",
			zap.String("sender", senderID.String()),
			zap.String("target", targetUserID.String()),
			zap.Int64("dropped_total", s.droppedUngated.Load()),
		)
		return nil, ErrNotConnected
	}

	unlock := s.lockPair(senderID, targetUserID)
	defer unlock()

	msg, err := s.append(ctx, senderID, targetUserID, text)
	if err != nil {
		return nil, err
	}

	// Broadcast strictly after successful persistence, still under the pair
	// lock, so subscribers observe messages in persisted order.
	if s.notifier != nil {
		s.notifier.MessageDelivered(senderID, targetUserID, msg)
	}
	return msg, nil
}

// DroppedUngated reports how many realtime sends the delivery gate has
// discarded since startup.
func (s *ChatService) DroppedUngated() int64 {
	return s.droppedUngated.Load()
}

func (s *ChatService) append(ctx context.Context, senderID, targetUserID uuid.UUID, text string) (*domain.ChatMessage, error) {
	conv, err := s.getOrCreate(ctx, senderID, targetUserID)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := writeStore(ctx, func(c context.Context) error {
		return s.convRepo.AppendMessage(c, msg)
	}); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	full, err := readStore(ctx, func(c context.Context) (*domain.ChatMessage, error) {
		return s.convRepo.GetMessageByID(c, msg.ID)
	})
	if err != nil {
		return nil, err
	}
	if full == nil {
		// Appended a moment ago; treat as transient.
		return nil, fmt.Errorf("%w: stored message not readable", ErrStoreUnavailable)
	}
	return full, nil
}

func (s *ChatService) getOrCreate(ctx context.Context, userID, targetUserID uuid.UUID) (*domain.Conversation, error) {
	if userID == targetUserID {
		return nil, ErrSelfChat
	}

	target, err := readStore(ctx, func(c context.Context) (*domain.User, error) {
		return s.userRepo.GetByID(c, targetUserID)
	})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := domain.OrderPair(userID, targetUserID)
	conv := &domain.Conversation{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now(),
	}
	if err := writeStore(ctx, func(c context.Context) error {
		return s.convRepo.GetOrCreate(c, conv)
	}); err != nil {
		return nil, fmt.Errorf("finding conversation: %w", err)
	}
	return conv, nil
}

func (s *ChatService) lockPair(a, b uuid.UUID) func() {
	u1, u2 := domain.OrderPair(a, b)
	key := u1.String() + "$" + u2.String()

	s.mu.Lock()
	lock, ok := s.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pairLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
