package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrSelfRequest         = errors.New("cannot send a connection request to yourself")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrUserNotFound        = errors.New("user not found")
	ErrRequestExists       = errors.New("a connection request already exists for this pair")
	ErrRequestNotFound     = errors.New("connection request not found")
	ErrRequestNotPending   = errors.New("connection request is not pending review")
	ErrNotRequestRecipient = errors.New("only the request recipient can review it")
)

const recentActivityLimit = 10

type ConnectionService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
	convRepo repository.ConversationRepository
	log      *zap.Logger
}

func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, convRepo repository.ConversationRepository, log *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
		convRepo: convRepo,
		log:      log,
	}
}

// Send records the sender's intent toward the target: interested or ignored.
// At most one ledger row may ever exist per unordered pair, so a row in
// either direction makes this a conflict.
func (s *ConnectionService) Send(ctx context.Context, fromUserID, toUserID uuid.UUID, status domain.Status) (*domain.ConnectionRequest, error) {
	if _, ok := domain.ParseSendStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}
	if fromUserID == toUserID {
		return nil, ErrSelfRequest
	}

	target, err := readStore(ctx, func(c context.Context) (*domain.User, error) {
		return s.userRepo.GetByID(c, toUserID)
	})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := readStore(ctx, func(c context.Context) (*domain.ConnectionRequest, error) {
		return s.connRepo.GetByPair(c, fromUserID, toUserID)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestExists
	}

	now := time.Now()
	req := &domain.ConnectionRequest{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := writeStore(ctx, func(c context.Context) error {
		return s.connRepo.Create(c, req)
	}); err != nil {
		if errors.Is(err, repository.ErrDuplicatePair) {
			return nil, ErrRequestExists
		}
		return nil, fmt.Errorf("creating connection request: %w", err)
	}

	s.log.Info("connection request created",
		zap.String("from", fromUserID.String()),
		zap.String("to", toUserID.String()),
		zap.String("status", string(status)),
	)
	return req, nil
}

// Review settles a pending request. Only the recipient may review, and only
// while the request is still interested.
func (s *ConnectionService) Review(ctx context.Context, reviewerID, requestID uuid.UUID, decision domain.Status) (*domain.ConnectionRequest, error) {
	if _, ok := domain.ParseReviewStatus(string(decision)); !ok {
		return nil, ErrInvalidStatus
	}

	req, err := readStore(ctx, func(c context.Context) (*domain.ConnectionRequest, error) {
		return s.connRepo.GetByID(c, requestID)
	})
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.ToUserID != reviewerID {
		return nil, ErrNotRequestRecipient
	}
	if !req.Status.CanReview() {
		return nil, ErrRequestNotPending
	}

	now := time.Now()
	if err := writeStore(ctx, func(c context.Context) error {
		return s.connRepo.UpdateStatus(c, req.ID, decision, now)
	}); err != nil {
		return nil, fmt.Errorf("updating connection request: %w", err)
	}

	req.Status = decision
	req.UpdatedAt = now
	return req, nil
}

// PendingReceived returns interested requests addressed to the user.
func (s *ConnectionService) PendingReceived(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	reqs, err := readStore(ctx, func(c context.Context) ([]domain.ConnectionRequest, error) {
		return s.connRepo.ListPendingReceived(c, userID)
	})
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ConnectionRequest{}
	}
	return reqs, nil
}

// Connections returns the user's accepted pairs, resolved to the other party.
func (s *ConnectionService) Connections(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	conns, err := readStore(ctx, func(c context.Context) ([]domain.Connection, error) {
		return s.connRepo.ListAccepted(c, userID)
	})
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// RecentActivity renders the user's latest ledger rows with a verb derived
// from the row's status and the user's side of it.
func (s *ConnectionService) RecentActivity(ctx context.Context, userID uuid.UUID) ([]domain.Activity, error) {
	reqs, err := readStore(ctx, func(c context.Context) ([]domain.ConnectionRequest, error) {
		return s.connRepo.ListRecent(c, userID, recentActivityLimit)
	})
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(reqs))
	for _, req := range reqs {
		recipient := req.ToUserID == userID

		a := domain.Activity{
			RequestID: req.ID,
			Verb:      domain.ActivityVerb(req.Status, recipient),
			Status:    req.Status,
			Timestamp: req.UpdatedAt,
		}
		if recipient {
			a.OtherUserID = req.FromUserID
			a.OtherFirstName = req.FromFirstName
			a.OtherLastName = req.FromLastName
		} else {
			a.OtherUserID = req.ToUserID
			a.OtherFirstName = req.ToFirstName
			a.OtherLastName = req.ToLastName
		}
		activities = append(activities, a)
	}
	return activities, nil
}

type DashboardStats struct {
	Matches      int `json:"matches"`
	Connections  int `json:"connections"`
	Messages     int `json:"messages"`
	ProfileViews int `json:"profileViews"`
}

// DashboardStats aggregates the user's ledger and conversation counters.
func (s *ConnectionService) DashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	matches, err := readStore(ctx, func(c context.Context) (int, error) {
		return s.connRepo.CountByStatuses(c, userID, []domain.Status{domain.StatusInterested, domain.StatusAccepted})
	})
	if err != nil {
		return nil, err
	}

	accepted, err := readStore(ctx, func(c context.Context) (int, error) {
		return s.connRepo.CountByStatuses(c, userID, []domain.Status{domain.StatusAccepted})
	})
	if err != nil {
		return nil, err
	}

	messages, err := readStore(ctx, func(c context.Context) (int, error) {
		return s.convRepo.CountMessagesForUser(c, userID)
	})
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Matches:      matches,
		Connections:  accepted,
		Messages:     messages,
		ProfileViews: matches*3 + accepted*5,
	}, nil
}
