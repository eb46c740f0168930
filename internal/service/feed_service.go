package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type FeedService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
}

func NewFeedService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// Feed returns candidate users for the viewer to evaluate. Anyone that
// appears on either side of a ledger row involving the viewer is excluded
// permanently, whatever the row's status. Out-of-range pagination is
// clamped, never rejected.
func (s *FeedService) Feed(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	pairs, err := readStore(ctx, func(c context.Context) ([]domain.Pair, error) {
		return s.connRepo.ListPairs(c, userID)
	})
	if err != nil {
		return nil, err
	}

	// Both sides of every row go into the exclusion set; the viewer lands in
	// it too but the candidate query excludes them separately.
	hidden := make(map[uuid.UUID]struct{}, len(pairs)*2)
	for _, p := range pairs {
		hidden[p.FromUserID] = struct{}{}
		hidden[p.ToUserID] = struct{}{}
	}
	exclude := make([]uuid.UUID, 0, len(hidden))
	for id := range hidden {
		exclude = append(exclude, id)
	}

	offset := (page - 1) * limit
	users, err := readStore(ctx, func(c context.Context) ([]domain.User, error) {
		return s.userRepo.ListCandidates(c, userID, exclude, offset, limit)
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
