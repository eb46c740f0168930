package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/repository"
)

// In-memory repositories backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) add(firstName, lastName string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().Add(time.Duration(len(f.users)) * time.Millisecond)
	u := &domain.User{
		ID:        uuid.New(),
		Email:     firstName + "@example.com",
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListCandidates(_ context.Context, viewerID uuid.UUID, exclude []uuid.UUID, offset, limit int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	var out []domain.User
	for _, u := range f.users {
		if u.ID == viewerID {
			continue
		}
		if _, ok := excluded[u.ID]; ok {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeConnRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	reqs  map[uuid.UUID]*domain.ConnectionRequest
}

func newFakeConnRepo(users *fakeUserRepo) *fakeConnRepo {
	return &fakeConnRepo{users: users, reqs: make(map[uuid.UUID]*domain.ConnectionRequest)}
}

func (f *fakeConnRepo) Create(_ context.Context, req *domain.ConnectionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reqs {
		if samePair(r, req.FromUserID, req.ToUserID) {
			return repository.ErrDuplicatePair
		}
	}
	cp := *req
	f.reqs[req.ID] = &cp
	return nil
}

func (f *fakeConnRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeConnRepo) GetByPair(_ context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reqs {
		if samePair(r, userA, userB) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeConnRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reqs[id]; ok {
		r.Status = status
		r.UpdatedAt = updatedAt
	}
	return nil
}

func (f *fakeConnRepo) ListPendingReceived(_ context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ConnectionRequest
	for _, r := range f.reqs {
		if r.ToUserID == userID && r.Status == domain.StatusInterested {
			out = append(out, f.withNames(r))
		}
	}
	return out, nil
}

func (f *fakeConnRepo) ListAccepted(_ context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Connection
	for _, r := range f.reqs {
		if r.Status != domain.StatusAccepted || (r.FromUserID != userID && r.ToUserID != userID) {
			continue
		}
		otherID := r.FromUserID
		if r.FromUserID == userID {
			otherID = r.ToUserID
		}
		c := domain.Connection{RequestID: r.ID, OtherUserID: otherID, ConnectedAt: r.UpdatedAt}
		if u, ok := f.users.users[otherID]; ok {
			c.OtherFirstName = u.FirstName
			c.OtherLastName = u.LastName
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConnRepo) ListPairs(_ context.Context, userID uuid.UUID) ([]domain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Pair
	for _, r := range f.reqs {
		if r.FromUserID == userID || r.ToUserID == userID {
			out = append(out, domain.Pair{FromUserID: r.FromUserID, ToUserID: r.ToUserID})
		}
	}
	return out, nil
}

func (f *fakeConnRepo) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]domain.ConnectionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ConnectionRequest
	for _, r := range f.reqs {
		if r.FromUserID == userID || r.ToUserID == userID {
			out = append(out, f.withNames(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeConnRepo) HasAccepted(_ context.Context, userA, userB uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reqs {
		if r.Status == domain.StatusAccepted && samePair(r, userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConnRepo) CountByStatuses(_ context.Context, userID uuid.UUID, statuses []domain.Status) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.reqs {
		if r.FromUserID != userID && r.ToUserID != userID {
			continue
		}
		for _, s := range statuses {
			if r.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeConnRepo) withNames(r *domain.ConnectionRequest) domain.ConnectionRequest {
	cp := *r
	if u, ok := f.users.users[r.FromUserID]; ok {
		cp.FromFirstName = u.FirstName
		cp.FromLastName = u.LastName
	}
	if u, ok := f.users.users[r.ToUserID]; ok {
		cp.ToFirstName = u.FirstName
		cp.ToLastName = u.LastName
	}
	return cp
}

func samePair(r *domain.ConnectionRequest, a, b uuid.UUID) bool {
	return (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a)
}

type fakeConvRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	convs map[string]*domain.Conversation
	msgs  []domain.ChatMessage
}

func newFakeConvRepo(users *fakeUserRepo) *fakeConvRepo {
	return &fakeConvRepo{users: users, convs: make(map[string]*domain.Conversation)}
}

func (f *fakeConvRepo) GetOrCreate(_ context.Context, conv *domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := conv.User1ID.String() + "$" + conv.User2ID.String()
	if existing, ok := f.convs[key]; ok {
		*conv = *existing
		return nil
	}
	cp := *conv
	f.convs[key] = &cp
	return nil
}

func (f *fakeConvRepo) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeConvRepo) GetMessageByID(_ context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.ID == id {
			cp := m
			if u, ok := f.users.users[m.SenderID]; ok {
				cp.SenderFirstName = u.FirstName
				cp.SenderLastName = u.LastName
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range f.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeConvRepo) CountMessagesForUser(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	participant := make(map[uuid.UUID]bool)
	for _, c := range f.convs {
		if c.User1ID == userID || c.User2ID == userID {
			participant[c.ID] = true
		}
	}
	count := 0
	for _, m := range f.msgs {
		if participant[m.ConversationID] {
			count++
		}
	}
	return count, nil
}
