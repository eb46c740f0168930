package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/repository"
)

const pgUniqueViolation = "23505"

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

func (r *ConnectionRepo) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	query := `
		INSERT INTO connection_requests (id, from_user_id, to_user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt, req.UpdatedAt,
	)
	// The pair-uniqueness index catches the race two simultaneous senders lose.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repository.ErrDuplicatePair
	}
	return err
}

func (r *ConnectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, updated_at
		FROM connection_requests
		WHERE id = $1`
	return r.scanRequest(ctx, query, id)
}

func (r *ConnectionRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.ConnectionRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, updated_at
		FROM connection_requests
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)`
	return r.scanRequest(ctx, query, userA, userB)
}

func (r *ConnectionRepo) scanRequest(ctx context.Context, query string, args ...any) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConnectionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE connection_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt,
	)
	return err
}

func (r *ConnectionRepo) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT r.id, r.from_user_id, r.to_user_id, r.status, r.created_at, r.updated_at,
			u.first_name, u.last_name, u.photo_url
		FROM connection_requests r
		JOIN users u ON r.from_user_id = u.id
		WHERE r.to_user_id = $1 AND r.status = 'interested'
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ConnectionRequest
	for rows.Next() {
		var req domain.ConnectionRequest
		if err := rows.Scan(
			&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.FromFirstName, &req.FromLastName, &req.FromPhotoURL,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *ConnectionRepo) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT r.id, r.updated_at,
			CASE WHEN r.from_user_id = $1 THEN r.to_user_id ELSE r.from_user_id END AS other_user_id,
			CASE WHEN r.from_user_id = $1 THEN u2.first_name ELSE u1.first_name END AS other_first_name,
			CASE WHEN r.from_user_id = $1 THEN u2.last_name ELSE u1.last_name END AS other_last_name,
			CASE WHEN r.from_user_id = $1 THEN u2.photo_url ELSE u1.photo_url END AS other_photo_url
		FROM connection_requests r
		JOIN users u1 ON r.from_user_id = u1.id
		JOIN users u2 ON r.to_user_id = u2.id
		WHERE (r.from_user_id = $1 OR r.to_user_id = $1) AND r.status = 'accepted'
		ORDER BY r.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var c domain.Connection
		if err := rows.Scan(
			&c.RequestID, &c.ConnectedAt,
			&c.OtherUserID, &c.OtherFirstName, &c.OtherLastName, &c.OtherPhotoURL,
		); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *ConnectionRepo) ListPairs(ctx context.Context, userID uuid.UUID) ([]domain.Pair, error) {
	query := `
		SELECT from_user_id, to_user_id
		FROM connection_requests
		WHERE from_user_id = $1 OR to_user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.FromUserID, &p.ToUserID); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (r *ConnectionRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConnectionRequest, error) {
	query := `
		SELECT r.id, r.from_user_id, r.to_user_id, r.status, r.created_at, r.updated_at,
			u1.first_name, u1.last_name, u1.photo_url, u2.first_name, u2.last_name
		FROM connection_requests r
		JOIN users u1 ON r.from_user_id = u1.id
		JOIN users u2 ON r.to_user_id = u2.id
		WHERE r.from_user_id = $1 OR r.to_user_id = $1
		ORDER BY r.updated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ConnectionRequest
	for rows.Next() {
		var req domain.ConnectionRequest
		if err := rows.Scan(
			&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.FromFirstName, &req.FromLastName, &req.FromPhotoURL,
			&req.ToFirstName, &req.ToLastName,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *ConnectionRepo) HasAccepted(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM connection_requests
			WHERE status = 'accepted'
			  AND ((from_user_id = $1 AND to_user_id = $2)
			    OR (from_user_id = $2 AND to_user_id = $1)))`,
		userA, userB,
	).Scan(&exists)
	return exists, err
}

func (r *ConnectionRepo) CountByStatuses(ctx context.Context, userID uuid.UUID, statuses []domain.Status) (int, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM connection_requests
		WHERE (from_user_id = $1 OR to_user_id = $1) AND status = ANY($2)`,
		userID, names,
	).Scan(&count)
	return count, err
}
