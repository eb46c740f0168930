package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindredhq/kindred/internal/domain"
)

const userColumns = "id, email, first_name, last_name, password_hash, photo_url, age, gender, about, skills, created_at, updated_at"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, password_hash, photo_url, age, gender, about, skills, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.PhotoURL, user.Age, user.Gender, user.About, user.Skills,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.PhotoURL, &u.Age, &u.Gender, &u.About, &u.Skills,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListCandidates returns feed candidates for the viewer: every user that is
// neither the viewer nor in the exclusion set. Ordered by (created_at, id)
// ascending so pages stay stable absent concurrent writes.
func (r *UserRepo) ListCandidates(ctx context.Context, viewerID uuid.UUID, exclude []uuid.UUID, offset, limit int) ([]domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, photo_url, age, gender, about, skills, created_at, updated_at
		FROM users
		WHERE id <> $1 AND id <> ALL($2::uuid[])
		ORDER BY created_at, id
		OFFSET $3 LIMIT $4`

	excluded := make([]string, 0, len(exclude))
	for _, id := range exclude {
		excluded = append(excluded, id.String())
	}

	rows, err := r.pool.Query(ctx, query, viewerID, excluded, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.PhotoURL, &u.Age, &u.Gender, &u.About, &u.Skills,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
