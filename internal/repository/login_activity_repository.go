package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyhub/compliance-service/internal/domain"
)

// LoginActivityRepository persists successful-login audit records.
type LoginActivityRepository interface {
	Create(ctx context.Context, activity *domain.LoginActivity) error
	ListByIdentity(ctx context.Context, identityID string, limit int) ([]domain.LoginActivity, error)
}

type loginActivityRepository struct {
	pool *pgxpool.Pool
}

// NewLoginActivityRepository returns a Postgres-backed implementation.
func NewLoginActivityRepository(pool *pgxpool.Pool) LoginActivityRepository {
	return &loginActivityRepository{pool: pool}
}

func (r *loginActivityRepository) Create(ctx context.Context, activity *domain.LoginActivity) error {
	const query = `
        INSERT INTO login_activities (identity_id, email, source_ip, user_agent, logged_in_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		activity.IdentityID,
		activity.Email,
		activity.SourceIP,
		activity.UserAgent,
		activity.LoggedInAt,
	).Scan(&activity.ID)
}

func (r *loginActivityRepository) ListByIdentity(ctx context.Context, identityID string, limit int) ([]domain.LoginActivity, error) {
	const query = `
        SELECT id, identity_id, email, source_ip, user_agent, logged_in_at
        FROM login_activities WHERE identity_id=$1
        ORDER BY logged_in_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, identityID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.LoginActivity
	for rows.Next() {
		var activity domain.LoginActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.IdentityID,
			&activity.Email,
			&activity.SourceIP,
			&activity.UserAgent,
			&activity.LoggedInAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
