package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/complyhub/compliance-service/internal/domain"
)

// RiskRepository encapsulates risk register persistence. ListByOwner is
// the query-time half of own-scope enforcement: it must return exactly the
// records the authorization engine would allow one by one.
type RiskRepository interface {
	Create(ctx context.Context, risk *domain.Risk) error
	Update(ctx context.Context, risk *domain.Risk) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Risk, error)
	List(ctx context.Context, limit, offset int) ([]domain.Risk, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Risk, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
}

type riskRepository struct {
	pool *pgxpool.Pool
}

// NewRiskRepository instantiates repository.
func NewRiskRepository(pool *pgxpool.Pool) RiskRepository {
	return &riskRepository{pool: pool}
}

func (r *riskRepository) Create(ctx context.Context, risk *domain.Risk) error {
	const query = `
        INSERT INTO risks (title, description, status, due_date, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		risk.Title,
		risk.Description,
		risk.Status,
		risk.DueDate,
		risk.CreatedByID,
	).Scan(&risk.ID, &risk.CreatedAt, &risk.UpdatedAt)
}

func (r *riskRepository) Update(ctx context.Context, risk *domain.Risk) error {
	const query = `
        UPDATE risks SET title=$1, description=$2, status=$3, due_date=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		risk.Title,
		risk.Description,
		risk.Status,
		risk.DueDate,
		risk.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *riskRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM risks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *riskRepository) GetByID(ctx context.Context, id string) (*domain.Risk, error) {
	const query = `
        SELECT id, title, description, status, due_date, created_by, created_at, updated_at
        FROM risks WHERE id=$1`
	var risk domain.Risk
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&risk.ID,
		&risk.Title,
		&risk.Description,
		&risk.Status,
		&risk.DueDate,
		&risk.CreatedByID,
		&risk.CreatedAt,
		&risk.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &risk, nil
}

func (r *riskRepository) List(ctx context.Context, limit, offset int) ([]domain.Risk, error) {
	const query = `
        SELECT id, title, description, status, due_date, created_by, created_at, updated_at
        FROM risks ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.fetchMany(ctx, query, normalizeLimit(limit), offset)
}

func (r *riskRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Risk, error) {
	const query = `
        SELECT id, title, description, status, due_date, created_by, created_at, updated_at
        FROM risks WHERE created_by=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.fetchMany(ctx, query, ownerID, normalizeLimit(limit), offset)
}

func (r *riskRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	const query = `
        UPDATE risks SET status=$1, updated_at=NOW()
        WHERE due_date < $2 AND status NOT IN ($3, $1)`
	cmd, err := r.pool.Exec(ctx, query, domain.RiskStatusOverdue, before, domain.RiskStatusCompleted)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *riskRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Risk, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var risks []domain.Risk
	for rows.Next() {
		var risk domain.Risk
		if err := rows.Scan(
			&risk.ID,
			&risk.Title,
			&risk.Description,
			&risk.Status,
			&risk.DueDate,
			&risk.CreatedByID,
			&risk.CreatedAt,
			&risk.UpdatedAt,
		); err != nil {
			return nil, err
		}
		risks = append(risks, risk)
	}
	return risks, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
