package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// IdleDurationLimitRepository stores per-problem-type assignment limits.
// Upsert keys on problem_type_id so at most one row exists per problem type.
type IdleDurationLimitRepository interface {
	Upsert(ctx context.Context, limit *domain.IdleDurationLimit) error
	GetByProblemType(ctx context.Context, problemTypeID string) (*domain.IdleDurationLimit, error)
	List(ctx context.Context) ([]domain.IdleDurationLimit, error)
}

// SolutionTimeRepository stores per-problem-type solution targets, same
// at-most-one shape as idle limits.
type SolutionTimeRepository interface {
	Upsert(ctx context.Context, st *domain.SolutionTime) error
	GetByProblemType(ctx context.Context, problemTypeID string) (*domain.SolutionTime, error)
	List(ctx context.Context) ([]domain.SolutionTime, error)
}

type idleDurationLimitRepository struct {
	pool *pgxpool.Pool
}

// NewIdleDurationLimitRepository builds repository.
func NewIdleDurationLimitRepository(pool *pgxpool.Pool) IdleDurationLimitRepository {
	return &idleDurationLimitRepository{pool: pool}
}

func (r *idleDurationLimitRepository) Upsert(ctx context.Context, limit *domain.IdleDurationLimit) error {
	const query = `
        INSERT INTO idle_duration_limits (problem_type_id, time_to_assign_seconds, created_at, updated_at)
        VALUES ($1,$2,$3,$3)
        ON CONFLICT (problem_type_id)
        DO UPDATE SET time_to_assign_seconds=EXCLUDED.time_to_assign_seconds, updated_at=EXCLUDED.updated_at
        RETURNING id`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		limit.ProblemTypeID,
		int64(limit.TimeToAssign.Seconds()),
		limit.UpdatedAt,
	).Scan(&limit.ID)
}

func (r *idleDurationLimitRepository) GetByProblemType(ctx context.Context, problemTypeID string) (*domain.IdleDurationLimit, error) {
	const query = `
        SELECT id, problem_type_id, time_to_assign_seconds, created_at, updated_at
        FROM idle_duration_limits WHERE problem_type_id=$1`
	var (
		limit domain.IdleDurationLimit
		secs  int64
	)
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, problemTypeID).Scan(
		&limit.ID,
		&limit.ProblemTypeID,
		&secs,
		&limit.CreatedAt,
		&limit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	limit.TimeToAssign = time.Duration(secs) * time.Second
	return &limit, nil
}

func (r *idleDurationLimitRepository) List(ctx context.Context) ([]domain.IdleDurationLimit, error) {
	const query = `
        SELECT id, problem_type_id, time_to_assign_seconds, created_at, updated_at
        FROM idle_duration_limits ORDER BY created_at ASC`
	rows, err := persistence.QuerierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IdleDurationLimit
	for rows.Next() {
		var (
			limit domain.IdleDurationLimit
			secs  int64
		)
		if err := rows.Scan(&limit.ID, &limit.ProblemTypeID, &secs, &limit.CreatedAt, &limit.UpdatedAt); err != nil {
			return nil, err
		}
		limit.TimeToAssign = time.Duration(secs) * time.Second
		result = append(result, limit)
	}
	return result, rows.Err()
}

type solutionTimeRepository struct {
	pool *pgxpool.Pool
}

// NewSolutionTimeRepository builds repository.
func NewSolutionTimeRepository(pool *pgxpool.Pool) SolutionTimeRepository {
	return &solutionTimeRepository{pool: pool}
}

func (r *solutionTimeRepository) Upsert(ctx context.Context, st *domain.SolutionTime) error {
	const query = `
        INSERT INTO solution_times (problem_type_id, time_to_solve_seconds, created_at, updated_at)
        VALUES ($1,$2,$3,$3)
        ON CONFLICT (problem_type_id)
        DO UPDATE SET time_to_solve_seconds=EXCLUDED.time_to_solve_seconds, updated_at=EXCLUDED.updated_at
        RETURNING id`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		st.ProblemTypeID,
		int64(st.TimeToSolve.Seconds()),
		st.UpdatedAt,
	).Scan(&st.ID)
}

func (r *solutionTimeRepository) GetByProblemType(ctx context.Context, problemTypeID string) (*domain.SolutionTime, error) {
	const query = `
        SELECT id, problem_type_id, time_to_solve_seconds, created_at, updated_at
        FROM solution_times WHERE problem_type_id=$1`
	var (
		st   domain.SolutionTime
		secs int64
	)
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, problemTypeID).Scan(
		&st.ID,
		&st.ProblemTypeID,
		&secs,
		&st.CreatedAt,
		&st.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st.TimeToSolve = time.Duration(secs) * time.Second
	return &st, nil
}

func (r *solutionTimeRepository) List(ctx context.Context) ([]domain.SolutionTime, error) {
	const query = `
        SELECT id, problem_type_id, time_to_solve_seconds, created_at, updated_at
        FROM solution_times ORDER BY created_at ASC`
	rows, err := persistence.QuerierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SolutionTime
	for rows.Next() {
		var (
			st   domain.SolutionTime
			secs int64
		)
		if err := rows.Scan(&st.ID, &st.ProblemTypeID, &secs, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		st.TimeToSolve = time.Duration(secs) * time.Second
		result = append(result, st)
	}
	return result, rows.Err()
}
