package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// ApprovalRepository stores approval requests.
type ApprovalRepository interface {
	Create(ctx context.Context, request *domain.ApprovalRequest) error
	// Update applies a compare-and-swap on row_version and returns
	// ErrVersionConflict on a stale read.
	Update(ctx context.Context, request *domain.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	ListPendingByApprover(ctx context.Context, approverID string) ([]domain.ApprovalRequest, error)
}

type approvalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository builds repository.
func NewApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &approvalRepository{pool: pool}
}

const approvalColumns = `id, requested_by_id, approver_id, entity_type, entity_id, action_type,
       status, requester_comments, approver_comments, requested_at, action_date, row_version`

func (r *approvalRepository) Create(ctx context.Context, request *domain.ApprovalRequest) error {
	const query = `
        INSERT INTO approval_requests (requested_by_id, approver_id, entity_type, entity_id, action_type,
                                       status, requester_comments, requested_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, row_version`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		request.RequestedByID,
		request.ApproverID,
		request.EntityType,
		request.EntityID,
		request.ActionType,
		request.Status,
		request.RequesterComments,
		request.RequestedAt,
	).Scan(&request.ID, &request.RowVersion)
}

func (r *approvalRepository) Update(ctx context.Context, request *domain.ApprovalRequest) error {
	const query = `
        UPDATE approval_requests SET status=$1, approver_comments=$2, action_date=$3, row_version=row_version+1
        WHERE id=$4 AND row_version=$5`
	cmd, err := persistence.QuerierFrom(ctx, r.pool).Exec(ctx, query,
		request.Status,
		request.ApproverComments,
		request.ActionDate,
		request.ID,
		request.RowVersion,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	request.RowVersion++
	return nil
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	const query = `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id=$1`
	var request domain.ApprovalRequest
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.RequestedByID,
		&request.ApproverID,
		&request.EntityType,
		&request.EntityID,
		&request.ActionType,
		&request.Status,
		&request.RequesterComments,
		&request.ApproverComments,
		&request.RequestedAt,
		&request.ActionDate,
		&request.RowVersion,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *approvalRepository) ListPendingByApprover(ctx context.Context, approverID string) ([]domain.ApprovalRequest, error) {
	const query = `SELECT ` + approvalColumns + `
        FROM approval_requests WHERE approver_id=$1 AND status=$2 ORDER BY requested_at ASC`
	rows, err := persistence.QuerierFrom(ctx, r.pool).Query(ctx, query, approverID, domain.ApprovalStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalRequest
	for rows.Next() {
		var request domain.ApprovalRequest
		if err := rows.Scan(
			&request.ID,
			&request.RequestedByID,
			&request.ApproverID,
			&request.EntityType,
			&request.EntityID,
			&request.ActionType,
			&request.Status,
			&request.RequesterComments,
			&request.ApproverComments,
			&request.RequestedAt,
			&request.ActionDate,
			&request.RowVersion,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
