package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// NotificationRepository stores notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, message, type, related_entity_type, related_entity_id, read, sent_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		notification.RecipientID,
		notification.Message,
		notification.Type,
		notification.RelatedEntityType,
		notification.RelatedEntityID,
		notification.Read,
		notification.SentAt,
	).Scan(&notification.ID)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, recipient_id, message, type, related_entity_type, related_entity_id, read, sent_at
        FROM notifications WHERE recipient_id=$1 ORDER BY sent_at DESC LIMIT $2 OFFSET $3`
	rows, err := persistence.QuerierFrom(ctx, r.pool).Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.RecipientID,
			&notification.Message,
			&notification.Type,
			&notification.RelatedEntityType,
			&notification.RelatedEntityID,
			&notification.Read,
			&notification.SentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`
	cmd, err := persistence.QuerierFrom(ctx, r.pool).Exec(ctx, query, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
