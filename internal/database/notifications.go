package database

import (
	"context"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

const (
	InsertNotificationQuery = `
		INSERT INTO
			notifications (user_id, type, title, message)
		VALUES ($1, $2, $3, $4)
	`
	SelectNotificationsQuery = `
		SELECT
			id,
			type,
			title,
			message,
			read,
			created_at
		FROM
			notifications
		WHERE
			user_id = $1
		ORDER BY
			created_at DESC
		LIMIT 100
	`
	MarkNotificationsReadQuery = `
		UPDATE
			notifications
		SET
			read = TRUE
		WHERE
			user_id = $1 AND NOT read
	`
)

func (d *Database) CreateNotification(ctx context.Context, n models.Notification) error {
	if _, err := d.db.Exec(ctx, InsertNotificationQuery, n.UserID, n.Type, n.Title, n.Message); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (d *Database) FindNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := d.db.Query(ctx, SelectNotificationsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		n := models.Notification{UserID: userID}
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt.Time); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return result, nil
}

// MarkNotificationsRead flags every unread notification of the user and
// reports how many changed.
func (d *Database) MarkNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tag, err := d.db.Exec(ctx, MarkNotificationsReadQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
