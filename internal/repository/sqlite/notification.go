package sqlite

import (
	"context"
	"database/sql"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const notificationColumns = `id, recipient_id, audience, title, message, type, is_read, link, related_job_id, application_id, created`

// CreateNotifications stores ns atomically and returns their ids in order.
func (r *SQLiteRepo) CreateNotifications(ctx context.Context, ns []models.Notification) ([]int64, error) {
	if len(ns) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(ns))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO notifications (recipient_id, audience, title, message, type, is_read, link, related_job_id, application_id, created) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		ts := now()
		for _, n := range ns {
			created := n.Created
			if created == 0 {
				created = ts
			}
			res, err := stmt.ExecContext(ctx, n.RecipientID, n.Audience, n.Title, n.Message, n.Type, n.Link, nullableInt64(n.RelatedJobID), nullableInt64(n.ApplicationID), created)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *SQLiteRepo) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := scanNotification(r.conn.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// ListNotifications returns the recipient's notifications, newest first.
func (r *SQLiteRepo) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	limit, offset = normalizePage(limit, offset)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.conn.QueryRows(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`, recipientID).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) MarkAllNotificationsRead(ctx context.Context, recipientID int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepo) DeleteNotification(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteAllNotifications(ctx context.Context) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM notifications`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(row scanner) (*models.Notification, error) {
	var (
		n             models.Notification
		isRead        int
		relatedJobID  sql.NullInt64
		applicationID sql.NullInt64
	)
	if err := row.Scan(&n.ID, &n.RecipientID, &n.Audience, &n.Title, &n.Message, &n.Type, &isRead, &n.Link, &relatedJobID, &applicationID, &n.Created); err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	if relatedJobID.Valid {
		v := relatedJobID.Int64
		n.RelatedJobID = &v
	}
	if applicationID.Valid {
		v := applicationID.Int64
		n.ApplicationID = &v
	}
	return &n, nil
}
