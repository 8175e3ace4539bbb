package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
)

func (r *SQLiteRepo) CreateActivity(ctx context.Context, a *models.Activity) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("activity is nil")
	}

	metadata := string(a.Metadata)
	if metadata == "" {
		metadata = "{}"
	}
	created := a.Created
	if created == 0 {
		created = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO activity_log (user_id, type, message, metadata, created) VALUES (?, ?, ?, ?, ?)`, a.UserID, a.Type, a.Message, metadata, created)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListActivitiesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Activity, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, type, message, metadata, created FROM activity_log WHERE user_id = ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepo) CountActivitiesByUser(ctx context.Context, userID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log WHERE user_id = ?`, userID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) ListActivities(ctx context.Context, limit, offset int) ([]models.Activity, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, type, message, metadata, created FROM activity_log ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepo) DeleteAllActivities(ctx context.Context) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM activity_log`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	var out []models.Activity
	for rows.Next() {
		var (
			a        models.Activity
			metadata string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Message, &metadata, &a.Created); err != nil {
			return nil, err
		}
		a.Metadata = []byte(metadata)

		out = append(out, a)
	}

	return out, rows.Err()
}
