package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const roleRequestColumns = `id, user_id, previous_role, active_role, reason, status, submitted_at, decided_at, decided_by, rejection_reason`

// CreateRoleRequest inserts the request and moves the user into the
// multi-role pending state, acting as their previous role until a decision.
// A user may hold at most one pending request.
func (r *SQLiteRepo) CreateRoleRequest(ctx context.Context, rr *models.RoleRequest) (int64, error) {
	if rr == nil {
		return 0, fmt.Errorf("role request is nil")
	}

	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO role_requests (user_id, previous_role, active_role, reason, status, submitted_at) VALUES (?, ?, ?, ?, 'pending', ?)`, rr.UserID, rr.PreviousRole, rr.ActiveRole, rr.Reason, ts)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `UPDATE users SET role = 'multi-role', active_role = ?, updated = ? WHERE id = ? AND role IN ('jobseeker', 'employer')`, rr.PreviousRole, ts, rr.UserID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetRoleRequest(ctx context.Context, id int64) (*models.RoleRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+roleRequestColumns+` FROM role_requests WHERE id = ?`, id)

	var (
		rr models.RoleRequest
		m  moderationCols
	)
	dest := append([]any{&rr.ID, &rr.UserID, &rr.PreviousRole, &rr.ActiveRole, &rr.Reason}, m.dest()...)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rr.Moderation = m.moderation()

	return &rr, nil
}
