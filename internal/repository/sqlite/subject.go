package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// subjectTable maps a moderation kind onto its table.
type subjectTable struct {
	name       string
	ownerCol   string
	titleExpr  string
	hasUpdated bool
}

var subjectTables = map[models.SubjectKind]subjectTable{
	models.KindEmployer: {name: "employer_profiles", ownerCol: "user_id", titleExpr: "company_name", hasUpdated: true},
	models.KindJob:      {name: "job_postings", ownerCol: "employer_id", titleExpr: "title", hasUpdated: true},
	models.KindRole:     {name: "role_requests", ownerCol: "user_id", titleExpr: "'multi-role request'"},
}

func tableFor(kind models.SubjectKind) (subjectTable, error) {
	t, ok := subjectTables[kind]
	if !ok {
		return subjectTable{}, fmt.Errorf("unknown subject kind %q", kind)
	}
	return t, nil
}

func (t subjectTable) selectColumns() string {
	return `id, ` + t.ownerCol + `, ` + t.titleExpr + `, status, submitted_at, decided_at, decided_by, rejection_reason`
}

func (r *SQLiteRepo) GetSubject(ctx context.Context, kind models.SubjectKind, id int64) (*models.Subject, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	s, err := scanSubject(kind, r.conn.QueryRow(ctx, `SELECT `+t.selectColumns()+` FROM `+t.name+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// DecideSubject moves a pending subject to its final state. The update is
// conditional on status = 'pending'; a subject that was already decided is
// left untouched and false is returned. A missing subject yields
// repository.ErrNotFound.
//
// Role requests also update the requesting user in the same transaction:
// approval grants the multi role and keeps the active role chosen at
// submission, rejection restores the previous role.
func (r *SQLiteRepo) DecideSubject(ctx context.Context, kind models.SubjectKind, id int64, d models.Decision) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	if d.Status != models.StatusApproved && d.Status != models.StatusRejected {
		return false, fmt.Errorf("decision status must be approved or rejected, got %q", d.Status)
	}
	if d.DecidedAt == 0 {
		d.DecidedAt = now()
	}

	var reason any
	if d.Status == models.StatusRejected {
		reason = d.Reason
	}

	applied := false
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		set := `status = ?, decided_at = ?, decided_by = ?, rejection_reason = ?`
		args := []any{d.Status, d.DecidedAt, d.DecidedBy, reason}
		if t.hasUpdated {
			set += `, updated = ?`
			args = append(args, d.DecidedAt)
		}
		args = append(args, id)

		res, err := tx.ExecContext(ctx, `UPDATE `+t.name+` SET `+set+` WHERE id = ? AND status = 'pending'`, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+t.name+` WHERE id = ?`, id).Scan(&exists)
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}
		applied = true

		if kind == models.KindRole {
			return applyRoleDecision(ctx, tx, id, d)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

func applyRoleDecision(ctx context.Context, tx *sql.Tx, requestID int64, d models.Decision) error {
	var (
		userID       int64
		previousRole string
		activeRole   string
	)
	err := tx.QueryRowContext(ctx, `SELECT user_id, previous_role, active_role FROM role_requests WHERE id = ?`, requestID).Scan(&userID, &previousRole, &activeRole)
	if err != nil {
		return err
	}

	if d.Status == models.StatusApproved {
		_, err = tx.ExecContext(ctx, `UPDATE users SET role = 'multi', active_role = ?, updated = ? WHERE id = ?`, activeRole, d.DecidedAt, userID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE users SET role = ?, active_role = '', updated = ? WHERE id = ?`, previousRole, d.DecidedAt, userID)
	}
	return err
}

// ListSubjects lists subjects of kind, most recently changed first. An empty
// status lists every state.
func (r *SQLiteRepo) ListSubjects(ctx context.Context, kind models.SubjectKind, status models.ModerationStatus, limit, offset int) ([]models.Subject, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	query := `SELECT ` + t.selectColumns() + ` FROM ` + t.name
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY COALESCE(decided_at, submitted_at) DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Subject
	for rows.Next() {
		s, err := scanSubject(kind, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	return out, rows.Err()
}

func scanSubject(kind models.SubjectKind, row scanner) (*models.Subject, error) {
	var (
		s models.Subject
		m moderationCols
	)
	dest := append([]any{&s.ID, &s.OwnerID, &s.Title}, m.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Kind = kind
	s.Moderation = m.moderation()

	return &s, nil
}
