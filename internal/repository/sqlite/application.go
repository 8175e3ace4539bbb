package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const applicationColumns = `id, job_id, jobseeker_id, cover_letter, status, created, updated`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO applications (job_id, jobseeker_id, cover_letter, status, created, updated) VALUES (?, ?, ?, 'pending', ?, ?)`, a.JobID, a.JobseekerID, a.CoverLetter, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	var a models.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.JobseekerID, &a.CoverLetter, &a.Status, &a.Created, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *SQLiteRepo) ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY created DESC, id DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *SQLiteRepo) ListApplicationsByJobseeker(ctx context.Context, jobseekerID int64) ([]models.Application, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+applicationColumns+` FROM applications WHERE jobseeker_id = ? ORDER BY created DESC, id DESC`, jobseekerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *SQLiteRepo) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	res, err := r.conn.Exec(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) HasApplied(ctx context.Context, jobID, jobseekerID int64) (bool, error) {
	var exists int
	err := r.conn.QueryRow(ctx, `SELECT 1 FROM applications WHERE job_id = ? AND jobseeker_id = ?`, jobID, jobseekerID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func collectApplications(rows *sql.Rows) ([]models.Application, error) {
	var out []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.JobseekerID, &a.CoverLetter, &a.Status, &a.Created, &a.Updated); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
