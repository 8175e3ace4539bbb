package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/internal/rating"
	"github.com/garnizeh/jobboard/pkg/models"
)

const jobColumns = `id, employer_id, title, description, location, salary, status, submitted_at, decided_at, decided_by, rejection_reason, average_rating, review_count, rating_1, rating_2, rating_3, rating_4, rating_5, updated`

// CreateJobPosting stores a posting in the pending state.
func (r *SQLiteRepo) CreateJobPosting(ctx context.Context, j *models.JobPosting) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job posting is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO job_postings (employer_id, title, description, location, salary, status, submitted_at, updated) VALUES (?, ?, ?, ?, ?, 'pending', ?, ?)`, j.EmployerID, j.Title, j.Description, j.Location, j.Salary, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobPosting(ctx context.Context, id int64) (*models.JobPosting, error) {
	j, err := scanJob(r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

// ListJobPostingsByStatus lists postings newest activity first.
func (r *SQLiteRepo) ListJobPostingsByStatus(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.JobPosting, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE status = ? ORDER BY COALESCE(decided_at, submitted_at) DESC, id DESC LIMIT ? OFFSET ?`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (r *SQLiteRepo) ListJobPostingsByEmployer(ctx context.Context, employerID int64) ([]models.JobPosting, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE employer_id = ? ORDER BY submitted_at DESC, id DESC`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]models.JobPosting, error) {
	var out []models.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}

	return out, rows.Err()
}

func scanJob(row scanner) (*models.JobPosting, error) {
	var (
		j       models.JobPosting
		m       moderationCols
		avg     float64
		count   int
		buckets [5]int
	)
	dest := []any{&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location, &j.Salary}
	dest = append(dest, m.dest()...)
	dest = append(dest, &avg, &count, &buckets[0], &buckets[1], &buckets[2], &buckets[3], &buckets[4], &j.Updated)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	j.Moderation = m.moderation()
	j.Rating = rating.FromColumns(avg, count, buckets)

	return &j, nil
}
