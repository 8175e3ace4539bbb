package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/internal/rating"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const employerColumns = `id, user_id, company_name, description, permit_ref, status, submitted_at, decided_at, decided_by, rejection_reason, average_rating, review_count, rating_1, rating_2, rating_3, rating_4, rating_5, updated`

// CreateEmployerProfile stores a profile in the pending state.
func (r *SQLiteRepo) CreateEmployerProfile(ctx context.Context, p *models.EmployerProfile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("employer profile is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO employer_profiles (user_id, company_name, description, permit_ref, status, submitted_at, updated) VALUES (?, ?, ?, ?, 'pending', ?, ?)`, p.UserID, p.CompanyName, p.Description, p.PermitRef, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEmployerProfile(ctx context.Context, id int64) (*models.EmployerProfile, error) {
	return scanEmployer(r.conn.QueryRow(ctx, `SELECT `+employerColumns+` FROM employer_profiles WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetEmployerProfileByUser(ctx context.Context, userID int64) (*models.EmployerProfile, error) {
	return scanEmployer(r.conn.QueryRow(ctx, `SELECT `+employerColumns+` FROM employer_profiles WHERE user_id = ?`, userID))
}

func scanEmployer(row scanner) (*models.EmployerProfile, error) {
	var (
		p       models.EmployerProfile
		m       moderationCols
		avg     float64
		count   int
		buckets [5]int
	)
	dest := []any{&p.ID, &p.UserID, &p.CompanyName, &p.Description, &p.PermitRef}
	dest = append(dest, m.dest()...)
	dest = append(dest, &avg, &count, &buckets[0], &buckets[1], &buckets[2], &buckets[3], &buckets[4], &p.Updated)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Moderation = m.moderation()
	p.Rating = rating.FromColumns(avg, count, buckets)

	return &p, nil
}
