package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/jobboard/internal/rating"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const reviewColumns = `id, job_id, jobseeker_id, rating, review, applied_to_job, worked_at_company, anonymous, status, helpful, not_helpful, created, updated`

func (r *SQLiteRepo) CreateReview(ctx context.Context, rv *models.Review) (int64, error) {
	if rv == nil {
		return 0, fmt.Errorf("review is nil")
	}

	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO job_reviews (job_id, jobseeker_id, rating, review, applied_to_job, worked_at_company, anonymous, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)`,
			rv.JobID, rv.JobseekerID, rv.Rating, rv.Review, boolToInt(rv.AppliedToJob), boolToInt(rv.WorkedAtCompany), boolToInt(rv.Anonymous), ts, ts)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		_, err = recomputeRatings(ctx, tx, rv.JobID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	rv, err := scanReview(r.conn.QueryRow(ctx, `SELECT `+reviewColumns+` FROM job_reviews WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rv, err
}

// UpdateReview rewrites the editable fields of a review and refreshes the
// aggregates of its job and employer.
func (r *SQLiteRepo) UpdateReview(ctx context.Context, rv *models.Review) error {
	if rv == nil {
		return fmt.Errorf("review is nil")
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		var jobID int64
		if err := tx.QueryRowContext(ctx, `SELECT job_id FROM job_reviews WHERE id = ?`, rv.ID).Scan(&jobID); err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}

		_, err := tx.ExecContext(ctx, `UPDATE job_reviews SET rating = ?, review = ?, applied_to_job = ?, worked_at_company = ?, anonymous = ?, updated = ? WHERE id = ?`,
			rv.Rating, rv.Review, boolToInt(rv.AppliedToJob), boolToInt(rv.WorkedAtCompany), boolToInt(rv.Anonymous), now(), rv.ID)
		if err != nil {
			return err
		}

		_, err = recomputeRatings(ctx, tx, jobID)
		return err
	})
}

func (r *SQLiteRepo) DeleteReview(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var jobID int64
		if err := tx.QueryRowContext(ctx, `SELECT job_id FROM job_reviews WHERE id = ?`, id).Scan(&jobID); err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM job_reviews WHERE id = ?`, id); err != nil {
			return err
		}

		_, err := recomputeRatings(ctx, tx, jobID)
		return err
	})
}

func (r *SQLiteRepo) SetReviewStatus(ctx context.Context, id int64, status models.ReviewStatus) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var jobID int64
		if err := tx.QueryRowContext(ctx, `SELECT job_id FROM job_reviews WHERE id = ?`, id).Scan(&jobID); err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE job_reviews SET status = ?, updated = ? WHERE id = ?`, status, now(), id); err != nil {
			return err
		}

		_, err := recomputeRatings(ctx, tx, jobID)
		return err
	})
}

// ListActiveReviews lists the visible reviews of a job, newest first.
func (r *SQLiteRepo) ListActiveReviews(ctx context.Context, jobID int64, limit, offset int) ([]models.Review, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT `+reviewColumns+` FROM job_reviews WHERE job_id = ? AND status = 'active' ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) AddReviewFlag(ctx context.Context, reviewID, userID int64, reason string, threshold int) (bool, error) {
	flagged := false
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			jobID  int64
			status string
		)
		if err := tx.QueryRowContext(ctx, `SELECT job_id, status FROM job_reviews WHERE id = ?`, reviewID).Scan(&jobID, &status); err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO review_flags (review_id, user_id, reason, created) VALUES (?, ?, ?, ?)`, reviewID, userID, reason, now())
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_flags WHERE review_id = ?`, reviewID).Scan(&count); err != nil {
			return err
		}

		flagged = models.ReviewStatus(status) == models.ReviewFlagged
		if status != string(models.ReviewActive) || threshold <= 0 || count < threshold {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE job_reviews SET status = 'flagged', updated = ? WHERE id = ?`, now(), reviewID); err != nil {
			return err
		}
		flagged = true

		_, err = recomputeRatings(ctx, tx, jobID)
		return err
	})
	if err != nil {
		return false, err
	}

	return flagged, nil
}

// SetReviewVote records userID's helpfulness vote. A repeated vote is a no-op
// and a changed vote moves one count from the old counter to the new one.
func (r *SQLiteRepo) SetReviewVote(ctx context.Context, reviewID, userID int64, helpful bool) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM job_reviews WHERE id = ?`, reviewID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return err
		}

		var previous int
		err := tx.QueryRowContext(ctx, `SELECT helpful FROM review_votes WHERE review_id = ? AND user_id = ?`, reviewID, userID).Scan(&previous)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx, `INSERT INTO review_votes (review_id, user_id, helpful, created) VALUES (?, ?, ?, ?)`, reviewID, userID, boolToInt(helpful), now()); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `UPDATE job_reviews SET `+voteColumn(helpful)+` = `+voteColumn(helpful)+` + 1 WHERE id = ?`, reviewID)
			return err
		case err != nil:
			return err
		}

		if (previous != 0) == helpful {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE review_votes SET helpful = ? WHERE review_id = ? AND user_id = ?`, boolToInt(helpful), reviewID, userID); err != nil {
			return err
		}
		from, to := voteColumn(!helpful), voteColumn(helpful)
		_, err = tx.ExecContext(ctx, `UPDATE job_reviews SET `+to+` = `+to+` + 1, `+from+` = MAX(`+from+` - 1, 0) WHERE id = ?`, reviewID)
		return err
	})
}

func voteColumn(helpful bool) string {
	if helpful {
		return "helpful"
	}
	return "not_helpful"
}

func (r *SQLiteRepo) RecomputeJobRating(ctx context.Context, jobID int64) (*models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		summary, err = recomputeRatings(ctx, tx, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// recomputeRatings rescans the active reviews of jobID and of every job owned
// by the same employer, then overwrites both stored aggregates. It returns the
// job aggregate.
func recomputeRatings(ctx context.Context, tx *sql.Tx, jobID int64) (models.RatingSummary, error) {
	var employerID int64
	if err := tx.QueryRowContext(ctx, `SELECT employer_id FROM job_postings WHERE id = ?`, jobID).Scan(&employerID); err != nil {
		if err == sql.ErrNoRows {
			return models.RatingSummary{}, repository.ErrNotFound
		}
		return models.RatingSummary{}, err
	}

	jobRatings, err := queryRatings(ctx, tx, `SELECT rating FROM job_reviews WHERE job_id = ? AND status = 'active'`, jobID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	jobSummary := rating.Aggregate(jobRatings)
	if err := storeAggregate(ctx, tx, "job_postings", "id", jobID, jobSummary); err != nil {
		return models.RatingSummary{}, err
	}

	employerRatings, err := queryRatings(ctx, tx, `SELECT r.rating FROM job_reviews r JOIN job_postings j ON j.id = r.job_id WHERE j.employer_id = ? AND r.status = 'active'`, employerID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	if err := storeAggregate(ctx, tx, "employer_profiles", "user_id", employerID, rating.Aggregate(employerRatings)); err != nil {
		return models.RatingSummary{}, err
	}

	return jobSummary, nil
}

func queryRatings(ctx context.Context, tx *sql.Tx, query string, arg int64) ([]int, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func storeAggregate(ctx context.Context, tx *sql.Tx, table, keyCol string, key int64, s models.RatingSummary) error {
	b := rating.Buckets(s)
	_, err := tx.ExecContext(ctx, `UPDATE `+table+` SET average_rating = ?, review_count = ?, rating_1 = ?, rating_2 = ?, rating_3 = ?, rating_4 = ?, rating_5 = ? WHERE `+keyCol+` = ?`,
		s.AverageRating, s.ReviewCount, b[0], b[1], b[2], b[3], b[4], key)
	return err
}

func scanReview(row scanner) (*models.Review, error) {
	var (
		rv                         models.Review
		applied, worked, anonymous int
	)
	if err := row.Scan(&rv.ID, &rv.JobID, &rv.JobseekerID, &rv.Rating, &rv.Review, &applied, &worked, &anonymous, &rv.Status, &rv.Helpful, &rv.NotHelpful, &rv.Created, &rv.Updated); err != nil {
		return nil, err
	}
	rv.AppliedToJob = applied != 0
	rv.WorkedAtCompany = worked != 0
	rv.Anonymous = anonymous != 0
	return &rv, nil
}
