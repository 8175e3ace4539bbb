package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.EmployerRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.RoleRequestRepo = (*SQLiteRepo)(nil)
var _ repository.SubjectRepo = (*SQLiteRepo)(nil)
var _ repository.ApplicationRepo = (*SQLiteRepo)(nil)
var _ repository.ReviewRepo = (*SQLiteRepo)(nil)
var _ repository.NotificationRepo = (*SQLiteRepo)(nil)
var _ repository.ActivityRepo = (*SQLiteRepo)(nil)
var _ repository.SchemaRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// Repository exposes r through every repository contract.
func (r *SQLiteRepo) Repository() *repository.Repository {
	return &repository.Repository{
		User:         r,
		Employer:     r,
		Job:          r,
		RoleRequest:  r,
		Subject:      r,
		Application:  r,
		Review:       r,
		Notification: r,
		Activity:     r,
		Schema:       r,
	}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// normalizePage applies the listing defaults shared by all list queries.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// moderationCols holds the nullable decision columns while scanning.
type moderationCols struct {
	status    string
	submitted int64
	decidedAt sql.NullInt64
	decidedBy sql.NullInt64
	reason    sql.NullString
}

func (m *moderationCols) dest() []any {
	return []any{&m.status, &m.submitted, &m.decidedAt, &m.decidedBy, &m.reason}
}

func (m *moderationCols) moderation() models.Moderation {
	out := models.Moderation{Status: models.ModerationStatus(m.status), SubmittedAt: m.submitted}
	if m.decidedAt.Valid {
		v := m.decidedAt.Int64
		out.DecidedAt = &v
	}
	if m.decidedBy.Valid {
		v := m.decidedBy.Int64
		out.DecidedBy = &v
	}
	if m.reason.Valid {
		s := m.reason.String
		out.RejectionReason = &s
	}
	return out
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
