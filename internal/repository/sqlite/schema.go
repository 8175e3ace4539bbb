package sqlite

import (
	"context"
	"database/sql"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// UpsertSchema inserts or replaces the metadata schema for an activity type.
func (r *SQLiteRepo) UpsertSchema(ctx context.Context, activityType, description, schemaJSON string) error {
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO metadata_schemas (activity_type, description, schema_json, created, updated) VALUES (?, ?, ?, ?, ?) ON CONFLICT(activity_type) DO UPDATE SET description = excluded.description, schema_json = excluded.schema_json, updated = excluded.updated`, activityType, description, schemaJSON, ts, ts)
	return err
}

func (r *SQLiteRepo) GetSchema(ctx context.Context, activityType string) (*models.MetadataSchema, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, activity_type, description, schema_json, created, updated FROM metadata_schemas WHERE activity_type = ?`, activityType)
	var s models.MetadataSchema
	if err := row.Scan(&s.ID, &s.ActivityType, &s.Description, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepo) ListSchemas(ctx context.Context) ([]models.MetadataSchema, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, activity_type, description, schema_json, created, updated FROM metadata_schemas ORDER BY activity_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MetadataSchema
	for rows.Next() {
		var s models.MetadataSchema
		if err := rows.Scan(&s.ID, &s.ActivityType, &s.Description, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteSchema(ctx context.Context, activityType string) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM metadata_schemas WHERE activity_type = ?`, activityType)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
