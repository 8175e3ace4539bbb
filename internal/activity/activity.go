// Package activity records the append-only activity log and validates entry
// metadata against per-type JSON schemas.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Activity types written by the services.
const (
	TypeProfileUpdated     = "profile.updated"
	TypeRoleSwitched       = "profile.role_switched"
	TypeModerationApproved = "moderation.approved"
	TypeModerationRejected = "moderation.rejected"
	TypeSubmitted          = "moderation.submitted"
	TypeReviewCreated      = "review.created"
	TypeReviewModerated    = "review.moderated"
	TypeApplicationCreated = "application.created"
)

type Service struct {
	repo    repository.ActivityRepo
	schemas repository.SchemaRepo
	loader  *Loader
	logger  *slog.Logger
}

func NewService(repo repository.ActivityRepo, schemas repository.SchemaRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{repo: repo, schemas: schemas, loader: NewLoader(schemas), logger: logger}
}

// Record appends an activity entry. metadata is marshalled to JSON (nil
// becomes {}) and must satisfy the schema registered for typ.
func (s *Service) Record(ctx context.Context, userID int64, typ, message string, metadata any) (int64, error) {
	if strings.TrimSpace(typ) == "" {
		return 0, apperr.Validation("activity type is required")
	}

	raw := []byte("{}")
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return 0, apperr.Validation(fmt.Sprintf("metadata is not serialisable: %v", err))
		}
		raw = b
	}

	if err := s.validate(ctx, typ, raw); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateActivity(ctx, &models.Activity{UserID: userID, Type: typ, Message: message, Metadata: raw})
	if err != nil {
		return 0, apperr.Internal("record activity", err)
	}
	return id, nil
}

// Log records an activity and only logs a failure. Services use it for
// audit entries that must not fail the operation they describe.
func (s *Service) Log(ctx context.Context, userID int64, typ, message string, metadata any) {
	if s == nil {
		return
	}
	if _, err := s.Record(ctx, userID, typ, message, metadata); err != nil {
		s.logger.Warn("record activity failed", "type", typ, "user_id", userID, "err", err)
	}
}

func (s *Service) validate(ctx context.Context, typ string, raw []byte) error {
	schema, err := s.loader.Schema(ctx, typ)
	if err != nil {
		return apperr.Internal("load metadata schema", err)
	}
	if schema == nil {
		return nil
	}

	verrs, err := schema.ValidateBytes(ctx, raw)
	if err != nil {
		return apperr.Validation(fmt.Sprintf("metadata is invalid: %v", err))
	}
	if len(verrs) > 0 {
		fields := make(map[string]string, len(verrs))
		for _, v := range verrs {
			path := v.PropertyPath
			if path == "" {
				path = "/"
			}
			fields[path] = v.Message
		}
		return apperr.ValidationFields("metadata does not match schema", fields)
	}
	return nil
}

// Page is one page of activity entries.
type Page struct {
	Items  []models.Activity `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func (s *Service) ListByUser(ctx context.Context, userID int64, limit, offset int) (*Page, error) {
	items, err := s.repo.ListActivitiesByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list activities", err)
	}
	total, err := s.repo.CountActivitiesByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("count activities", err)
	}
	if items == nil {
		items = []models.Activity{}
	}
	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) ListAll(ctx context.Context, actor *models.User, limit, offset int) ([]models.Activity, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can list all activity")
	}
	items, err := s.repo.ListActivities(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list activities", err)
	}
	if items == nil {
		items = []models.Activity{}
	}
	return items, nil
}

func (s *Service) ClearAll(ctx context.Context, actor *models.User) (int64, error) {
	if !actor.IsAdmin() {
		return 0, apperr.Permission("only admins can clear activity")
	}
	n, err := s.repo.DeleteAllActivities(ctx)
	if err != nil {
		return 0, apperr.Internal("clear activities", err)
	}
	s.logger.Info("activity log cleared", "admin_id", actor.ID, "removed", n)
	return n, nil
}

// PutSchema compiles and stores the metadata schema for activityType.
func (s *Service) PutSchema(ctx context.Context, actor *models.User, activityType, description string, schemaJSON json.RawMessage) error {
	if !actor.IsAdmin() {
		return apperr.Permission("only admins can manage schemas")
	}
	if strings.TrimSpace(activityType) == "" {
		return apperr.Validation("activity_type is required")
	}
	if _, err := Compile(schemaJSON); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid schema json: %v", err))
	}

	if err := s.schemas.UpsertSchema(ctx, activityType, description, string(schemaJSON)); err != nil {
		return apperr.Internal("store schema", err)
	}
	s.loader.Invalidate()
	return nil
}

func (s *Service) GetSchema(ctx context.Context, actor *models.User, activityType string) (*models.MetadataSchema, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can manage schemas")
	}
	row, err := s.schemas.GetSchema(ctx, activityType)
	if err != nil {
		return nil, apperr.Internal("get schema", err)
	}
	if row == nil {
		return nil, apperr.NotFound("schema not found")
	}
	return row, nil
}

func (s *Service) ListSchemas(ctx context.Context, actor *models.User) ([]models.MetadataSchema, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can manage schemas")
	}
	rows, err := s.schemas.ListSchemas(ctx)
	if err != nil {
		return nil, apperr.Internal("list schemas", err)
	}
	if rows == nil {
		rows = []models.MetadataSchema{}
	}
	return rows, nil
}

func (s *Service) DeleteSchema(ctx context.Context, actor *models.User, activityType string) error {
	if !actor.IsAdmin() {
		return apperr.Permission("only admins can manage schemas")
	}
	if err := s.schemas.DeleteSchema(ctx, activityType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("schema not found")
		}
		return apperr.Internal("delete schema", err)
	}
	s.loader.Invalidate()
	return nil
}
