// Package moderation runs the pending -> approved | rejected workflow shared
// by employer profiles, job postings and multi-role requests.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/notify"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

type Service struct {
	repo      *repository.Repository
	activity  *activity.Service
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo *repository.Repository, act *activity.Service, pub notify.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = notify.Nop{}
	}
	return &Service{repo: repo, activity: act, publisher: pub, logger: logger, now: time.Now}
}

type EmployerInput struct {
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
	PermitRef   string `json:"permit_ref"`
}

type JobInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
}

type RoleRequestInput struct {
	// ActiveRole is the role the user acts as once approved. Empty keeps the
	// current role.
	ActiveRole models.Role `json:"active_role"`
	Reason     string      `json:"reason"`
}

// SubmitEmployer creates the actor's employer profile in the pending state.
func (s *Service) SubmitEmployer(ctx context.Context, actor *models.User, in EmployerInput) (*models.EmployerProfile, error) {
	if !actor.Acts(models.RoleEmployer) {
		return nil, apperr.Permission("only employers can submit an employer profile")
	}
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.CompanyName == "" {
		return nil, apperr.ValidationFields("invalid employer profile", map[string]string{"company_name": "required"})
	}

	id, err := s.repo.Employer.CreateEmployerProfile(ctx, &models.EmployerProfile{
		UserID:      actor.ID,
		CompanyName: in.CompanyName,
		Description: in.Description,
		PermitRef:   in.PermitRef,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("employer profile already exists")
		}
		return nil, apperr.Internal("create employer profile", err)
	}

	p, err := s.repo.Employer.GetEmployerProfile(ctx, id)
	if err != nil || p == nil {
		return nil, apperr.Internal("load employer profile", err)
	}

	s.submitted(ctx, actor, models.KindEmployer, id, p.CompanyName)
	return p, nil
}

// SubmitJob creates a pending job posting. The actor needs an approved
// employer profile.
func (s *Service) SubmitJob(ctx context.Context, actor *models.User, in JobInput) (*models.JobPosting, error) {
	if !actor.Acts(models.RoleEmployer) {
		return nil, apperr.Permission("only employers can post jobs")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.ValidationFields("invalid job posting", map[string]string{"title": "required"})
	}

	profile, err := s.repo.Employer.GetEmployerProfileByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("load employer profile", err)
	}
	if profile == nil || profile.Status != models.StatusApproved {
		return nil, apperr.Permission("an approved employer profile is required to post jobs")
	}

	id, err := s.repo.Job.CreateJobPosting(ctx, &models.JobPosting{
		EmployerID:  actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Salary:      in.Salary,
	})
	if err != nil {
		return nil, apperr.Internal("create job posting", err)
	}

	j, err := s.repo.Job.GetJobPosting(ctx, id)
	if err != nil || j == nil {
		return nil, apperr.Internal("load job posting", err)
	}

	s.submitted(ctx, actor, models.KindJob, id, j.Title)
	return j, nil
}

// SubmitRoleRequest asks for the multi role. Until decided the user is
// marked multi-role and keeps acting as their current role.
func (s *Service) SubmitRoleRequest(ctx context.Context, actor *models.User, in RoleRequestInput) (*models.RoleRequest, error) {
	if actor.Role != models.RoleJobseeker && actor.Role != models.RoleEmployer {
		if actor.Role == models.RoleMultiPending {
			return nil, apperr.Duplicate("a multi-role request is already pending")
		}
		return nil, apperr.Permission("only jobseekers and employers can request the multi role")
	}
	if in.ActiveRole == "" {
		in.ActiveRole = actor.Role
	}
	if in.ActiveRole != models.RoleJobseeker && in.ActiveRole != models.RoleEmployer {
		return nil, apperr.ValidationFields("invalid role request", map[string]string{"active_role": "must be jobseeker or employer"})
	}

	id, err := s.repo.RoleRequest.CreateRoleRequest(ctx, &models.RoleRequest{
		UserID:       actor.ID,
		PreviousRole: actor.Role,
		ActiveRole:   in.ActiveRole,
		Reason:       strings.TrimSpace(in.Reason),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Duplicate("a multi-role request is already pending")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.InvalidState("user cannot request the multi role in its current state")
		}
		return nil, apperr.Internal("create role request", err)
	}

	rr, err := s.repo.RoleRequest.GetRoleRequest(ctx, id)
	if err != nil || rr == nil {
		return nil, apperr.Internal("load role request", err)
	}

	s.submitted(ctx, actor, models.KindRole, id, actor.Name)
	return rr, nil
}

func (s *Service) submitted(ctx context.Context, actor *models.User, kind models.SubjectKind, id int64, title string) {
	s.logger.Info("subject submitted", "kind", kind, "subject_id", id, "user_id", actor.ID)
	s.activity.Log(ctx, actor.ID, activity.TypeSubmitted, fmt.Sprintf("submitted %s for review", kind), map[string]any{"kind": string(kind), "subject_id": id})
	notify.Emit(ctx, s.publisher, s.logger, notify.Event{
		Type:      notify.EventSubjectSubmitted,
		ActorID:   actor.ID,
		Kind:      kind,
		SubjectID: id,
		OwnerID:   actor.ID,
		Title:     title,
	})
}

// Approve moves a pending subject to approved.
func (s *Service) Approve(ctx context.Context, actor *models.User, kind models.SubjectKind, id int64) (*models.Subject, error) {
	return s.decide(ctx, actor, kind, id, models.StatusApproved, "")
}

// Reject moves a pending subject to rejected. A non-blank reason is required.
func (s *Service) Reject(ctx context.Context, actor *models.User, kind models.SubjectKind, id int64, reason string) (*models.Subject, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.ValidationFields("rejection reason is required", map[string]string{"reason": "required"})
	}
	return s.decide(ctx, actor, kind, id, models.StatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, actor *models.User, kind models.SubjectKind, id int64, status models.ModerationStatus, reason string) (*models.Subject, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can moderate")
	}
	if !kind.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown subject kind %q", kind))
	}

	d := models.Decision{Status: status, DecidedBy: actor.ID, DecidedAt: s.now().UTC().UnixMilli(), Reason: reason}
	applied, err := s.repo.Subject.DecideSubject(ctx, kind, id, d)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("%s %d not found", kind, id))
		}
		return nil, apperr.Internal("decide subject", err)
	}
	if !applied {
		return nil, apperr.InvalidState(fmt.Sprintf("%s %d is not pending", kind, id))
	}

	subject, err := s.repo.Subject.GetSubject(ctx, kind, id)
	if err != nil || subject == nil {
		return nil, apperr.Internal("load decided subject", err)
	}

	s.logger.Info("subject decided", "kind", kind, "subject_id", id, "status", status, "admin_id", actor.ID)

	meta := map[string]any{"kind": string(kind), "subject_id": id}
	evType, actType := notify.EventSubjectApproved, activity.TypeModerationApproved
	if status == models.StatusRejected {
		meta["reason"] = reason
		evType, actType = notify.EventSubjectRejected, activity.TypeModerationRejected
	}
	s.activity.Log(ctx, actor.ID, actType, fmt.Sprintf("%s %s %d", status, kind, id), meta)

	title := subject.Title
	if kind == models.KindRole {
		title = "multi-role request"
	}
	notify.Emit(ctx, s.publisher, s.logger, notify.Event{
		Type:      evType,
		ActorID:   actor.ID,
		Kind:      kind,
		SubjectID: id,
		OwnerID:   subject.OwnerID,
		Title:     title,
		Reason:    reason,
	})

	return subject, nil
}

// ListByStatus lists subjects of one kind, most recently changed first. An
// empty status lists all states.
func (s *Service) ListByStatus(ctx context.Context, actor *models.User, kind models.SubjectKind, status models.ModerationStatus, limit, offset int) ([]models.Subject, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can list moderation queues")
	}
	if !kind.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown subject kind %q", kind))
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", status))
	}

	out, err := s.repo.Subject.ListSubjects(ctx, kind, status, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list subjects", err)
	}
	if out == nil {
		out = []models.Subject{}
	}
	return out, nil
}

// Get returns one subject. Admins see everything, owners see their own.
func (s *Service) Get(ctx context.Context, actor *models.User, kind models.SubjectKind, id int64) (*models.Subject, error) {
	if !kind.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown subject kind %q", kind))
	}
	subject, err := s.repo.Subject.GetSubject(ctx, kind, id)
	if err != nil {
		return nil, apperr.Internal("get subject", err)
	}
	if subject == nil {
		return nil, apperr.NotFound(fmt.Sprintf("%s %d not found", kind, id))
	}
	if !actor.IsAdmin() && subject.OwnerID != actor.ID {
		return nil, apperr.Permission("subject belongs to another user")
	}
	return subject, nil
}

// EmployerProfile returns the actor's own employer profile.
func (s *Service) EmployerProfile(ctx context.Context, actor *models.User) (*models.EmployerProfile, error) {
	p, err := s.repo.Employer.GetEmployerProfileByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("load employer profile", err)
	}
	if p == nil {
		return nil, apperr.NotFound("employer profile not found")
	}
	return p, nil
}
