// Package board serves the public side of the job board: approved listings
// and the applications job seekers send to them.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/notify"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const maxCoverLetter = 5000

type Service struct {
	repo      *repository.Repository
	activity  *activity.Service
	publisher notify.Publisher
	logger    *slog.Logger
}

func NewService(repo *repository.Repository, act *activity.Service, pub notify.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = notify.Nop{}
	}
	return &Service{repo: repo, activity: act, publisher: pub, logger: logger}
}

// OpenJobs lists approved jobs, most recently approved first.
func (s *Service) OpenJobs(ctx context.Context, limit, offset int) ([]models.JobPosting, error) {
	jobs, err := s.repo.Job.ListJobPostingsByStatus(ctx, models.StatusApproved, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list jobs", err)
	}
	if jobs == nil {
		jobs = []models.JobPosting{}
	}
	return jobs, nil
}

// Job returns one posting. Jobs that are not approved are only visible to
// their employer and to admins; actor may be nil for anonymous callers.
func (s *Service) Job(ctx context.Context, actor *models.User, id int64) (*models.JobPosting, error) {
	j, err := s.repo.Job.GetJobPosting(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if j == nil {
		return nil, apperr.NotFound("job not found")
	}
	if j.Status != models.StatusApproved {
		if actor == nil || (!actor.IsAdmin() && actor.ID != j.EmployerID) {
			return nil, apperr.NotFound("job not found")
		}
	}
	return j, nil
}

// EmployerJobs lists every posting of the actor regardless of status.
func (s *Service) EmployerJobs(ctx context.Context, actor *models.User) ([]models.JobPosting, error) {
	if !actor.Acts(models.RoleEmployer) {
		return nil, apperr.Permission("only employers have job postings")
	}
	jobs, err := s.repo.Job.ListJobPostingsByEmployer(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("list jobs", err)
	}
	if jobs == nil {
		jobs = []models.JobPosting{}
	}
	return jobs, nil
}

// Apply sends the actor's application to an approved job.
func (s *Service) Apply(ctx context.Context, actor *models.User, jobID int64, coverLetter string) (*models.Application, error) {
	if !actor.Acts(models.RoleJobseeker) {
		return nil, apperr.Permission("only jobseekers can apply to jobs")
	}
	coverLetter = strings.TrimSpace(coverLetter)
	if len(coverLetter) > maxCoverLetter {
		return nil, apperr.ValidationFields("invalid application", map[string]string{"cover_letter": "too long"})
	}

	job, err := s.repo.Job.GetJobPosting(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}
	if job.Status != models.StatusApproved {
		return nil, apperr.InvalidState("job is not accepting applications")
	}

	id, err := s.repo.Application.CreateApplication(ctx, &models.Application{
		JobID:       jobID,
		JobseekerID: actor.ID,
		CoverLetter: coverLetter,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("you have already applied to this job")
		}
		return nil, apperr.Internal("create application", err)
	}

	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application created", "application_id", id, "job_id", jobID, "user_id", actor.ID)
	s.activity.Log(ctx, actor.ID, activity.TypeApplicationCreated, fmt.Sprintf("applied to job %d", jobID), map[string]any{"job_id": jobID, "application_id": id})
	notify.Emit(ctx, s.publisher, s.logger, notify.Event{
		Type:          notify.EventApplicationCreated,
		ActorID:       actor.ID,
		JobID:         jobID,
		ApplicationID: id,
		OwnerID:       job.EmployerID,
		Title:         job.Title,
	})
	return app, nil
}

// ForJob lists the applications of a job to its employer or an admin.
func (s *Service) ForJob(ctx context.Context, actor *models.User, jobID int64) ([]models.Application, error) {
	job, err := s.repo.Job.GetJobPosting(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}
	if !actor.IsAdmin() && (job.EmployerID != actor.ID || !actor.Acts(models.RoleEmployer)) {
		return nil, apperr.Permission("job belongs to another employer")
	}

	apps, err := s.repo.Application.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("list applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// Mine lists the actor's own applications.
func (s *Service) Mine(ctx context.Context, actor *models.User) ([]models.Application, error) {
	apps, err := s.repo.Application.ListApplicationsByJobseeker(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("list applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// SetStatus lets the job's employer move an application along and tells the
// applicant.
func (s *Service) SetStatus(ctx context.Context, actor *models.User, id int64, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, apperr.ValidationFields("invalid status", map[string]string{"status": "must be pending, reviewed, accepted or rejected"})
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.Job.GetJobPosting(ctx, app.JobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil || job.EmployerID != actor.ID || !actor.Acts(models.RoleEmployer) {
		return nil, apperr.Permission("application belongs to another employer")
	}
	if app.Status == status {
		return app, nil
	}

	if err := s.repo.Application.UpdateApplicationStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("application not found")
		}
		return nil, apperr.Internal("update application", err)
	}

	s.logger.Info("application status changed", "application_id", id, "status", status)
	notify.Emit(ctx, s.publisher, s.logger, notify.Event{
		Type:          notify.EventApplicationStatusChanged,
		ActorID:       actor.ID,
		JobID:         job.ID,
		ApplicationID: id,
		OwnerID:       app.JobseekerID,
		Title:         job.Title,
		Extra:         map[string]string{"status": string(status)},
	})
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.repo.Application.GetApplication(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load application", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application not found")
	}
	return app, nil
}
