// Package review manages job reviews: one per job seeker and job, with
// community flagging, helpfulness votes and admin moderation. Every change
// refreshes the stored rating aggregates of the job and its employer.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/notify"
	"github.com/garnizeh/jobboard/internal/rating"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const DefaultFlagThreshold = 3

type Service struct {
	repo          *repository.Repository
	activity      *activity.Service
	publisher     notify.Publisher
	logger        *slog.Logger
	flagThreshold int
}

func NewService(repo *repository.Repository, act *activity.Service, pub notify.Publisher, logger *slog.Logger, flagThreshold int) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = notify.Nop{}
	}
	if flagThreshold <= 0 {
		flagThreshold = DefaultFlagThreshold
	}
	return &Service{repo: repo, activity: act, publisher: pub, logger: logger, flagThreshold: flagThreshold}
}

type Input struct {
	Rating          int    `json:"rating"`
	Review          string `json:"review"`
	WorkedAtCompany bool   `json:"worked_at_company"`
	Anonymous       bool   `json:"anonymous"`
}

func (in Input) validate() error {
	if !rating.Valid(in.Rating) {
		return apperr.ValidationFields("invalid review", map[string]string{"rating": "must be between 1 and 5"})
	}
	return nil
}

// Create stores the actor's review of an approved job. Whether the reviewer
// applied to the job is taken from their applications, not from the input.
func (s *Service) Create(ctx context.Context, actor *models.User, jobID int64, in Input) (*models.Review, error) {
	if !actor.Acts(models.RoleJobseeker) {
		return nil, apperr.Permission("only jobseekers can review jobs")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	job, err := s.repo.Job.GetJobPosting(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}
	if job.Status != models.StatusApproved {
		return nil, apperr.InvalidState("job is not open for reviews")
	}

	applied, err := s.repo.Application.HasApplied(ctx, jobID, actor.ID)
	if err != nil {
		return nil, apperr.Internal("check application", err)
	}

	id, err := s.repo.Review.CreateReview(ctx, &models.Review{
		JobID:           jobID,
		JobseekerID:     actor.ID,
		Rating:          in.Rating,
		Review:          strings.TrimSpace(in.Review),
		AppliedToJob:    applied,
		WorkedAtCompany: in.WorkedAtCompany,
		Anonymous:       in.Anonymous,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("you have already reviewed this job")
		}
		return nil, apperr.Internal("create review", err)
	}

	rv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actor.ID, activity.TypeReviewCreated, fmt.Sprintf("reviewed job %d", jobID), map[string]any{"job_id": jobID, "review_id": id, "rating": in.Rating})
	notify.Emit(ctx, s.publisher, s.logger, notify.Event{
		Type:    notify.EventReviewCreated,
		ActorID: actor.ID,
		JobID:   jobID,
		OwnerID: job.EmployerID,
		Title:   job.Title,
		Extra:   map[string]string{"rating": strconv.Itoa(in.Rating)},
	})
	return rv, nil
}

// Update rewrites the actor's own review.
func (s *Service) Update(ctx context.Context, actor *models.User, reviewID int64, in Input) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.JobseekerID != actor.ID {
		return nil, apperr.Permission("only the author can edit a review")
	}

	rv.Rating = in.Rating
	rv.Review = strings.TrimSpace(in.Review)
	rv.WorkedAtCompany = in.WorkedAtCompany
	rv.Anonymous = in.Anonymous
	if err := s.repo.Review.UpdateReview(ctx, rv); err != nil {
		return nil, translate(err, "update review")
	}
	return s.load(ctx, reviewID)
}

// Delete removes a review. Authors and admins may delete.
func (s *Service) Delete(ctx context.Context, actor *models.User, reviewID int64) error {
	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.JobseekerID != actor.ID && !actor.IsAdmin() {
		return apperr.Permission("only the author or an admin can delete a review")
	}
	if err := s.repo.Review.DeleteReview(ctx, reviewID); err != nil {
		return translate(err, "delete review")
	}
	return nil
}

// ListByJob returns the active reviews of a job, newest first. Anonymous
// reviews do not reveal their author.
func (s *Service) ListByJob(ctx context.Context, jobID int64, limit, offset int) ([]models.Review, error) {
	job, err := s.repo.Job.GetJobPosting(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}

	out, err := s.repo.Review.ListActiveReviews(ctx, jobID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list reviews", err)
	}
	for i := range out {
		if out[i].Anonymous {
			out[i].JobseekerID = 0
		}
	}
	if out == nil {
		out = []models.Review{}
	}
	return out, nil
}

// Flag reports a review. It reports whether the review is flagged afterwards.
func (s *Service) Flag(ctx context.Context, actor *models.User, reviewID int64, reason string) (bool, error) {
	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return false, err
	}
	if rv.JobseekerID == actor.ID {
		return false, apperr.Permission("you cannot flag your own review")
	}

	flagged, err := s.repo.Review.AddReviewFlag(ctx, reviewID, actor.ID, strings.TrimSpace(reason), s.flagThreshold)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, apperr.Duplicate("you have already flagged this review")
		}
		return false, translate(err, "flag review")
	}
	if flagged && rv.Status == models.ReviewActive {
		s.logger.Info("review flagged by community", "review_id", reviewID, "job_id", rv.JobID)
	}
	return flagged, nil
}

// SetStatus is the admin override for a review's visibility.
func (s *Service) SetStatus(ctx context.Context, actor *models.User, reviewID int64, status models.ReviewStatus) (*models.Review, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can moderate reviews")
	}
	if !status.Valid() {
		return nil, apperr.ValidationFields("invalid review status", map[string]string{"status": "must be active, flagged or removed"})
	}
	if err := s.repo.Review.SetReviewStatus(ctx, reviewID, status); err != nil {
		return nil, translate(err, "set review status")
	}

	s.activity.Log(ctx, actor.ID, activity.TypeReviewModerated, fmt.Sprintf("review %d set to %s", reviewID, status), map[string]any{"review_id": reviewID, "status": string(status)})
	return s.load(ctx, reviewID)
}

// Vote records whether the actor found a review helpful.
func (s *Service) Vote(ctx context.Context, actor *models.User, reviewID int64, helpful bool) (*models.Review, error) {
	rv, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.JobseekerID == actor.ID {
		return nil, apperr.Permission("you cannot vote on your own review")
	}
	if err := s.repo.Review.SetReviewVote(ctx, reviewID, actor.ID, helpful); err != nil {
		return nil, translate(err, "vote on review")
	}
	return s.load(ctx, reviewID)
}

// Summary returns the stored aggregate of a job.
func (s *Service) Summary(ctx context.Context, jobID int64) (*models.RatingSummary, error) {
	job, err := s.repo.Job.GetJobPosting(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal("load job", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job not found")
	}
	return &job.Rating, nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.Review, error) {
	rv, err := s.repo.Review.GetReview(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load review", err)
	}
	if rv == nil {
		return nil, apperr.NotFound("review not found")
	}
	return rv, nil
}

func translate(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("review not found")
	}
	return apperr.Internal(op, err)
}
