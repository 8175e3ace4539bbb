package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/jobboard/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Getters return (nil, nil) when the row does not exist. Mutations addressing
// a missing row return ErrNotFound; unique-key collisions return ErrDuplicate.

var (
	ErrNotFound  = errors.New("repository: not found")
	ErrDuplicate = errors.New("repository: duplicate")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUserIDsByRole(ctx context.Context, role models.Role) ([]int64, error)
}

type EmployerRepo interface {
	CreateEmployerProfile(ctx context.Context, p *models.EmployerProfile) (int64, error)
	GetEmployerProfile(ctx context.Context, id int64) (*models.EmployerProfile, error)
	GetEmployerProfileByUser(ctx context.Context, userID int64) (*models.EmployerProfile, error)
}

type JobRepo interface {
	CreateJobPosting(ctx context.Context, j *models.JobPosting) (int64, error)
	GetJobPosting(ctx context.Context, id int64) (*models.JobPosting, error)
	ListJobPostingsByStatus(ctx context.Context, status models.ModerationStatus, limit, offset int) ([]models.JobPosting, error)
	ListJobPostingsByEmployer(ctx context.Context, employerID int64) ([]models.JobPosting, error)
}

type RoleRequestRepo interface {
	// CreateRoleRequest stores a pending request and marks the user as
	// multi-role pending in one transaction.
	CreateRoleRequest(ctx context.Context, rr *models.RoleRequest) (int64, error)
	GetRoleRequest(ctx context.Context, id int64) (*models.RoleRequest, error)
}

// SubjectRepo is the kind-independent moderation view over employers, jobs
// and role requests.
type SubjectRepo interface {
	GetSubject(ctx context.Context, kind models.SubjectKind, id int64) (*models.Subject, error)
	// DecideSubject applies d only if the subject is still pending and
	// reports whether it did.
	DecideSubject(ctx context.Context, kind models.SubjectKind, id int64, d models.Decision) (bool, error)
	ListSubjects(ctx context.Context, kind models.SubjectKind, status models.ModerationStatus, limit, offset int) ([]models.Subject, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) (int64, error)
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error)
	ListApplicationsByJobseeker(ctx context.Context, jobseekerID int64) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	HasApplied(ctx context.Context, jobID, jobseekerID int64) (bool, error)
}

// ReviewRepo mutations recompute the job and employer rating aggregates in
// the same transaction as the review change.
type ReviewRepo interface {
	CreateReview(ctx context.Context, r *models.Review) (int64, error)
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	UpdateReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	SetReviewStatus(ctx context.Context, id int64, status models.ReviewStatus) error
	ListActiveReviews(ctx context.Context, jobID int64, limit, offset int) ([]models.Review, error)
	// AddReviewFlag records a flag and flags the review once threshold
	// distinct users have reported it. It reports whether the review is now
	// flagged.
	AddReviewFlag(ctx context.Context, reviewID, userID int64, reason string, threshold int) (bool, error)
	SetReviewVote(ctx context.Context, reviewID, userID int64, helpful bool) error
	RecomputeJobRating(ctx context.Context, jobID int64) (*models.RatingSummary, error)
}

type NotificationRepo interface {
	CreateNotifications(ctx context.Context, ns []models.Notification) ([]int64, error)
	GetNotification(ctx context.Context, id int64) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context, recipientID int64) (int64, error)
	DeleteNotification(ctx context.Context, id int64) error
	DeleteAllNotifications(ctx context.Context) (int64, error)
}

type ActivityRepo interface {
	CreateActivity(ctx context.Context, a *models.Activity) (int64, error)
	ListActivitiesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Activity, error)
	CountActivitiesByUser(ctx context.Context, userID int64) (int64, error)
	ListActivities(ctx context.Context, limit, offset int) ([]models.Activity, error)
	DeleteAllActivities(ctx context.Context) (int64, error)
}

type SchemaRepo interface {
	UpsertSchema(ctx context.Context, activityType, description, schemaJSON string) error
	GetSchema(ctx context.Context, activityType string) (*models.MetadataSchema, error)
	ListSchemas(ctx context.Context) ([]models.MetadataSchema, error)
	DeleteSchema(ctx context.Context, activityType string) error
}

// Repository bundles the repositories a service graph needs.
type Repository struct {
	User         UserRepo
	Employer     EmployerRepo
	Job          JobRepo
	RoleRequest  RoleRequestRepo
	Subject      SubjectRepo
	Application  ApplicationRepo
	Review       ReviewRepo
	Notification NotificationRepo
	Activity     ActivityRepo
	Schema       SchemaRepo
}
