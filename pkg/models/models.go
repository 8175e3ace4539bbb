package models

import "encoding/json"

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds.

type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
	// RoleMultiPending marks a user whose multi-role request awaits a decision.
	RoleMultiPending Role = "multi-role"
	RoleMulti        Role = "multi"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	ActiveRole   Role   `json:"active_role,omitempty" db:"active_role"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

// Acts reports whether the user currently acts as r. Multi users act as
// their active role; a pending multi-role user keeps acting as the role they
// held before the request.
func (u *User) Acts(r Role) bool {
	switch u.Role {
	case RoleMulti, RoleMultiPending:
		return u.ActiveRole == r
	default:
		return u.Role == r
	}
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// SubjectKind names the entity type going through moderation.
type SubjectKind string

const (
	KindEmployer SubjectKind = "employer"
	KindJob      SubjectKind = "job"
	KindRole     SubjectKind = "role"
)

func (k SubjectKind) Valid() bool {
	switch k {
	case KindEmployer, KindJob, KindRole:
		return true
	}
	return false
}

// Moderation is the decision state embedded in every subject.
type Moderation struct {
	Status          ModerationStatus `json:"status"`
	SubmittedAt     int64            `json:"submitted_at"`
	DecidedAt       *int64           `json:"decided_at,omitempty"`
	DecidedBy       *int64           `json:"decided_by,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
}

// Subject is the kind-independent view of a moderated entity.
type Subject struct {
	Kind    SubjectKind `json:"kind"`
	ID      int64       `json:"id"`
	OwnerID int64       `json:"owner_id"`
	Title   string      `json:"title"`
	Moderation
}

// Decision is the outcome an admin applies to a pending subject.
type Decision struct {
	Status    ModerationStatus
	DecidedBy int64
	DecidedAt int64
	Reason    string
}

// RatingSummary is the denormalised aggregate kept on jobs and employers.
type RatingSummary struct {
	AverageRating float64     `json:"average_rating"`
	ReviewCount   int         `json:"review_count"`
	Distribution  map[int]int `json:"rating_distribution"`
}

type EmployerProfile struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
	PermitRef   string `json:"permit_ref,omitempty"`
	Updated     int64  `json:"updated"`
	Moderation
	Rating RatingSummary `json:"rating"`
}

type JobPosting struct {
	ID          int64  `json:"id"`
	EmployerID  int64  `json:"employer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Updated     int64  `json:"updated"`
	Moderation
	Rating RatingSummary `json:"rating"`
}

type RoleRequest struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	PreviousRole Role   `json:"previous_role"`
	ActiveRole   Role   `json:"active_role"`
	Reason       string `json:"reason,omitempty"`
	Moderation
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	JobseekerID int64             `json:"jobseeker_id"`
	CoverLetter string            `json:"cover_letter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	Created     int64             `json:"created"`
	Updated     int64             `json:"updated"`
}

type ReviewStatus string

const (
	ReviewActive  ReviewStatus = "active"
	ReviewFlagged ReviewStatus = "flagged"
	ReviewRemoved ReviewStatus = "removed"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewActive, ReviewFlagged, ReviewRemoved:
		return true
	}
	return false
}

type Review struct {
	ID              int64        `json:"id"`
	JobID           int64        `json:"job_id"`
	JobseekerID     int64        `json:"jobseeker_id,omitempty"`
	Rating          int          `json:"rating"`
	Review          string       `json:"review"`
	AppliedToJob    bool         `json:"applied_to_job"`
	WorkedAtCompany bool         `json:"worked_at_company"`
	Anonymous       bool         `json:"anonymous"`
	Status          ReviewStatus `json:"status"`
	Helpful         int          `json:"helpful"`
	NotHelpful      int          `json:"not_helpful"`
	Created         int64        `json:"created"`
	Updated         int64        `json:"updated"`
}

type NotificationType string

const (
	NotifyApplication NotificationType = "application"
	NotifyJob         NotificationType = "job"
	NotifyApproval    NotificationType = "approval"
	NotifyRejection   NotificationType = "rejection"
	NotifyReview      NotificationType = "review"
	NotifySystem      NotificationType = "system"
)

type Notification struct {
	ID            int64            `json:"id"`
	RecipientID   int64            `json:"recipient_id"`
	Audience      Role             `json:"audience"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Type          NotificationType `json:"type"`
	IsRead        bool             `json:"is_read"`
	Link          string           `json:"link,omitempty"`
	RelatedJobID  *int64           `json:"related_job_id,omitempty"`
	ApplicationID *int64           `json:"application_id,omitempty"`
	Created       int64            `json:"created"`
}

type Activity struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Type     string          `json:"type"`
	Message  string          `json:"message"`
	Metadata json.RawMessage `json:"metadata"`
	Created  int64           `json:"created"`
}

type MetadataSchema struct {
	ID           int64  `json:"id"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description,omitempty"`
	SchemaJSON   string `json:"schema_json"`
	Created      int64  `json:"created"`
	Updated      int64  `json:"updated"`
}
