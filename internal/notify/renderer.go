package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/garnizeh/jobboard/internal/jobs"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Renderer builds the notifications for an event, one template per type.
type Renderer struct {
	users repository.UserRepo
}

func NewRenderer(users repository.UserRepo) *Renderer {
	return &Renderer{users: users}
}

var kindLabels = map[models.SubjectKind]string{
	models.KindEmployer: "Employer profile",
	models.KindJob:      "Job posting",
	models.KindRole:     "Multi-role request",
}

func kindLabel(k models.SubjectKind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Render returns the notifications e produces. An event with no recipients
// (for instance a submission while no admin exists) renders to nothing.
func (r *Renderer) Render(ctx context.Context, e Event) ([]models.Notification, error) {
	switch e.Type {
	case EventSubjectSubmitted:
		return r.toAdmins(ctx, models.Notification{
			Title:        fmt.Sprintf("%s awaiting review", kindLabel(e.Kind)),
			Message:      fmt.Sprintf("%s %q was submitted and is waiting for moderation.", kindLabel(e.Kind), e.Title),
			Type:         models.NotifySystem,
			Link:         fmt.Sprintf("/admin/moderation/%s/%d", e.Kind, e.SubjectID),
			RelatedJobID: jobRef(e),
		})

	case EventSubjectApproved:
		return r.toOwner(ctx, e, models.Notification{
			Title:        fmt.Sprintf("%s approved", kindLabel(e.Kind)),
			Message:      fmt.Sprintf("Your %s %q has been approved.", strings.ToLower(kindLabel(e.Kind)), e.Title),
			Type:         models.NotifyApproval,
			Link:         subjectLink(e),
			RelatedJobID: jobRef(e),
		})

	case EventSubjectRejected:
		return r.toOwner(ctx, e, models.Notification{
			Title:        fmt.Sprintf("%s rejected", kindLabel(e.Kind)),
			Message:      fmt.Sprintf("Your %s %q was rejected. Reason: %s", strings.ToLower(kindLabel(e.Kind)), e.Title, e.Reason),
			Type:         models.NotifyRejection,
			Link:         subjectLink(e),
			RelatedJobID: jobRef(e),
		})

	case EventReviewCreated:
		return r.toOwner(ctx, e, models.Notification{
			Title:        "New review",
			Message:      fmt.Sprintf("Your job %q received a %s-star review.", e.Title, e.Extra["rating"]),
			Type:         models.NotifyReview,
			Link:         fmt.Sprintf("/jobs/%d/reviews", e.JobID),
			RelatedJobID: ptr(e.JobID),
		})

	case EventApplicationCreated:
		return r.toOwner(ctx, e, models.Notification{
			Title:         "New application",
			Message:       fmt.Sprintf("A new candidate applied to %q.", e.Title),
			Type:          models.NotifyApplication,
			Link:          fmt.Sprintf("/jobs/%d/applications", e.JobID),
			RelatedJobID:  ptr(e.JobID),
			ApplicationID: ptr(e.ApplicationID),
		})

	case EventApplicationStatusChanged:
		return r.toOwner(ctx, e, models.Notification{
			Title:         "Application update",
			Message:       fmt.Sprintf("Your application to %q is now %s.", e.Title, e.Extra["status"]),
			Type:          models.NotifyApplication,
			Link:          "/my/applications",
			RelatedJobID:  ptr(e.JobID),
			ApplicationID: ptr(e.ApplicationID),
		})
	}

	return nil, jobs.Permanent(fmt.Errorf("notify: unknown event type %q", e.Type))
}

func (r *Renderer) toAdmins(ctx context.Context, n models.Notification) ([]models.Notification, error) {
	ids, err := r.users.ListUserIDsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	out := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		c := n
		c.RecipientID = id
		c.Audience = models.RoleAdmin
		out = append(out, c)
	}
	return out, nil
}

func (r *Renderer) toOwner(ctx context.Context, e Event, n models.Notification) ([]models.Notification, error) {
	if e.OwnerID == 0 {
		return nil, jobs.Permanent(fmt.Errorf("notify: %s event without owner", e.Type))
	}
	u, err := r.users.GetUserByID(ctx, e.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load recipient: %w", err)
	}
	if u == nil {
		return nil, nil
	}

	n.RecipientID = u.ID
	n.Audience = audienceOf(u, e)
	return []models.Notification{n}, nil
}

// audienceOf picks the inbox a notification lands in. Employer-side events
// always go to the employer inbox, whatever role the recipient acts as now.
func audienceOf(u *models.User, e Event) models.Role {
	switch e.Type {
	case EventReviewCreated, EventApplicationCreated:
		return models.RoleEmployer
	case EventApplicationStatusChanged:
		return models.RoleJobseeker
	}
	if e.Kind == models.KindEmployer || e.Kind == models.KindJob {
		return models.RoleEmployer
	}

	switch u.Role {
	case models.RoleJobseeker, models.RoleEmployer, models.RoleAdmin:
		return u.Role
	}
	if u.ActiveRole != "" {
		return u.ActiveRole
	}
	return models.RoleJobseeker
}

func subjectLink(e Event) string {
	switch e.Kind {
	case models.KindJob:
		return fmt.Sprintf("/jobs/%d", e.SubjectID)
	case models.KindEmployer:
		return "/employer-profile"
	default:
		return "/me"
	}
}

func jobRef(e Event) *int64 {
	if e.Kind == models.KindJob {
		return ptr(e.SubjectID)
	}
	return nil
}

func ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
