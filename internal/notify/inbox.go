package notify

import (
	"context"
	"errors"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Inbox is the recipient-facing view over stored notifications.
type Inbox struct {
	store repository.NotificationRepo
}

func NewInbox(store repository.NotificationRepo) *Inbox {
	return &Inbox{store: store}
}

func (i *Inbox) List(ctx context.Context, actor *models.User, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	ns, err := i.store.ListNotifications(ctx, actor.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list notifications", err)
	}
	if ns == nil {
		ns = []models.Notification{}
	}
	return ns, nil
}

func (i *Inbox) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	n, err := i.store.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apperr.Internal("count unread notifications", err)
	}
	return n, nil
}

// MarkRead marks one notification read. Only its recipient may do so.
func (i *Inbox) MarkRead(ctx context.Context, actor *models.User, id int64) error {
	if _, err := i.owned(ctx, actor, id, false); err != nil {
		return err
	}
	if err := i.store.MarkNotificationRead(ctx, id); err != nil {
		return translate(err, "mark notification read")
	}
	return nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, actor *models.User) (int64, error) {
	n, err := i.store.MarkAllNotificationsRead(ctx, actor.ID)
	if err != nil {
		return 0, apperr.Internal("mark notifications read", err)
	}
	return n, nil
}

// Delete removes a notification. Recipients and admins may delete.
func (i *Inbox) Delete(ctx context.Context, actor *models.User, id int64) error {
	if _, err := i.owned(ctx, actor, id, true); err != nil {
		return err
	}
	if err := i.store.DeleteNotification(ctx, id); err != nil {
		return translate(err, "delete notification")
	}
	return nil
}

// ClearAll deletes every notification. Admin only.
func (i *Inbox) ClearAll(ctx context.Context, actor *models.User) (int64, error) {
	if !actor.IsAdmin() {
		return 0, apperr.Permission("only admins can clear notifications")
	}
	n, err := i.store.DeleteAllNotifications(ctx)
	if err != nil {
		return 0, apperr.Internal("clear notifications", err)
	}
	return n, nil
}

func (i *Inbox) owned(ctx context.Context, actor *models.User, id int64, adminOK bool) (*models.Notification, error) {
	n, err := i.store.GetNotification(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load notification", err)
	}
	if n == nil {
		return nil, apperr.NotFound("notification not found")
	}
	if n.RecipientID != actor.ID && !(adminOK && actor.IsAdmin()) {
		return nil, apperr.Permission("notification belongs to another user")
	}
	return n, nil
}

func translate(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	return apperr.Internal(op, err)
}
