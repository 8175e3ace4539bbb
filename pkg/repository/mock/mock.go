package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Users         *UserRepo
	Notifications *NotificationRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:         &UserRepo{byID: map[int64]*models.User{}},
		Notifications: &NotificationRepo{},
	}
}

var _ repository.UserRepo = (*UserRepo)(nil)
var _ repository.NotificationRepo = (*NotificationRepo)(nil)

// UserRepo keeps users in memory. Set the *Err fields to force failures.
type UserRepo struct {
	mu        sync.Mutex
	byID      map[int64]*models.User
	nextID    int64
	CreateErr error
	GetErr    error
	ListErr   error
}

// Add stores u as is and returns its id, assigning one when u.ID is zero.
func (m *UserRepo) Add(u models.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = map[int64]*models.User{}
	}
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	m.byID[u.ID] = &u
	return u.ID
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			m.mu.Unlock()
			return 0, repository.ErrDuplicate
		}
	}
	m.mu.Unlock()
	return m.Add(*u), nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := *u
	c.Role = existing.Role
	m.byID[u.ID] = &c
	return nil
}

func (m *UserRepo) ListUserIDsByRole(ctx context.Context, role models.Role) ([]int64, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, u := range m.byID {
		if u.Role == role {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// NotificationRepo records stored notifications in memory.
type NotificationRepo struct {
	mu        sync.Mutex
	Stored    []models.Notification
	nextID    int64
	CreateErr error
}

func (m *NotificationRepo) CreateNotifications(ctx context.Context, ns []models.Notification) ([]int64, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(ns))
	for _, n := range ns {
		m.nextID++
		n.ID = m.nextID
		m.Stored = append(m.Stored, n)
		ids = append(ids, n.ID)
	}
	return ids, nil
}

// All returns a copy of everything stored so far.
func (m *NotificationRepo) All() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.Stored...)
}

func (m *NotificationRepo) find(id int64) int {
	for i, n := range m.Stored {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (m *NotificationRepo) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(id); i >= 0 {
		c := m.Stored[i]
		return &c, nil
	}
	return nil, nil
}

func (m *NotificationRepo) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for i := len(m.Stored) - 1; i >= 0; i-- {
		n := m.Stored[i]
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *NotificationRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.Stored {
		if x.RecipientID == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *NotificationRepo) MarkNotificationRead(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.Stored[i].IsRead = true
	return nil
}

func (m *NotificationRepo) MarkAllNotificationsRead(ctx context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.Stored {
		if m.Stored[i].RecipientID == recipientID && !m.Stored[i].IsRead {
			m.Stored[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *NotificationRepo) DeleteNotification(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
	return nil
}

func (m *NotificationRepo) DeleteAllNotifications(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.Stored))
	m.Stored = nil
	return n, nil
}
