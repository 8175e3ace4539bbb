// Package account handles user registration, credential checks and profile
// changes.
package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type Service struct {
	users    repository.UserRepo
	activity *activity.Service
	logger   *slog.Logger
}

func NewService(users repository.UserRepo, act *activity.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{users: users, activity: act, logger: logger}
}

type SignupInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Signup registers a jobseeker or employer. Admins are only created by the
// db_init command.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleJobseeker
	}

	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fields["email"] = "must be a valid address"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "must be at least 6 characters"
	}
	if in.Role != models.RoleJobseeker && in.Role != models.RoleEmployer {
		fields["role"] = "must be jobseeker or employer"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid signup", fields)
	}

	u, err := s.create(ctx, in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// CreateAdmin registers an administrator. It is used by the db_init command
// and by tests; there is no HTTP route for it.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("admin email and password are required")
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	return s.create(ctx, name, email, password, models.RoleAdmin)
}

func (s *Service) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	id, err := s.users.CreateUser(ctx, &models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("email is already registered")
		}
		return nil, apperr.Internal("create user", err)
	}
	return s.Get(ctx, id)
}

// Authenticate returns the user owning the credentials. Unknown emails and
// wrong passwords both report Unauthorized.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("credentials not found")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

type ProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateProfile applies the non-nil fields and records the changed ones in
// the activity log. The password is never written to the log.
func (s *Service) UpdateProfile(ctx context.Context, actor *models.User, in ProfileInput) (*models.User, error) {
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	before := map[string]any{"name": u.Name, "email": u.Email}

	fields := map[string]string{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			u.Name = name
		} else {
			fields["name"] = "must not be empty"
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "must be a valid address"
		} else {
			u.Email = email
		}
	}
	passwordChanged := false
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			fields["password"] = "must be at least 6 characters"
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperr.Internal("hash password", err)
			}
			u.PasswordHash = string(hash)
			passwordChanged = true
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid profile", fields)
	}

	if err := s.users.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Duplicate("email is already registered")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("update user", err)
	}

	changes := activity.Diff(before, map[string]any{"name": u.Name, "email": u.Email})
	if passwordChanged {
		changes["password"] = activity.Change{From: "***", To: "***"}
	}
	if len(changes) > 0 {
		s.activity.Log(ctx, u.ID, activity.TypeProfileUpdated, "updated profile", changes)
	}
	return s.Get(ctx, u.ID)
}

// SwitchActiveRole changes the role a multi user acts as.
func (s *Service) SwitchActiveRole(ctx context.Context, actor *models.User, role models.Role) (*models.User, error) {
	if role != models.RoleJobseeker && role != models.RoleEmployer {
		return nil, apperr.ValidationFields("invalid role", map[string]string{"active_role": "must be jobseeker or employer"})
	}
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleMulti {
		return nil, apperr.Permission("only multi-role users can switch roles")
	}
	if u.ActiveRole == role {
		return u, nil
	}

	previous := u.ActiveRole
	u.ActiveRole = role
	if err := s.users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("update user", err)
	}

	s.activity.Log(ctx, u.ID, activity.TypeRoleSwitched, "switched active role", map[string]any{"from": string(previous), "to": string(role)})
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
