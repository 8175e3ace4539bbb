package sqlite_test

import (
	"context"
	"errors"
	"testing"

	dbfs "github.com/garnizeh/jobboard/db"
	dbpkg "github.com/garnizeh/jobboard/internal/db"
	sqlite "github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func mustUser(t *testing.T, repo *sqlite.SQLiteRepo, email string, role models.Role) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{Name: email, Email: email, PasswordHash: "h", Role: role})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return id
}

func mustApprovedJob(t *testing.T, repo *sqlite.SQLiteRepo, employerID, adminID int64) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := repo.CreateJobPosting(ctx, &models.JobPosting{EmployerID: employerID, Title: "Cook", Salary: "1000"})
	if err != nil {
		t.Fatalf("CreateJobPosting: %v", err)
	}
	if ok, err := repo.DecideSubject(ctx, models.KindJob, id, models.Decision{Status: models.StatusApproved, DecidedBy: adminID}); err != nil || !ok {
		t.Fatalf("approve job: ok=%v err=%v", ok, err)
	}
	return id
}

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	got, err := repo.GetUserByID(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing user, got %#v, %v", got, err)
	}
	got, err = repo.GetUserByEmail(ctx, "a@a.com")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing email, got %#v, %v", got, err)
	}

	id := mustUser(t, repo, "alice@example.com", models.RoleJobseeker)

	if _, err := repo.CreateUser(ctx, &models.User{Name: "A", Email: "alice@example.com", PasswordHash: "h", Role: models.RoleJobseeker}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated email, got %v", err)
	}

	got, err = repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil || got.ID != id {
		t.Fatalf("GetUserByEmail wrong result: %#v, %v", got, err)
	}
	if got.Created == 0 || got.Updated == 0 {
		t.Fatalf("expected timestamps, got %#v", got)
	}

	got.Name = "Alice2"
	got.Role = models.RoleAdmin
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	after, _ := repo.GetUserByID(ctx, id)
	if after.Name != "Alice2" {
		t.Fatalf("expected name updated, got %q", after.Name)
	}
	if after.Role != models.RoleJobseeker {
		t.Fatalf("UpdateUser must not change role, got %q", after.Role)
	}

	if err := repo.UpdateUser(ctx, &models.User{ID: 4242, Name: "x", Email: "x@x"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when updating nil user")
	}
}

func TestListUserIDsByRole(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a1 := mustUser(t, repo, "admin1@example.com", models.RoleAdmin)
	mustUser(t, repo, "seeker@example.com", models.RoleJobseeker)
	a2 := mustUser(t, repo, "admin2@example.com", models.RoleAdmin)

	ids, err := repo.ListUserIDsByRole(ctx, models.RoleAdmin)
	if err != nil {
		t.Fatalf("ListUserIDsByRole: %v", err)
	}
	if len(ids) != 2 || ids[0] != a1 || ids[1] != a2 {
		t.Fatalf("unexpected admin ids: %v", ids)
	}
}

func TestEmployerProfile(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	uid := mustUser(t, repo, "emp@example.com", models.RoleEmployer)

	if _, err := repo.CreateEmployerProfile(ctx, nil); err == nil {
		t.Fatalf("expected error for nil profile")
	}

	id, err := repo.CreateEmployerProfile(ctx, &models.EmployerProfile{UserID: uid, CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("CreateEmployerProfile: %v", err)
	}
	if _, err := repo.CreateEmployerProfile(ctx, &models.EmployerProfile{UserID: uid, CompanyName: "Acme 2"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second profile, got %v", err)
	}

	p, err := repo.GetEmployerProfileByUser(ctx, uid)
	if err != nil || p == nil || p.ID != id {
		t.Fatalf("GetEmployerProfileByUser: %#v, %v", p, err)
	}
	if p.Status != models.StatusPending || p.DecidedAt != nil || p.DecidedBy != nil || p.RejectionReason != nil {
		t.Fatalf("new profile must be pending with no decision: %#v", p.Moderation)
	}
	if p.Rating.ReviewCount != 0 || len(p.Rating.Distribution) != 5 {
		t.Fatalf("unexpected empty rating: %#v", p.Rating)
	}

	missing, err := repo.GetEmployerProfile(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing profile: %#v, %v", missing, err)
	}
}

func TestJobPostingListing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)

	first := mustApprovedJob(t, repo, emp, admin)
	second := mustApprovedJob(t, repo, emp, admin)
	if _, err := repo.CreateJobPosting(ctx, &models.JobPosting{EmployerID: emp, Title: "Pending"}); err != nil {
		t.Fatalf("CreateJobPosting: %v", err)
	}

	approved, err := repo.ListJobPostingsByStatus(ctx, models.StatusApproved, 10, 0)
	if err != nil {
		t.Fatalf("ListJobPostingsByStatus: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved jobs, got %d", len(approved))
	}
	if approved[0].ID != second || approved[1].ID != first {
		t.Fatalf("expected newest first, got %d then %d", approved[0].ID, approved[1].ID)
	}

	all, err := repo.ListJobPostingsByEmployer(ctx, emp)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListJobPostingsByEmployer: %d, %v", len(all), err)
	}

	if _, err := repo.CreateJobPosting(ctx, nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
	got, err := repo.GetJobPosting(ctx, 12345)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing job: %#v, %v", got, err)
	}
}

func TestApplications(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	seeker := mustUser(t, repo, "seeker@example.com", models.RoleJobseeker)
	job := mustApprovedJob(t, repo, emp, admin)

	applied, err := repo.HasApplied(ctx, job, seeker)
	if err != nil || applied {
		t.Fatalf("expected not applied: %v, %v", applied, err)
	}

	id, err := repo.CreateApplication(ctx, &models.Application{JobID: job, JobseekerID: seeker, CoverLetter: "hi"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if _, err := repo.CreateApplication(ctx, &models.Application{JobID: job, JobseekerID: seeker}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	applied, err = repo.HasApplied(ctx, job, seeker)
	if err != nil || !applied {
		t.Fatalf("expected applied: %v, %v", applied, err)
	}

	if err := repo.UpdateApplicationStatus(ctx, id, models.ApplicationAccepted); err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}
	a, err := repo.GetApplication(ctx, id)
	if err != nil || a == nil || a.Status != models.ApplicationAccepted {
		t.Fatalf("GetApplication: %#v, %v", a, err)
	}
	if err := repo.UpdateApplicationStatus(ctx, 999, models.ApplicationAccepted); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byJob, _ := repo.ListApplicationsByJob(ctx, job)
	bySeeker, _ := repo.ListApplicationsByJobseeker(ctx, seeker)
	if len(byJob) != 1 || len(bySeeker) != 1 {
		t.Fatalf("unexpected listing sizes: %d %d", len(byJob), len(bySeeker))
	}
}

func TestActivityAndSchemas(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateActivity(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil activity")
	}

	for i := range 3 {
		_, err := repo.CreateActivity(ctx, &models.Activity{UserID: 7, Type: "default", Message: "act", Created: int64(1000 + i)})
		if err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}
	if _, err := repo.CreateActivity(ctx, &models.Activity{UserID: 8, Type: "default", Message: "other", Metadata: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	list, err := repo.ListActivitiesByUser(ctx, 7, 2, 0)
	if err != nil {
		t.Fatalf("ListActivitiesByUser: %v", err)
	}
	if len(list) != 2 || list[0].Created != 1002 {
		t.Fatalf("unexpected page: %#v", list)
	}
	if string(list[0].Metadata) != "{}" {
		t.Fatalf("expected default metadata, got %s", list[0].Metadata)
	}

	cnt, err := repo.CountActivitiesByUser(ctx, 7)
	if err != nil || cnt != 3 {
		t.Fatalf("CountActivitiesByUser: %d, %v", cnt, err)
	}

	all, err := repo.ListActivities(ctx, 0, 0)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListActivities: %d, %v", len(all), err)
	}

	n, err := repo.DeleteAllActivities(ctx)
	if err != nil || n != 4 {
		t.Fatalf("DeleteAllActivities: %d, %v", n, err)
	}

	if err := repo.UpsertSchema(ctx, "job.viewed", "v1", `{"type":"object"}`); err != nil {
		t.Fatalf("UpsertSchema: %v", err)
	}
	if err := repo.UpsertSchema(ctx, "job.viewed", "v2", `{"type":"object","required":["job_id"]}`); err != nil {
		t.Fatalf("UpsertSchema update: %v", err)
	}
	s, err := repo.GetSchema(ctx, "job.viewed")
	if err != nil || s == nil || s.Description != "v2" {
		t.Fatalf("GetSchema: %#v, %v", s, err)
	}

	schemas, err := repo.ListSchemas(ctx)
	if err != nil || len(schemas) != 3 {
		t.Fatalf("ListSchemas: expected seeded pair plus one, got %d, %v", len(schemas), err)
	}

	if err := repo.DeleteSchema(ctx, "job.viewed"); err != nil {
		t.Fatalf("DeleteSchema: %v", err)
	}
	if err := repo.DeleteSchema(ctx, "job.viewed"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
