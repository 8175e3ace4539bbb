package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func TestDecideSubject_ApproveOnce(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)

	id, err := repo.CreateEmployerProfile(ctx, &models.EmployerProfile{UserID: emp, CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("CreateEmployerProfile: %v", err)
	}

	ok, err := repo.DecideSubject(ctx, models.KindEmployer, id, models.Decision{Status: models.StatusApproved, DecidedBy: admin, DecidedAt: 5000})
	if err != nil || !ok {
		t.Fatalf("first approve: ok=%v err=%v", ok, err)
	}

	ok, err = repo.DecideSubject(ctx, models.KindEmployer, id, models.Decision{Status: models.StatusRejected, DecidedBy: admin, Reason: "late"})
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if ok {
		t.Fatalf("decided subject must not be overwritten")
	}

	s, err := repo.GetSubject(ctx, models.KindEmployer, id)
	if err != nil || s == nil {
		t.Fatalf("GetSubject: %#v, %v", s, err)
	}
	if s.Status != models.StatusApproved || s.DecidedAt == nil || *s.DecidedAt != 5000 || s.DecidedBy == nil || *s.DecidedBy != admin {
		t.Fatalf("unexpected decision state: %#v", s.Moderation)
	}
	if s.RejectionReason != nil {
		t.Fatalf("approved subject must not carry a reason")
	}
	if s.Title != "Acme" || s.OwnerID != emp || s.Kind != models.KindEmployer {
		t.Fatalf("unexpected subject view: %#v", s)
	}

	if _, err := repo.DecideSubject(ctx, models.KindEmployer, 999, models.Decision{Status: models.StatusApproved, DecidedBy: admin}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.DecideSubject(ctx, models.KindEmployer, id, models.Decision{Status: models.StatusPending, DecidedBy: admin}); err == nil {
		t.Fatalf("expected error for pending decision")
	}
	if _, err := repo.GetSubject(ctx, "bogus", id); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDecideSubject_RejectStoresReason(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	id, _ := repo.CreateJobPosting(ctx, &models.JobPosting{EmployerID: emp, Title: "Cook"})

	ok, err := repo.DecideSubject(ctx, models.KindJob, id, models.Decision{Status: models.StatusRejected, DecidedBy: admin, Reason: "Missing salary info"})
	if err != nil || !ok {
		t.Fatalf("reject: ok=%v err=%v", ok, err)
	}

	j, _ := repo.GetJobPosting(ctx, id)
	if j.Status != models.StatusRejected || j.RejectionReason == nil || *j.RejectionReason != "Missing salary info" {
		t.Fatalf("unexpected job after reject: %#v", j.Moderation)
	}
}

func TestRoleRequest_ApproveAndReject(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	seeker := mustUser(t, repo, "seeker@example.com", models.RoleJobseeker)
	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)

	if _, err := repo.CreateRoleRequest(ctx, nil); err == nil {
		t.Fatalf("expected error for nil request")
	}

	req, err := repo.CreateRoleRequest(ctx, &models.RoleRequest{UserID: seeker, PreviousRole: models.RoleJobseeker, ActiveRole: models.RoleEmployer})
	if err != nil {
		t.Fatalf("CreateRoleRequest: %v", err)
	}
	u, _ := repo.GetUserByID(ctx, seeker)
	if u.Role != models.RoleMultiPending || !u.Acts(models.RoleJobseeker) {
		t.Fatalf("pending user should be multi-role acting as jobseeker: %#v", u)
	}

	if _, err := repo.CreateRoleRequest(ctx, &models.RoleRequest{UserID: seeker, PreviousRole: models.RoleJobseeker, ActiveRole: models.RoleEmployer}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second pending request, got %v", err)
	}

	ok, err := repo.DecideSubject(ctx, models.KindRole, req, models.Decision{Status: models.StatusApproved, DecidedBy: admin})
	if err != nil || !ok {
		t.Fatalf("approve role: ok=%v err=%v", ok, err)
	}
	u, _ = repo.GetUserByID(ctx, seeker)
	if u.Role != models.RoleMulti || u.ActiveRole != models.RoleEmployer {
		t.Fatalf("expected multi with active employer, got %q/%q", u.Role, u.ActiveRole)
	}

	req2, err := repo.CreateRoleRequest(ctx, &models.RoleRequest{UserID: emp, PreviousRole: models.RoleEmployer, ActiveRole: models.RoleJobseeker})
	if err != nil {
		t.Fatalf("CreateRoleRequest: %v", err)
	}
	ok, err = repo.DecideSubject(ctx, models.KindRole, req2, models.Decision{Status: models.StatusRejected, DecidedBy: admin, Reason: "no"})
	if err != nil || !ok {
		t.Fatalf("reject role: ok=%v err=%v", ok, err)
	}
	u, _ = repo.GetUserByID(ctx, emp)
	if u.Role != models.RoleEmployer || u.ActiveRole != "" {
		t.Fatalf("expected previous role restored, got %q/%q", u.Role, u.ActiveRole)
	}

	rr, err := repo.GetRoleRequest(ctx, req2)
	if err != nil || rr == nil || rr.Status != models.StatusRejected {
		t.Fatalf("GetRoleRequest: %#v, %v", rr, err)
	}
}

func TestListSubjects_OrderAndFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)

	var ids []int64
	for range 3 {
		id, err := repo.CreateJobPosting(ctx, &models.JobPosting{EmployerID: emp, Title: "Job"})
		if err != nil {
			t.Fatalf("CreateJobPosting: %v", err)
		}
		ids = append(ids, id)
	}
	// deciding the oldest moves it to the front
	if _, err := repo.DecideSubject(ctx, models.KindJob, ids[0], models.Decision{Status: models.StatusApproved, DecidedBy: admin, DecidedAt: 1 << 50}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	all, err := repo.ListSubjects(ctx, models.KindJob, "", 10, 0)
	if err != nil {
		t.Fatalf("ListSubjects: %v", err)
	}
	if len(all) != 3 || all[0].ID != ids[0] {
		t.Fatalf("expected most recently decided first: %#v", all)
	}

	pending, err := repo.ListSubjects(ctx, models.KindJob, models.StatusPending, 10, 0)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending filter: %d, %v", len(pending), err)
	}
	for _, s := range pending {
		if s.Status != models.StatusPending {
			t.Fatalf("filter leaked status %q", s.Status)
		}
	}

	page, _ := repo.ListSubjects(ctx, models.KindJob, "", 1, 1)
	if len(page) != 1 || page[0].ID != all[1].ID {
		t.Fatalf("unexpected page: %#v", page)
	}
}
