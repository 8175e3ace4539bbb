package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func TestReviewAggregates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	s1 := mustUser(t, repo, "s1@example.com", models.RoleJobseeker)
	s2 := mustUser(t, repo, "s2@example.com", models.RoleJobseeker)
	if _, err := repo.CreateEmployerProfile(ctx, &models.EmployerProfile{UserID: emp, CompanyName: "Acme"}); err != nil {
		t.Fatalf("CreateEmployerProfile: %v", err)
	}
	job := mustApprovedJob(t, repo, emp, admin)
	other := mustApprovedJob(t, repo, emp, admin)

	r1, err := repo.CreateReview(ctx, &models.Review{JobID: job, JobseekerID: s1, Rating: 4, Review: "good"})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	r2, err := repo.CreateReview(ctx, &models.Review{JobID: job, JobseekerID: s2, Rating: 2})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if _, err := repo.CreateReview(ctx, &models.Review{JobID: job, JobseekerID: s1, Rating: 5}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second review, got %v", err)
	}
	if _, err := repo.CreateReview(ctx, &models.Review{JobID: other, JobseekerID: s1, Rating: 5}); err != nil {
		t.Fatalf("CreateReview other job: %v", err)
	}

	j, _ := repo.GetJobPosting(ctx, job)
	if j.Rating.AverageRating != 3.0 || j.Rating.ReviewCount != 2 {
		t.Fatalf("unexpected job aggregate: %#v", j.Rating)
	}
	if j.Rating.Distribution[2] != 1 || j.Rating.Distribution[4] != 1 || j.Rating.Distribution[5] != 0 {
		t.Fatalf("unexpected distribution: %#v", j.Rating.Distribution)
	}

	p, _ := repo.GetEmployerProfileByUser(ctx, emp)
	if p.Rating.ReviewCount != 3 || p.Rating.AverageRating != 11.0/3 {
		t.Fatalf("unexpected employer aggregate: %#v", p.Rating)
	}

	rv, _ := repo.GetReview(ctx, r2)
	rv.Rating = 5
	if err := repo.UpdateReview(ctx, rv); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	j, _ = repo.GetJobPosting(ctx, job)
	if j.Rating.AverageRating != 4.5 {
		t.Fatalf("expected 4.5 after update, got %v", j.Rating.AverageRating)
	}

	if err := repo.SetReviewStatus(ctx, r1, models.ReviewRemoved); err != nil {
		t.Fatalf("SetReviewStatus: %v", err)
	}
	sum, err := repo.RecomputeJobRating(ctx, job)
	if err != nil {
		t.Fatalf("RecomputeJobRating: %v", err)
	}
	if sum.ReviewCount != 1 || sum.AverageRating != 5 {
		t.Fatalf("removed review must not count: %#v", sum)
	}

	active, _ := repo.ListActiveReviews(ctx, job, 10, 0)
	if len(active) != 1 || active[0].ID != r2 {
		t.Fatalf("unexpected active reviews: %#v", active)
	}

	for _, id := range []int64{r1, r2} {
		if err := repo.DeleteReview(ctx, id); err != nil {
			t.Fatalf("DeleteReview: %v", err)
		}
	}
	j, _ = repo.GetJobPosting(ctx, job)
	if j.Rating.AverageRating != 0 || j.Rating.ReviewCount != 0 {
		t.Fatalf("expected reset aggregate, got %#v", j.Rating)
	}
	for r := 1; r <= 5; r++ {
		if j.Rating.Distribution[r] != 0 {
			t.Fatalf("expected empty distribution, got %#v", j.Rating.Distribution)
		}
	}

	if err := repo.DeleteReview(ctx, r1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.RecomputeJobRating(ctx, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown job, got %v", err)
	}
}

func TestReviewFlagThreshold(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	author := mustUser(t, repo, "author@example.com", models.RoleJobseeker)
	job := mustApprovedJob(t, repo, emp, admin)
	rid, err := repo.CreateReview(ctx, &models.Review{JobID: job, JobseekerID: author, Rating: 1})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	for i, uid := range []int64{101, 102} {
		flagged, err := repo.AddReviewFlag(ctx, rid, uid, "spam", 3)
		if err != nil || flagged {
			t.Fatalf("flag %d: flagged=%v err=%v", i, flagged, err)
		}
	}
	if _, err := repo.AddReviewFlag(ctx, rid, 101, "again", 3); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated flag, got %v", err)
	}

	flagged, err := repo.AddReviewFlag(ctx, rid, 103, "spam", 3)
	if err != nil || !flagged {
		t.Fatalf("third flag should flag review: %v, %v", flagged, err)
	}

	rv, _ := repo.GetReview(ctx, rid)
	if rv.Status != models.ReviewFlagged {
		t.Fatalf("expected flagged status, got %q", rv.Status)
	}
	j, _ := repo.GetJobPosting(ctx, job)
	if j.Rating.ReviewCount != 0 {
		t.Fatalf("flagged review must leave aggregate, got %#v", j.Rating)
	}

	if _, err := repo.AddReviewFlag(ctx, 999, 1, "", 3); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewVotes(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	emp := mustUser(t, repo, "emp@example.com", models.RoleEmployer)
	admin := mustUser(t, repo, "admin@example.com", models.RoleAdmin)
	author := mustUser(t, repo, "author@example.com", models.RoleJobseeker)
	job := mustApprovedJob(t, repo, emp, admin)
	rid, _ := repo.CreateReview(ctx, &models.Review{JobID: job, JobseekerID: author, Rating: 3})

	steps := []struct {
		user        int64
		helpful     bool
		wantHelpful int
		wantNot     int
	}{
		{user: 10, helpful: true, wantHelpful: 1, wantNot: 0},
		{user: 10, helpful: true, wantHelpful: 1, wantNot: 0},
		{user: 11, helpful: false, wantHelpful: 1, wantNot: 1},
		{user: 10, helpful: false, wantHelpful: 0, wantNot: 2},
	}
	for i, s := range steps {
		if err := repo.SetReviewVote(ctx, rid, s.user, s.helpful); err != nil {
			t.Fatalf("step %d: SetReviewVote: %v", i, err)
		}
		rv, _ := repo.GetReview(ctx, rid)
		if rv.Helpful != s.wantHelpful || rv.NotHelpful != s.wantNot {
			t.Fatalf("step %d: got helpful=%d not=%d", i, rv.Helpful, rv.NotHelpful)
		}
	}

	if err := repo.SetReviewVote(ctx, 999, 10, true); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
