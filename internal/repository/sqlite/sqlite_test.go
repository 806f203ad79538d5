package sqlite_test

import (
	"context"
	"errors"
	"testing"

	dbfs "github.com/garnizeh/devmatch/db"
	dbpkg "github.com/garnizeh/devmatch/internal/db"
	sqlite "github.com/garnizeh/devmatch/internal/repository/sqlite"
	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	// in-memory databases share state across connections while one is open;
	// drop rows so each test starts clean
	for _, table := range []string{"job_requests", "projects", "developers", "employers"} {
		if _, err := d.Exec(ctx, "DELETE FROM "+table); err != nil {
			d.Close()
			t.Fatalf("failed to clear %s: %v", table, err)
		}
	}

	repo := sqlite.New(d)
	return repo, func() { d.Close() }
}

func seedDeveloper(t *testing.T, repo *sqlite.SQLiteRepo, email string, skills []string, available bool) int64 {
	t.Helper()
	id, err := repo.CreateDeveloper(context.Background(), &models.Developer{
		FirstName:   "Test",
		LastName:    "Dev",
		Email:       email,
		Skills:      skills,
		IsAvailable: available,
	})
	if err != nil {
		t.Fatalf("CreateDeveloper(%s): %v", email, err)
	}
	return id
}

func seedEmployer(t *testing.T, repo *sqlite.SQLiteRepo, email string) int64 {
	t.Helper()
	id, err := repo.CreateEmployer(context.Background(), &models.Employer{
		CompanyName: "Acme",
		Email:       email,
		Phone:       "555",
		City:        "Berlin",
	})
	if err != nil {
		t.Fatalf("CreateEmployer(%s): %v", email, err)
	}
	return id
}

func TestDeveloperCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.CreateDeveloper(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil developer")
	}

	got, err := repo.GetDeveloperByID(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("missing id: got %v, %v; want nil, nil", got, err)
	}

	id := seedDeveloper(t, repo, "alice@example.com", []string{"Go", "Rust"}, true)

	got, err = repo.GetDeveloperByID(ctx, id)
	if err != nil {
		t.Fatalf("GetDeveloperByID: %v", err)
	}
	if got == nil || got.Email != "alice@example.com" {
		t.Fatalf("unexpected developer: %+v", got)
	}
	if len(got.Skills) != 2 {
		t.Fatalf("skills not round-tripped: %+v", got.Skills)
	}
	if got.Role != models.RoleDeveloper {
		t.Fatalf("default role = %s", got.Role)
	}

	// lookup is case-insensitive
	got, err = repo.GetDeveloperByEmail(ctx, "ALICE@Example.COM")
	if err != nil || got == nil {
		t.Fatalf("case-insensitive lookup failed: %v, %v", got, err)
	}

	got.City = "Berlin"
	got.ExperienceYears = 4
	if err := repo.UpdateDeveloper(ctx, got); err != nil {
		t.Fatalf("UpdateDeveloper: %v", err)
	}
	got, _ = repo.GetDeveloperByID(ctx, id)
	if got.City != "Berlin" || got.ExperienceYears != 4 {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.SetDeveloperAvailability(ctx, id, false); err != nil {
		t.Fatalf("SetDeveloperAvailability: %v", err)
	}
	got, _ = repo.GetDeveloperByID(ctx, id)
	if got.IsAvailable {
		t.Fatalf("availability not persisted")
	}

	if err := repo.DeleteDeveloper(ctx, id); err != nil {
		t.Fatalf("DeleteDeveloper: %v", err)
	}
	got, _ = repo.GetDeveloperByID(ctx, id)
	if got != nil {
		t.Fatalf("developer not deleted")
	}
}

func TestDeveloperEmailUnique(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	seedDeveloper(t, repo, "a@x.com", nil, true)

	_, err := repo.CreateDeveloper(ctx, &models.Developer{FirstName: "B", LastName: "C", Email: "A@X.com"})
	if !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v, want ErrEmailTaken", err)
	}

	// the same address is a separate namespace for employers
	if _, err := repo.CreateEmployer(ctx, &models.Employer{CompanyName: "Acme", Email: "a@x.com"}); err != nil {
		t.Fatalf("employer with developer's email rejected: %v", err)
	}
}

func TestProjectListMaintenance(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	devID := seedDeveloper(t, repo, "owner@x.com", nil, true)

	p1, err := repo.CreateProject(ctx, &models.Project{Title: "One", Description: "first project here", TechStack: []string{"Go"}, DeveloperID: devID, IsPublic: true})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	p2, err := repo.CreateProject(ctx, &models.Project{Title: "Two", Description: "second project here", TechStack: []string{"Rust"}, DeveloperID: devID, IsPublic: false})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	dev, _ := repo.GetDeveloperByID(ctx, devID)
	if len(dev.ProjectIDs) != 2 || dev.ProjectIDs[0] != p1 || dev.ProjectIDs[1] != p2 {
		t.Fatalf("forward list not maintained: %+v", dev.ProjectIDs)
	}

	total, public, err := repo.CountProjectsByDeveloper(ctx, devID)
	if err != nil {
		t.Fatalf("CountProjectsByDeveloper: %v", err)
	}
	if total != 2 || public != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", total, public)
	}

	if err := repo.DeleteProject(ctx, p1); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	dev, _ = repo.GetDeveloperByID(ctx, devID)
	if len(dev.ProjectIDs) != 1 || dev.ProjectIDs[0] != p2 {
		t.Fatalf("forward list after delete: %+v", dev.ProjectIDs)
	}
	if p, _ := repo.GetProjectByID(ctx, p1); p != nil {
		t.Fatalf("project row not deleted")
	}
}

func TestProjectListFilters(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	devID := seedDeveloper(t, repo, "owner@x.com", nil, true)
	mustCreate := func(title string, tech []string, public bool) {
		t.Helper()
		if _, err := repo.CreateProject(ctx, &models.Project{Title: title, Description: "description here", TechStack: tech, DeveloperID: devID, IsPublic: public}); err != nil {
			t.Fatalf("CreateProject(%s): %v", title, err)
		}
	}
	mustCreate("GoApp", []string{"Go", "Postgres"}, true)
	mustCreate("Secret", []string{"Go"}, false)
	mustCreate("WebApp", []string{"React"}, true)

	rows, total, err := repo.ListProjects(ctx, repository.ProjectFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("public-only total = %d, want 2", total)
	}

	rows, _, err = repo.ListProjects(ctx, repository.ProjectFilter{PublicOnly: true, TechStack: []string{"Go"}})
	if err != nil {
		t.Fatalf("ListProjects tech: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "GoApp" {
		t.Fatalf("tech filter rows: %+v", rows)
	}
}

func TestJobRequestSinglePending(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	devID := seedDeveloper(t, repo, "dev@x.com", nil, true)
	empID := seedEmployer(t, repo, "emp@x.com")

	jr := &models.JobRequest{EmployerID: empID, DeveloperID: devID, JobTitle: "Backend", SalaryOffer: 90000, SalaryType: models.SalaryYearly}
	id1, err := repo.CreateJobRequest(ctx, jr)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	if _, err := repo.CreateJobRequest(ctx, jr); !errors.Is(err, repository.ErrDuplicatePending) {
		t.Fatalf("second create err = %v, want ErrDuplicatePending", err)
	}

	// resolving the pending request frees the pair for a new one
	if err := repo.TransitionJobRequest(ctx, id1, models.StatusPending, models.StatusRejected, repository.StatusUpdate{}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if _, err := repo.CreateJobRequest(ctx, jr); err != nil {
		t.Fatalf("create after resolve: %v", err)
	}
}

func TestJobRequestTransitionStale(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	devID := seedDeveloper(t, repo, "dev@x.com", nil, true)
	empID := seedEmployer(t, repo, "emp@x.com")

	id, err := repo.CreateJobRequest(ctx, &models.JobRequest{EmployerID: empID, DeveloperID: devID, JobTitle: "Backend", SalaryType: models.SalaryYearly})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "see you monday"
	if err := repo.TransitionJobRequest(ctx, id, models.StatusPending, models.StatusAccepted, repository.StatusUpdate{DeveloperNotes: &notes}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	got, _ := repo.GetJobRequestByID(ctx, id)
	if got.Status != models.StatusAccepted || got.DeveloperNotes != notes {
		t.Fatalf("transition not persisted: %+v", got)
	}

	// the row left pending, so a second conditional write must not apply
	err = repo.TransitionJobRequest(ctx, id, models.StatusPending, models.StatusRejected, repository.StatusUpdate{})
	if !errors.Is(err, repository.ErrStaleStatus) {
		t.Fatalf("stale transition err = %v, want ErrStaleStatus", err)
	}
	got, _ = repo.GetJobRequestByID(ctx, id)
	if got.Status != models.StatusAccepted {
		t.Fatalf("status overwritten: %s", got.Status)
	}
}

func TestSearchDevelopersRanking(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	seedDeveloper(t, repo, "both@x.com", []string{"Go", "Rust"}, true)
	seedDeveloper(t, repo, "goonly@x.com", []string{"Go"}, true)
	seedDeveloper(t, repo, "none@x.com", []string{"PHP"}, true)

	for _, sortBy := range []string{"", "name", "experience_years", "salary_expectation"} {
		rows, total, err := repo.SearchDevelopers(ctx, repository.SearchCriteria{
			Skills: []string{"Go", "Rust"},
			SortBy: sortBy,
		})
		if err != nil {
			t.Fatalf("SearchDevelopers(sortBy=%q): %v", sortBy, err)
		}
		if total != 2 {
			t.Fatalf("sortBy=%q: total = %d, want 2", sortBy, total)
		}
		if rows[0].Email != "both@x.com" {
			t.Fatalf("sortBy=%q: two-skill match not ranked first: %s", sortBy, rows[0].Email)
		}
		if rows[0].SkillMatches != 2 || rows[1].SkillMatches != 1 {
			t.Fatalf("sortBy=%q: overlap counts %d/%d", sortBy, rows[0].SkillMatches, rows[1].SkillMatches)
		}
	}
}

func TestSearchDevelopersAvailabilityFilter(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	seedDeveloper(t, repo, "free@x.com", []string{"Go"}, true)
	seedDeveloper(t, repo, "busy@x.com", []string{"Go"}, false)

	avail := true
	rows, _, err := repo.SearchDevelopers(ctx, repository.SearchCriteria{Skills: []string{"Go"}, IsAvailable: &avail})
	if err != nil {
		t.Fatalf("SearchDevelopers: %v", err)
	}
	if len(rows) != 1 || rows[0].Email != "free@x.com" {
		t.Fatalf("availability filter leaked: %+v", rows)
	}
}

func TestQuickSearch(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	id := seedDeveloper(t, repo, "ada@x.com", []string{"Go"}, true)
	dev, _ := repo.GetDeveloperByID(ctx, id)
	dev.FirstName = "Ada"
	dev.LastName = "Lovelace"
	dev.City = "London"
	if err := repo.UpdateDeveloper(ctx, dev); err != nil {
		t.Fatalf("UpdateDeveloper: %v", err)
	}

	for _, q := range []string{"ada", "go", "lond"} {
		rows, err := repo.QuickSearchDevelopers(ctx, q, 10)
		if err != nil {
			t.Fatalf("QuickSearchDevelopers(%q): %v", q, err)
		}
		if len(rows) != 1 {
			t.Fatalf("QuickSearchDevelopers(%q): %d rows, want 1", q, len(rows))
		}
	}
}

func TestDistinctAndStatistics(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	id1 := seedDeveloper(t, repo, "a@x.com", []string{"Go", "Rust"}, true)
	id2 := seedDeveloper(t, repo, "b@x.com", []string{"Go", "Python"}, false)
	for i, id := range []int64{id1, id2} {
		dev, _ := repo.GetDeveloperByID(ctx, id)
		dev.City = []string{"Berlin", "Amsterdam"}[i]
		dev.ExperienceYears = (i + 1) * 2
		if err := repo.UpdateDeveloper(ctx, dev); err != nil {
			t.Fatalf("UpdateDeveloper: %v", err)
		}
	}

	skills, err := repo.DistinctSkills(ctx)
	if err != nil {
		t.Fatalf("DistinctSkills: %v", err)
	}
	want := []string{"Go", "Python", "Rust"}
	if len(skills) != len(want) {
		t.Fatalf("skills = %v, want %v", skills, want)
	}
	for i := range want {
		if skills[i] != want[i] {
			t.Fatalf("skills = %v, want %v", skills, want)
		}
	}

	cities, err := repo.DistinctCities(ctx)
	if err != nil {
		t.Fatalf("DistinctCities: %v", err)
	}
	if len(cities) != 2 || cities[0] != "Amsterdam" {
		t.Fatalf("cities = %v", cities)
	}

	stats, err := repo.DeveloperStatistics(ctx)
	if err != nil {
		t.Fatalf("DeveloperStatistics: %v", err)
	}
	if stats.Total != 2 || stats.Available != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.MinExperience != 2 || stats.MaxExperience != 4 {
		t.Fatalf("experience range = %d..%d", stats.MinExperience, stats.MaxExperience)
	}
}

func TestDashboardQueries(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	devID := seedDeveloper(t, repo, "dev@x.com", nil, true)
	empID := seedEmployer(t, repo, "emp@x.com")

	if _, err := repo.CreateProject(ctx, &models.Project{Title: "P", Description: "description here", TechStack: []string{"Go"}, DeveloperID: devID, IsPublic: true}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := repo.CreateJobRequest(ctx, &models.JobRequest{EmployerID: empID, DeveloperID: devID, JobTitle: "Backend", SalaryType: models.SalaryYearly}); err != nil {
		t.Fatalf("CreateJobRequest: %v", err)
	}

	items, err := repo.RecentDeveloperActivity(ctx, devID, 5)
	if err != nil {
		t.Fatalf("RecentDeveloperActivity: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("activity items = %d, want 2", len(items))
	}

	items, err = repo.RecentEmployerActivity(ctx, empID, 5)
	if err != nil {
		t.Fatalf("RecentEmployerActivity: %v", err)
	}
	if len(items) != 1 || items[0].Type != "job_request" {
		t.Fatalf("employer activity = %+v", items)
	}

	totals, err := repo.PlatformTotals(ctx)
	if err != nil {
		t.Fatalf("PlatformTotals: %v", err)
	}
	if totals.Developers != 1 || totals.Employers != 1 || totals.Projects != 1 || totals.JobRequests != 1 {
		t.Fatalf("totals = %+v", totals)
	}

	buckets, err := repo.JobRequestHistogram(ctx, 6)
	if err != nil {
		t.Fatalf("JobRequestHistogram: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Count != 1 {
		t.Fatalf("histogram = %+v", buckets)
	}
}
