package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/devmatch/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookup methods return (nil, nil) when no row matches.

// ErrDuplicatePending is returned by CreateJobRequest when a pending request
// already exists for the (employer, developer) pair. The store enforces this
// with a unique partial index, so concurrent creates cannot both succeed.
var ErrDuplicatePending = errors.New("pending job request already exists for this pair")

// ErrStaleStatus is returned by TransitionJobRequest when the row is no longer
// in the expected source status.
var ErrStaleStatus = errors.New("job request status changed concurrently")

// ErrEmailTaken is returned by the account create methods when the email is
// already registered in that account kind's namespace.
var ErrEmailTaken = errors.New("email already registered")

// Page describes offset pagination shared by list queries.
type Page struct {
	Limit  int
	Offset int
}

type DeveloperFilter struct {
	City          string
	IsAvailable   *bool
	MinExperience *int
	Page          Page
}

type EmployerFilter struct {
	City     string
	Industry string
	Page     Page
}

type DeveloperRepo interface {
	CreateDeveloper(ctx context.Context, d *models.Developer) (int64, error)
	GetDeveloperByID(ctx context.Context, id int64) (*models.Developer, error)
	GetDeveloperByEmail(ctx context.Context, email string) (*models.Developer, error)
	UpdateDeveloper(ctx context.Context, d *models.Developer) error
	SetDeveloperAvailability(ctx context.Context, id int64, available bool) error
	ListDevelopers(ctx context.Context, f DeveloperFilter) ([]models.Developer, int64, error)
	DeleteDeveloper(ctx context.Context, id int64) error
}

type EmployerRepo interface {
	CreateEmployer(ctx context.Context, e *models.Employer) (int64, error)
	GetEmployerByID(ctx context.Context, id int64) (*models.Employer, error)
	GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error)
	UpdateEmployer(ctx context.Context, e *models.Employer) error
	ListEmployers(ctx context.Context, f EmployerFilter) ([]models.Employer, int64, error)
	DeleteEmployer(ctx context.Context, id int64) error
}

type ProjectFilter struct {
	DeveloperID int64
	TechStack   []string
	PublicOnly  bool
	SortBy      string
	SortDesc    bool
	Page        Page
}

type ProjectRepo interface {
	// CreateProject inserts the project and appends its id to the owning
	// developer's project list in the same transaction.
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	// DeleteProject removes the id from the owner's project list and deletes
	// the row in the same transaction.
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error)
	CountProjectsByDeveloper(ctx context.Context, developerID int64) (total, public int64, err error)
}

type JobRequestFilter struct {
	EmployerID  int64
	DeveloperID int64
	Status      models.RequestStatus
	Page        Page
}

// StatusUpdate carries the optional fields written alongside a transition.
type StatusUpdate struct {
	DeveloperNotes    *string
	EmployerNotes     *string
	InterviewDate     *int64
	InterviewLocation *string
	InterviewNotes    *string
}

type JobRequestRepo interface {
	// CreateJobRequest performs an atomic check-and-insert: it fails with
	// ErrDuplicatePending instead of inserting a second pending request for
	// the same (employer, developer) pair.
	CreateJobRequest(ctx context.Context, jr *models.JobRequest) (int64, error)
	GetJobRequestByID(ctx context.Context, id int64) (*models.JobRequest, error)
	// TransitionJobRequest moves the request from to to in one conditional
	// write; ErrStaleStatus reports that the row left the from status first.
	TransitionJobRequest(ctx context.Context, id int64, from, to models.RequestStatus, upd StatusUpdate) error
	UpdateJobRequestFields(ctx context.Context, id int64, upd StatusUpdate) error
	ListJobRequests(ctx context.Context, f JobRequestFilter) ([]models.JobRequest, int64, error)
	CountJobRequests(ctx context.Context, f JobRequestFilter) (int64, error)
	DeleteJobRequest(ctx context.Context, id int64) error
}

// SearchCriteria is the conjunctive developer-search predicate. Zero values
// mean "no constraint"; IsAvailable defaults to true at the handler layer.
type SearchCriteria struct {
	Skills        []string
	City          string
	MinExperience *int
	MaxExperience *int
	MinSalary     *int64
	MaxSalary     *int64
	IsAvailable   *bool
	SortBy        string
	SortDesc      bool
	Page          Page
}

type DeveloperStatistics struct {
	Total         int64   `json:"total"`
	Available     int64   `json:"available"`
	AvgExperience float64 `json:"avg_experience"`
	MinExperience int     `json:"min_experience"`
	MaxExperience int     `json:"max_experience"`
}

type SearchRepo interface {
	SearchDevelopers(ctx context.Context, c SearchCriteria) ([]models.DeveloperSummary, int64, error)
	QuickSearchDevelopers(ctx context.Context, q string, limit int) ([]models.DeveloperSummary, error)
	DistinctSkills(ctx context.Context) ([]string, error)
	DistinctCities(ctx context.Context) ([]string, error)
	DeveloperStatistics(ctx context.Context) (*DeveloperStatistics, error)
}

// MonthBucket is one month of the job-request creation histogram.
type MonthBucket struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type PlatformTotals struct {
	Developers  int64 `json:"developers"`
	Employers   int64 `json:"employers"`
	Projects    int64 `json:"projects"`
	JobRequests int64 `json:"job_requests"`
}

type DashboardRepo interface {
	RecentDeveloperActivity(ctx context.Context, developerID int64, limit int) ([]models.ActivityItem, error)
	RecentEmployerActivity(ctx context.Context, employerID int64, limit int) ([]models.ActivityItem, error)
	PlatformTotals(ctx context.Context) (*PlatformTotals, error)
	JobRequestHistogram(ctx context.Context, months int) ([]MonthBucket, error)
}
