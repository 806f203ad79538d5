package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Kind identifies which account namespace a record lives in. Developer and
// Employer emails are separate namespaces: the same address may exist once in
// each.
type Kind string

const (
	KindDeveloper Kind = "developer"
	KindEmployer  Kind = "employer"
)

// Role is the closed set of authorization roles. Admin overlays either
// account kind.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// RequestStatus is the JobRequest lifecycle state.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusRejected  RequestStatus = "rejected"
	StatusWithdrawn RequestStatus = "withdrawn"
)

// IsTerminal reports whether no further transition is defined from s.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// SalaryType qualifies a JobRequest salary offer.
type SalaryType string

const (
	SalaryHourly  SalaryType = "hourly"
	SalaryMonthly SalaryType = "monthly"
	SalaryYearly  SalaryType = "yearly"
)

// CompanySizes lists the accepted employer size buckets.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}

type Developer struct {
	ID                int64    `json:"id" db:"id"`
	FirstName         string   `json:"first_name" db:"first_name"`
	LastName          string   `json:"last_name" db:"last_name"`
	Email             string   `json:"email" db:"email"`
	PasswordHash      string   `json:"-" db:"password_hash"`
	Phone             string   `json:"phone,omitempty" db:"phone"`
	City              string   `json:"city,omitempty" db:"city"`
	Skills            []string `json:"skills" db:"skills"`
	ExperienceYears   int      `json:"experience_years" db:"experience_years"`
	GithubURL         string   `json:"github_url,omitempty" db:"github_url"`
	PortfolioURL      string   `json:"portfolio_url,omitempty" db:"portfolio_url"`
	ResumeURL         string   `json:"resume_url,omitempty" db:"resume_url"`
	ProfilePicture    string   `json:"profile_picture,omitempty" db:"profile_picture"`
	SalaryExpectation int64    `json:"salary_expectation" db:"salary_expectation"`
	IsAvailable       bool     `json:"is_available" db:"is_available"`
	Role              Role     `json:"role" db:"role"`
	ProjectIDs        []int64  `json:"project_ids" db:"project_ids"`
	Created           int64    `json:"created" db:"created"`
	Updated           int64    `json:"updated" db:"updated"`
}

type Employer struct {
	ID           int64  `json:"id" db:"id"`
	CompanyName  string `json:"company_name" db:"company_name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Phone        string `json:"phone" db:"phone"`
	City         string `json:"city" db:"city"`
	Description  string `json:"description,omitempty" db:"description"`
	Website      string `json:"website,omitempty" db:"website"`
	LinkedIn     string `json:"linkedin,omitempty" db:"linkedin"`
	CompanyLogo  string `json:"company_logo,omitempty" db:"company_logo"`
	Industry     string `json:"industry,omitempty" db:"industry"`
	CompanySize  string `json:"company_size,omitempty" db:"company_size"`
	Role         Role   `json:"role" db:"role"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Project struct {
	ID          int64    `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	TechStack   []string `json:"tech_stack" db:"tech_stack"`
	DemoURL     string   `json:"demo_url,omitempty" db:"demo_url"`
	GithubURL   string   `json:"github_url,omitempty" db:"github_url"`
	ImageURL    string   `json:"image_url,omitempty" db:"image_url"`
	DeveloperID int64    `json:"developer_id" db:"developer_id"`
	IsPublic    bool     `json:"is_public" db:"is_public"`
	Created     int64    `json:"created" db:"created"`
	Updated     int64    `json:"updated" db:"updated"`
}

type JobRequest struct {
	ID                int64         `json:"id" db:"id"`
	EmployerID        int64         `json:"employer_id" db:"employer_id"`
	DeveloperID       int64         `json:"developer_id" db:"developer_id"`
	JobTitle          string        `json:"job_title" db:"job_title"`
	JobDescription    string        `json:"job_description" db:"job_description"`
	SalaryOffer       int64         `json:"salary_offer" db:"salary_offer"`
	SalaryType        SalaryType    `json:"salary_type" db:"salary_type"`
	Status            RequestStatus `json:"status" db:"status"`
	InterviewDate     *int64        `json:"interview_date,omitempty" db:"interview_date"`
	InterviewLocation string        `json:"interview_location,omitempty" db:"interview_location"`
	InterviewNotes    string        `json:"interview_notes,omitempty" db:"interview_notes"`
	EmployerNotes     string        `json:"employer_notes,omitempty" db:"employer_notes"`
	DeveloperNotes    string        `json:"developer_notes,omitempty" db:"developer_notes"`
	Created           int64         `json:"created" db:"created"`
	Updated           int64         `json:"updated" db:"updated"`
}

/// DeveloperSummary is a search result row: a developer plus project counts
// computed alongside the search query.
type DeveloperSummary struct {
	Developer
	FullName          string `json:"full_name"`
	ProfileCompletion int    `json:"profile_completion"`
	TotalProjects     int64  `json:"total_projects"`
	PublicProjects    int64  `json:"public_projects"`
	SkillMatches      int    `json:"skill_matches,omitempty"`
}

// ActivityItem is one entry in a dashboard recent-activity feed.
type ActivityItem struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Status  string `json:"status,omitempty"`
	Created int64  `json:"created"`
}
