// Package mock provides hand-written in-memory repository doubles for
// handler and service tests.
package mock

import (
	"context"
	"sort"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type Mocks struct {
	DevRepo  *DeveloperRepo
	EmpRepo  *EmployerRepo
	ProjRepo *ProjectRepo
	ReqRepo  *JobRequestRepo
}

func NewMocks() *Mocks {
	devs := &DeveloperRepo{Devs: map[int64]*models.Developer{}}
	return &Mocks{
		DevRepo:  devs,
		EmpRepo:  &EmployerRepo{Emps: map[int64]*models.Employer{}},
		ProjRepo: &ProjectRepo{Projects: map[int64]*models.Project{}, devs: devs},
		ReqRepo:  &JobRequestRepo{Requests: map[int64]*models.JobRequest{}},
	}
}

type DeveloperRepo struct {
	Devs      map[int64]*models.Developer
	NextID    int64
	CreateErr error
}

var _ repository.DeveloperRepo = (*DeveloperRepo)(nil)

func (m *DeveloperRepo) CreateDeveloper(ctx context.Context, d *models.Developer) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, e := range m.Devs {
		if strings.EqualFold(e.Email, d.Email) {
			return 0, repository.ErrEmailTaken
		}
	}
	m.NextID++
	cp := *d
	cp.ID = m.NextID
	m.Devs[cp.ID] = &cp
	return cp.ID, nil
}

func (m *DeveloperRepo) GetDeveloperByID(ctx context.Context, id int64) (*models.Developer, error) {
	if d, ok := m.Devs[id]; ok {
		return d, nil
	}
	return nil, nil
}

func (m *DeveloperRepo) GetDeveloperByEmail(ctx context.Context, email string) (*models.Developer, error) {
	for _, d := range m.Devs {
		if strings.EqualFold(d.Email, email) {
			return d, nil
		}
	}
	return nil, nil
}

func (m *DeveloperRepo) UpdateDeveloper(ctx context.Context, d *models.Developer) error {
	m.Devs[d.ID] = d
	return nil
}

func (m *DeveloperRepo) SetDeveloperAvailability(ctx context.Context, id int64, available bool) error {
	if d, ok := m.Devs[id]; ok {
		d.IsAvailable = available
	}
	return nil
}

func (m *DeveloperRepo) ListDevelopers(ctx context.Context, f repository.DeveloperFilter) ([]models.Developer, int64, error) {
	var out []models.Developer
	for _, d := range m.Devs {
		if f.City != "" && !strings.EqualFold(d.City, f.City) {
			continue
		}
		if f.IsAvailable != nil && d.IsAvailable != *f.IsAvailable {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *DeveloperRepo) DeleteDeveloper(ctx context.Context, id int64) error {
	delete(m.Devs, id)
	return nil
}

type EmployerRepo struct {
	Emps      map[int64]*models.Employer
	NextID    int64
	CreateErr error
}

var _ repository.EmployerRepo = (*EmployerRepo)(nil)

func (m *EmployerRepo) CreateEmployer(ctx context.Context, e *models.Employer) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, x := range m.Emps {
		if strings.EqualFold(x.Email, e.Email) {
			return 0, repository.ErrEmailTaken
		}
	}
	m.NextID++
	cp := *e
	cp.ID = m.NextID
	m.Emps[cp.ID] = &cp
	return cp.ID, nil
}

func (m *EmployerRepo) GetEmployerByID(ctx context.Context, id int64) (*models.Employer, error) {
	if e, ok := m.Emps[id]; ok {
		return e, nil
	}
	return nil, nil
}

func (m *EmployerRepo) GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error) {
	for _, e := range m.Emps {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return nil, nil
}

func (m *EmployerRepo) UpdateEmployer(ctx context.Context, e *models.Employer) error {
	m.Emps[e.ID] = e
	return nil
}

func (m *EmployerRepo) ListEmployers(ctx context.Context, f repository.EmployerFilter) ([]models.Employer, int64, error) {
	var out []models.Employer
	for _, e := range m.Emps {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *EmployerRepo) DeleteEmployer(ctx context.Context, id int64) error {
	delete(m.Emps, id)
	return nil
}

type ProjectRepo struct {
	Projects  map[int64]*models.Project
	NextID    int64
	CreateErr error
	devs      *DeveloperRepo
}

var _ repository.ProjectRepo = (*ProjectRepo)(nil)

func (m *ProjectRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.NextID++
	cp := *p
	cp.ID = m.NextID
	m.Projects[cp.ID] = &cp
	if d, ok := m.devs.Devs[cp.DeveloperID]; ok {
		d.ProjectIDs = append(d.ProjectIDs, cp.ID)
	}
	return cp.ID, nil
}

func (m *ProjectRepo) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	if p, ok := m.Projects[id]; ok {
		return p, nil
	}
	return nil, nil
}

func (m *ProjectRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	m.Projects[p.ID] = p
	return nil
}

func (m *ProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	if p, ok := m.Projects[id]; ok {
		if d, ok := m.devs.Devs[p.DeveloperID]; ok {
			ids := d.ProjectIDs[:0]
			for _, pid := range d.ProjectIDs {
				if pid != id {
					ids = append(ids, pid)
				}
			}
			d.ProjectIDs = ids
		}
	}
	delete(m.Projects, id)
	return nil
}

func (m *ProjectRepo) ListProjects(ctx context.Context, f repository.ProjectFilter) ([]models.Project, int64, error) {
	var out []models.Project
	for _, p := range m.Projects {
		if f.PublicOnly && !p.IsPublic {
			continue
		}
		if f.DeveloperID != 0 && p.DeveloperID != f.DeveloperID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *ProjectRepo) CountProjectsByDeveloper(ctx context.Context, developerID int64) (int64, int64, error) {
	var total, public int64
	for _, p := range m.Projects {
		if p.DeveloperID != developerID {
			continue
		}
		total++
		if p.IsPublic {
			public++
		}
	}
	return total, public, nil
}

type JobRequestRepo struct {
	Requests  map[int64]*models.JobRequest
	NextID    int64
	CreateErr error
}

var _ repository.JobRequestRepo = (*JobRequestRepo)(nil)

func (m *JobRequestRepo) CreateJobRequest(ctx context.Context, jr *models.JobRequest) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, r := range m.Requests {
		if r.EmployerID == jr.EmployerID && r.DeveloperID == jr.DeveloperID && r.Status == models.StatusPending {
			return 0, repository.ErrDuplicatePending
		}
	}
	m.NextID++
	cp := *jr
	cp.ID = m.NextID
	m.Requests[cp.ID] = &cp
	return cp.ID, nil
}

func (m *JobRequestRepo) GetJobRequestByID(ctx context.Context, id int64) (*models.JobRequest, error) {
	if r, ok := m.Requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *JobRequestRepo) TransitionJobRequest(ctx context.Context, id int64, from, to models.RequestStatus, upd repository.StatusUpdate) error {
	r, ok := m.Requests[id]
	if !ok || r.Status != from {
		return repository.ErrStaleStatus
	}
	r.Status = to
	applyUpdate(r, upd)
	return nil
}

func (m *JobRequestRepo) UpdateJobRequestFields(ctx context.Context, id int64, upd repository.StatusUpdate) error {
	if r, ok := m.Requests[id]; ok {
		applyUpdate(r, upd)
	}
	return nil
}

func applyUpdate(r *models.JobRequest, upd repository.StatusUpdate) {
	if upd.DeveloperNotes != nil {
		r.DeveloperNotes = *upd.DeveloperNotes
	}
	if upd.EmployerNotes != nil {
		r.EmployerNotes = *upd.EmployerNotes
	}
	if upd.InterviewDate != nil {
		r.InterviewDate = upd.InterviewDate
	}
	if upd.InterviewLocation != nil {
		r.InterviewLocation = *upd.InterviewLocation
	}
	if upd.InterviewNotes != nil {
		r.InterviewNotes = *upd.InterviewNotes
	}
}

func (m *JobRequestRepo) ListJobRequests(ctx context.Context, f repository.JobRequestFilter) ([]models.JobRequest, int64, error) {
	var out []models.JobRequest
	for _, r := range m.Requests {
		if f.EmployerID != 0 && r.EmployerID != f.EmployerID {
			continue
		}
		if f.DeveloperID != 0 && r.DeveloperID != f.DeveloperID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *JobRequestRepo) CountJobRequests(ctx context.Context, f repository.JobRequestFilter) (int64, error) {
	_, n, err := m.ListJobRequests(ctx, f)
	return n, err
}

func (m *JobRequestRepo) DeleteJobRequest(ctx context.Context, id int64) error {
	delete(m.Requests, id)
	return nil
}
