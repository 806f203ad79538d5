// Package jobrequest implements the job-request lifecycle: creation
// preconditions, the status state machine, and the role-scoped field
// permissions for updates.
package jobrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

var (
	ErrRequestNotFound      = errors.New("job request not found")
	ErrDeveloperNotFound    = errors.New("developer not found")
	ErrDeveloperUnavailable = errors.New("developer is not available")
	ErrDuplicatePending     = errors.New("a pending request for this developer already exists")
	ErrInvalidTransition    = errors.New("illegal status transition")
	ErrNotYourRequest       = errors.New("caller is not a party to this request")
)

// Field length caps shared with the HTTP layer.
const (
	MaxInterviewNotes = 500
	MaxEmployerNotes  = 1000
	MaxDeveloperNotes = 1000
)

// transitions is the closed legality table. Terminal states have no entries:
// every transition out of accepted/rejected/withdrawn is illegal.
var transitions = map[models.RequestStatus]map[models.RequestStatus]bool{
	models.StatusPending: {
		models.StatusAccepted:  true,
		models.StatusRejected:  true,
		models.StatusWithdrawn: true,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to models.RequestStatus) bool {
	return transitions[from][to]
}

// Caller identifies the authenticated account acting on a request.
type Caller struct {
	ID   int64
	Role models.Role
	Kind models.Kind
}

type Service struct {
	requests   repository.JobRequestRepo
	developers repository.DeveloperRepo
}

func NewService(requests repository.JobRequestRepo, developers repository.DeveloperRepo) *Service {
	return &Service{requests: requests, developers: developers}
}

// CreateInput carries the employer-supplied fields for a new request.
type CreateInput struct {
	DeveloperID    int64
	JobTitle       string
	JobDescription string
	SalaryOffer    int64
	SalaryType     models.SalaryType
	EmployerNotes  string
}

// Create inserts a pending request after checking the target developer exists
// and is available. The duplicate-pending check is atomic with the insert:
// the store's unique partial index makes the losing concurrent create fail.
func (s *Service) Create(ctx context.Context, employerID int64, in CreateInput) (*models.JobRequest, error) {
	dev, err := s.developers.GetDeveloperByID(ctx, in.DeveloperID)
	if err != nil {
		return nil, fmt.Errorf("load developer: %w", err)
	}
	if dev == nil {
		return nil, ErrDeveloperNotFound
	}
	// Availability is checked at creation time only, not re-checked later.
	if !dev.IsAvailable {
		return nil, ErrDeveloperUnavailable
	}

	salaryType := in.SalaryType
	if salaryType == "" {
		salaryType = models.SalaryYearly
	}

	jr := &models.JobRequest{
		EmployerID:     employerID,
		DeveloperID:    in.DeveloperID,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
		SalaryOffer:    in.SalaryOffer,
		SalaryType:     salaryType,
		Status:         models.StatusPending,
		EmployerNotes:  in.EmployerNotes,
	}

	id, err := s.requests.CreateJobRequest(ctx, jr)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("create job request: %w", err)
	}
	jr.ID = id

	return jr, nil
}

// Get loads a request, restricted to its two parties (admin sees all).
func (s *Service) Get(ctx context.Context, id int64, caller Caller) (*models.JobRequest, error) {
	jr, err := s.requests.GetJobRequestByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job request: %w", err)
	}
	if jr == nil {
		return nil, ErrRequestNotFound
	}
	if !s.isParty(jr, caller) {
		return nil, ErrNotYourRequest
	}
	return jr, nil
}

// Accept transitions pending -> accepted. Only the request's developer may
// accept, optionally overwriting developerNotes.
func (s *Service) Accept(ctx context.Context, id, developerID int64, notes *string) (*models.JobRequest, error) {
	return s.resolve(ctx, id, developerID, models.StatusAccepted, notes)
}

// Reject transitions pending -> rejected. Only the request's developer may
// reject, optionally overwriting developerNotes.
func (s *Service) Reject(ctx context.Context, id, developerID int64, notes *string) (*models.JobRequest, error) {
	return s.resolve(ctx, id, developerID, models.StatusRejected, notes)
}

func (s *Service) resolve(ctx context.Context, id, developerID int64, to models.RequestStatus, notes *string) (*models.JobRequest, error) {
	jr, err := s.requests.GetJobRequestByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job request: %w", err)
	}
	if jr == nil {
		return nil, ErrRequestNotFound
	}
	if jr.DeveloperID != developerID {
		return nil, ErrNotYourRequest
	}
	if !CanTransition(jr.Status, to) {
		return nil, ErrInvalidTransition
	}

	upd := repository.StatusUpdate{DeveloperNotes: notes}
	if err := s.requests.TransitionJobRequest(ctx, id, jr.Status, to, upd); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("transition job request: %w", err)
	}

	jr.Status = to
	if notes != nil {
		jr.DeveloperNotes = *notes
	}
	return jr, nil
}

// UpdatePatch is a partial update; nil pointers mean "not sent".
type UpdatePatch struct {
	Status            *models.RequestStatus
	InterviewDate     *int64
	InterviewLocation *string
	InterviewNotes    *string
	EmployerNotes     *string
	DeveloperNotes    *string
}

// Update applies a role-scoped partial update. Fields outside the caller's
// writable set are dropped without error; clients send full form state.
// Status changes inside the patch still go through the transition table.
func (s *Service) Update(ctx context.Context, id int64, caller Caller, patch UpdatePatch) (*models.JobRequest, error) {
	jr, err := s.requests.GetJobRequestByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job request: %w", err)
	}
	if jr == nil {
		return nil, ErrRequestNotFound
	}
	if !s.isParty(jr, caller) {
		return nil, ErrNotYourRequest
	}

	allowed := filterPatch(caller.Kind, patch)

	if allowed.Status != nil {
		to := *allowed.Status
		if !CanTransition(jr.Status, to) {
			return nil, ErrInvalidTransition
		}
		upd := repository.StatusUpdate{
			DeveloperNotes:    allowed.DeveloperNotes,
			EmployerNotes:     allowed.EmployerNotes,
			InterviewDate:     allowed.InterviewDate,
			InterviewLocation: allowed.InterviewLocation,
			InterviewNotes:    allowed.InterviewNotes,
		}
		if err := s.requests.TransitionJobRequest(ctx, id, jr.Status, to, upd); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return nil, ErrInvalidTransition
			}
			return nil, fmt.Errorf("transition job request: %w", err)
		}
		jr.Status = to
	} else {
		upd := repository.StatusUpdate{
			DeveloperNotes:    allowed.DeveloperNotes,
			EmployerNotes:     allowed.EmployerNotes,
			InterviewDate:     allowed.InterviewDate,
			InterviewLocation: allowed.InterviewLocation,
			InterviewNotes:    allowed.InterviewNotes,
		}
		if err := s.requests.UpdateJobRequestFields(ctx, id, upd); err != nil {
			return nil, fmt.Errorf("update job request: %w", err)
		}
	}

	applyPatch(jr, allowed)
	return jr, nil
}

// filterPatch keeps only the fields the caller's kind may write.
func filterPatch(kind models.Kind, patch UpdatePatch) UpdatePatch {
	var allowed UpdatePatch
	switch kind {
	case models.KindEmployer:
		allowed.InterviewDate = patch.InterviewDate
		allowed.InterviewLocation = patch.InterviewLocation
		allowed.InterviewNotes = patch.InterviewNotes
		allowed.EmployerNotes = patch.EmployerNotes
		if patch.Status != nil && *patch.Status == models.StatusWithdrawn {
			allowed.Status = patch.Status
		}
	case models.KindDeveloper:
		allowed.DeveloperNotes = patch.DeveloperNotes
		if patch.Status != nil {
			switch *patch.Status {
			case models.StatusAccepted, models.StatusRejected:
				allowed.Status = patch.Status
			}
		}
	}
	return allowed
}

func applyPatch(jr *models.JobRequest, p UpdatePatch) {
	if p.InterviewDate != nil {
		jr.InterviewDate = p.InterviewDate
	}
	if p.InterviewLocation != nil {
		jr.InterviewLocation = *p.InterviewLocation
	}
	if p.InterviewNotes != nil {
		jr.InterviewNotes = *p.InterviewNotes
	}
	if p.EmployerNotes != nil {
		jr.EmployerNotes = *p.EmployerNotes
	}
	if p.DeveloperNotes != nil {
		jr.DeveloperNotes = *p.DeveloperNotes
	}
}

// List returns the caller's side of the request ledger. Developers see the
// requests addressed to them, employers the ones they sent.
func (s *Service) List(ctx context.Context, caller Caller, status models.RequestStatus, page repository.Page) ([]models.JobRequest, int64, error) {
	f := repository.JobRequestFilter{Status: status, Page: page}
	switch caller.Kind {
	case models.KindDeveloper:
		f.DeveloperID = caller.ID
	case models.KindEmployer:
		f.EmployerID = caller.ID
	}
	return s.requests.ListJobRequests(ctx, f)
}

// Delete hard-deletes a request. Admin-only; the route enforces the role.
func (s *Service) Delete(ctx context.Context, id int64) error {
	jr, err := s.requests.GetJobRequestByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load job request: %w", err)
	}
	if jr == nil {
		return ErrRequestNotFound
	}
	if err := s.requests.DeleteJobRequest(ctx, id); err != nil {
		return fmt.Errorf("delete job request: %w", err)
	}
	return nil
}

func (s *Service) isParty(jr *models.JobRequest, caller Caller) bool {
	if caller.Role == models.RoleAdmin {
		return true
	}
	switch caller.Kind {
	case models.KindDeveloper:
		return jr.DeveloperID == caller.ID
	case models.KindEmployer:
		return jr.EmployerID == caller.ID
	}
	return false
}
