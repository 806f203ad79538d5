package jobrequest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/devmatch/internal/service/jobrequest"
	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
	"github.com/garnizeh/devmatch/pkg/repository/mock"
)

func newService(t *testing.T) (*jobrequest.Service, *mock.Mocks) {
	t.Helper()
	m := mock.NewMocks()
	return jobrequest.NewService(m.ReqRepo, m.DevRepo), m
}

func seedDeveloper(m *mock.Mocks, id int64, available bool) {
	m.DevRepo.Devs[id] = &models.Developer{ID: id, Email: "dev@example.com", IsAvailable: available}
	if id > m.DevRepo.NextID {
		m.DevRepo.NextID = id
	}
}

func TestCanTransition(t *testing.T) {
	all := []models.RequestStatus{
		models.StatusPending, models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn,
	}

	for _, from := range all {
		for _, to := range all {
			legal := from == models.StatusPending && to != models.StatusPending
			if got := jobrequest.CanTransition(from, to); got != legal {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, legal)
			}
		}
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		seed    func(m *mock.Mocks)
		in      jobrequest.CreateInput
		wantErr error
	}{
		{
			name:    "DeveloperMissing",
			seed:    func(m *mock.Mocks) {},
			in:      jobrequest.CreateInput{DeveloperID: 99, JobTitle: "Backend"},
			wantErr: jobrequest.ErrDeveloperNotFound,
		},
		{
			name:    "DeveloperUnavailable",
			seed:    func(m *mock.Mocks) { seedDeveloper(m, 1, false) },
			in:      jobrequest.CreateInput{DeveloperID: 1, JobTitle: "Backend"},
			wantErr: jobrequest.ErrDeveloperUnavailable,
		},
		{
			name: "DuplicatePending",
			seed: func(m *mock.Mocks) {
				seedDeveloper(m, 1, true)
				m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}
			},
			in:      jobrequest.CreateInput{DeveloperID: 1, JobTitle: "Backend"},
			wantErr: jobrequest.ErrDuplicatePending,
		},
		{
			name:    "Success",
			seed:    func(m *mock.Mocks) { seedDeveloper(m, 1, true) },
			in:      jobrequest.CreateInput{DeveloperID: 1, JobTitle: "Backend", SalaryOffer: 90000},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.seed(m)

			jr, err := svc.Create(ctx, 10, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if jr.Status != models.StatusPending {
				t.Fatalf("new request status = %s, want pending", jr.Status)
			}
			if jr.SalaryType != models.SalaryYearly {
				t.Fatalf("default salary type = %s, want yearly", jr.SalaryType)
			}
		})
	}
}

// Failed creates must not insert a document.
func TestCreateUnavailableNoInsert(t *testing.T) {
	svc, m := newService(t)
	seedDeveloper(m, 1, false)

	_, err := svc.Create(context.Background(), 10, jobrequest.CreateInput{DeveloperID: 1, JobTitle: "x"})
	if !errors.Is(err, jobrequest.ErrDeveloperUnavailable) {
		t.Fatalf("err = %v, want ErrDeveloperUnavailable", err)
	}
	if len(m.ReqRepo.Requests) != 0 {
		t.Fatalf("request inserted despite unavailable developer")
	}
}

func TestAcceptThenRejectFails(t *testing.T) {
	svc, m := newService(t)
	seedDeveloper(m, 1, true)
	m.ReqRepo.Requests[5] = &models.JobRequest{ID: 5, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}
	m.ReqRepo.NextID = 5

	notes := "looking forward to it"
	jr, err := svc.Accept(context.Background(), 5, 1, &notes)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if jr.Status != models.StatusAccepted {
		t.Fatalf("status = %s, want accepted", jr.Status)
	}
	if jr.DeveloperNotes != notes {
		t.Fatalf("developer notes not written")
	}

	if _, err := svc.Reject(context.Background(), 5, 1, nil); !errors.Is(err, jobrequest.ErrInvalidTransition) {
		t.Fatalf("Reject after accept err = %v, want ErrInvalidTransition", err)
	}
	if got := m.ReqRepo.Requests[5].Status; got != models.StatusAccepted {
		t.Fatalf("status after failed reject = %s, want accepted", got)
	}
}

func TestTerminalStatesSink(t *testing.T) {
	for _, terminal := range []models.RequestStatus{models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn} {
		t.Run(string(terminal), func(t *testing.T) {
			svc, m := newService(t)
			seedDeveloper(m, 1, true)
			m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: terminal}

			if _, err := svc.Accept(context.Background(), 1, 1, nil); !errors.Is(err, jobrequest.ErrInvalidTransition) {
				t.Fatalf("accept from %s err = %v, want ErrInvalidTransition", terminal, err)
			}
			if _, err := svc.Reject(context.Background(), 1, 1, nil); !errors.Is(err, jobrequest.ErrInvalidTransition) {
				t.Fatalf("reject from %s err = %v, want ErrInvalidTransition", terminal, err)
			}

			withdrawn := models.StatusWithdrawn
			caller := jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer}
			if _, err := svc.Update(context.Background(), 1, caller, jobrequest.UpdatePatch{Status: &withdrawn}); !errors.Is(err, jobrequest.ErrInvalidTransition) {
				t.Fatalf("withdraw from %s err = %v, want ErrInvalidTransition", terminal, err)
			}
		})
	}
}

func TestResolveOwnership(t *testing.T) {
	svc, m := newService(t)
	seedDeveloper(m, 1, true)
	m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}

	// developer 2 is not the addressee
	if _, err := svc.Accept(context.Background(), 1, 2, nil); !errors.Is(err, jobrequest.ErrNotYourRequest) {
		t.Fatalf("foreign accept err = %v, want ErrNotYourRequest", err)
	}
	if got := m.ReqRepo.Requests[1].Status; got != models.StatusPending {
		t.Fatalf("status changed by foreign caller: %s", got)
	}
}

func TestUpdateFieldPermissions(t *testing.T) {
	ctx := context.Background()
	withdrawn := models.StatusWithdrawn
	accepted := models.StatusAccepted
	loc := "HQ, room 4"
	devNotes := "my notes"
	empNotes := "their notes"

	tests := []struct {
		name   string
		caller jobrequest.Caller
		patch  jobrequest.UpdatePatch
		check  func(t *testing.T, jr *models.JobRequest)
	}{
		{
			name:   "EmployerWritesInterviewFields",
			caller: jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer},
			patch:  jobrequest.UpdatePatch{InterviewLocation: &loc, EmployerNotes: &empNotes},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.InterviewLocation != loc || jr.EmployerNotes != empNotes {
					t.Fatalf("employer fields not written: %+v", jr)
				}
			},
		},
		{
			name:   "EmployerCannotWriteDeveloperNotes",
			caller: jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer},
			patch:  jobrequest.UpdatePatch{DeveloperNotes: &devNotes},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.DeveloperNotes != "" {
					t.Fatalf("developer notes written by employer")
				}
			},
		},
		{
			name:   "EmployerStatusAcceptedSilentlyDropped",
			caller: jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer},
			patch:  jobrequest.UpdatePatch{Status: &accepted},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.Status != models.StatusPending {
					t.Fatalf("employer accepted own request: %s", jr.Status)
				}
			},
		},
		{
			name:   "EmployerWithdraws",
			caller: jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer},
			patch:  jobrequest.UpdatePatch{Status: &withdrawn},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.Status != models.StatusWithdrawn {
					t.Fatalf("withdraw did not apply: %s", jr.Status)
				}
			},
		},
		{
			name:   "DeveloperWritesNotesAndAccepts",
			caller: jobrequest.Caller{ID: 1, Role: models.RoleDeveloper, Kind: models.KindDeveloper},
			patch:  jobrequest.UpdatePatch{Status: &accepted, DeveloperNotes: &devNotes},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.Status != models.StatusAccepted || jr.DeveloperNotes != devNotes {
					t.Fatalf("developer update not applied: %+v", jr)
				}
			},
		},
		{
			name:   "DeveloperCannotWithdraw",
			caller: jobrequest.Caller{ID: 1, Role: models.RoleDeveloper, Kind: models.KindDeveloper},
			patch:  jobrequest.UpdatePatch{Status: &withdrawn},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.Status != models.StatusPending {
					t.Fatalf("developer withdrew: %s", jr.Status)
				}
			},
		},
		{
			name:   "DeveloperCannotWriteInterviewFields",
			caller: jobrequest.Caller{ID: 1, Role: models.RoleDeveloper, Kind: models.KindDeveloper},
			patch:  jobrequest.UpdatePatch{InterviewLocation: &loc},
			check: func(t *testing.T, jr *models.JobRequest) {
				if jr.InterviewLocation != "" {
					t.Fatalf("interview location written by developer")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			seedDeveloper(m, 1, true)
			m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}

			if _, err := svc.Update(ctx, 1, tt.caller, tt.patch); err != nil {
				t.Fatalf("Update: %v", err)
			}
			tt.check(t, m.ReqRepo.Requests[1])
		})
	}
}

func TestUpdateByStranger(t *testing.T) {
	svc, m := newService(t)
	seedDeveloper(m, 1, true)
	m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}

	caller := jobrequest.Caller{ID: 55, Role: models.RoleEmployer, Kind: models.KindEmployer}
	if _, err := svc.Update(context.Background(), 1, caller, jobrequest.UpdatePatch{}); !errors.Is(err, jobrequest.ErrNotYourRequest) {
		t.Fatalf("stranger update err = %v, want ErrNotYourRequest", err)
	}
}

func TestListScoping(t *testing.T) {
	svc, m := newService(t)
	m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusPending}
	m.ReqRepo.Requests[2] = &models.JobRequest{ID: 2, EmployerID: 20, DeveloperID: 1, Status: models.StatusAccepted}
	m.ReqRepo.Requests[3] = &models.JobRequest{ID: 3, EmployerID: 10, DeveloperID: 2, Status: models.StatusPending}

	devCaller := jobrequest.Caller{ID: 1, Role: models.RoleDeveloper, Kind: models.KindDeveloper}
	rows, total, err := svc.List(context.Background(), devCaller, "", repository.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List developer: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("developer sees %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if r.DeveloperID != 1 {
			t.Fatalf("developer saw a foreign request: %+v", r)
		}
	}

	empCaller := jobrequest.Caller{ID: 10, Role: models.RoleEmployer, Kind: models.KindEmployer}
	rows, _, err = svc.List(context.Background(), empCaller, models.StatusPending, repository.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List employer: %v", err)
	}
	for _, r := range rows {
		if r.EmployerID != 10 || r.Status != models.StatusPending {
			t.Fatalf("employer filter leaked: %+v", r)
		}
	}
}

func TestDelete(t *testing.T) {
	svc, m := newService(t)
	m.ReqRepo.Requests[1] = &models.JobRequest{ID: 1, EmployerID: 10, DeveloperID: 1, Status: models.StatusAccepted}

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(m.ReqRepo.Requests) != 0 {
		t.Fatalf("request not deleted")
	}

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, jobrequest.ErrRequestNotFound) {
		t.Fatalf("delete missing err = %v, want ErrRequestNotFound", err)
	}
}
