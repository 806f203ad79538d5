package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/garnizeh/devmatch/internal/service/jobrequest"
	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type JobRequestHandler struct {
	svc *jobrequest.Service
}

func NewJobRequestHandler(svc *jobrequest.Service) *JobRequestHandler {
	return &JobRequestHandler{svc: svc}
}

func serviceCaller(c Caller) jobrequest.Caller {
	return jobrequest.Caller{ID: c.ID, Role: c.Role, Kind: c.Kind}
}

func (h *JobRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		respondError(w, r, errUnauthorized("missing credentials"))
		return
	}
	page, limit := parsePage(r)

	status := models.RequestStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusPending, models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn:
	default:
		respondError(w, r, errValidation("status: unknown value"))
		return
	}

	reqs, total, err := h.svc.List(r.Context(), serviceCaller(caller), status,
		repository.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, reqs, newPagination(page, limit, total))
}

func (h *JobRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		respondError(w, r, errUnauthorized("missing credentials"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	jr, err := h.svc.Get(r.Context(), id, serviceCaller(caller))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, jr, http.StatusOK)
}

type createJobRequestRequest struct {
	DeveloperID    int64  `json:"developer_id"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	SalaryOffer    int64  `json:"salary_offer"`
	SalaryType     string `json:"salary_type"`
	EmployerNotes  string `json:"employer_notes"`
}

// validate collects every field problem so the client gets one aggregate
// message instead of fixing errors one round trip at a time.
func (req *createJobRequestRequest) validate() string {
	var problems []string
	if req.DeveloperID <= 0 {
		problems = append(problems, "developer_id: is required")
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		problems = append(problems, "job_title: is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		problems = append(problems, "job_description: is required")
	}
	if req.SalaryOffer <= 0 {
		problems = append(problems, "salary_offer: must be positive")
	}
	switch models.SalaryType(req.SalaryType) {
	case "", models.SalaryHourly, models.SalaryMonthly, models.SalaryYearly:
	default:
		problems = append(problems, "salary_type: unknown value")
	}
	if len(req.EmployerNotes) > jobrequest.MaxEmployerNotes {
		problems = append(problems, "employer_notes: too long")
	}
	return strings.Join(problems, "; ")
}

func (h *JobRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	emp, ok := employerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("employer account required"))
		return
	}
	var req createJobRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, r, errValidation(msg))
		return
	}

	jr, err := h.svc.Create(r.Context(), emp.ID, jobrequest.CreateInput{
		DeveloperID:    req.DeveloperID,
		JobTitle:       strings.TrimSpace(req.JobTitle),
		JobDescription: req.JobDescription,
		SalaryOffer:    req.SalaryOffer,
		SalaryType:     models.SalaryType(req.SalaryType),
		EmployerNotes:  req.EmployerNotes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, jr, http.StatusCreated)
}

type updateJobRequestRequest struct {
	Status            *string `json:"status"`
	InterviewDate     *int64  `json:"interview_date"`
	InterviewLocation *string `json:"interview_location"`
	InterviewNotes    *string `json:"interview_notes"`
	EmployerNotes     *string `json:"employer_notes"`
	DeveloperNotes    *string `json:"developer_notes"`
}

func (h *JobRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		respondError(w, r, errUnauthorized("missing credentials"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	var req updateJobRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if req.InterviewNotes != nil && len(*req.InterviewNotes) > jobrequest.MaxInterviewNotes {
		respondError(w, r, errValidation("interview_notes: too long"))
		return
	}
	if req.EmployerNotes != nil && len(*req.EmployerNotes) > jobrequest.MaxEmployerNotes {
		respondError(w, r, errValidation("employer_notes: too long"))
		return
	}
	if req.DeveloperNotes != nil && len(*req.DeveloperNotes) > jobrequest.MaxDeveloperNotes {
		respondError(w, r, errValidation("developer_notes: too long"))
		return
	}

	patch := jobrequest.UpdatePatch{
		InterviewDate:     req.InterviewDate,
		InterviewLocation: req.InterviewLocation,
		InterviewNotes:    req.InterviewNotes,
		EmployerNotes:     req.EmployerNotes,
		DeveloperNotes:    req.DeveloperNotes,
	}
	if req.Status != nil {
		s := models.RequestStatus(*req.Status)
		switch s {
		case models.StatusPending, models.StatusAccepted, models.StatusRejected, models.StatusWithdrawn:
			patch.Status = &s
		default:
			respondError(w, r, errValidation("status: unknown value"))
			return
		}
	}

	jr, err := h.svc.Update(r.Context(), id, serviceCaller(caller), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, jr, http.StatusOK)
}

type resolveRequest struct {
	Notes *string `json:"notes"`
}

// Accept lets the addressed developer take the offer.
func (h *JobRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.StatusAccepted)
}

// Reject lets the addressed developer decline the offer.
func (h *JobRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.StatusRejected)
}

func (h *JobRequestHandler) resolve(w http.ResponseWriter, r *http.Request, to models.RequestStatus) {
	dev, ok := developerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("developer account required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}

	var req resolveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, errValidation("invalid request"))
			return
		}
	}

	var jr *models.JobRequest
	if to == models.StatusAccepted {
		jr, err = h.svc.Accept(r.Context(), id, dev.ID, req.Notes)
	} else {
		jr, err = h.svc.Reject(r.Context(), id, dev.ID, req.Notes)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, jr, http.StatusOK)
}

func (h *JobRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, "job request deleted", http.StatusOK)
}
