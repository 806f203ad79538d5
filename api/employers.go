package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type EmployerHandler struct {
	empRepo repository.EmployerRepo
}

func NewEmployerHandler(er repository.EmployerRepo) *EmployerHandler {
	return &EmployerHandler{empRepo: er}
}

func (h *EmployerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	filter := repository.EmployerFilter{
		City:     r.URL.Query().Get("city"),
		Industry: r.URL.Query().Get("industry"),
		Page:     repository.Page{Limit: limit, Offset: (page - 1) * limit},
	}

	emps, total, err := h.empRepo.ListEmployers(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, emps, newPagination(page, limit, total))
}

func (h *EmployerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	emp, err := h.empRepo.GetEmployerByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if emp == nil {
		respondError(w, r, errNotFound("employer not found"))
		return
	}
	respondData(w, emp, http.StatusOK)
}

type employerUpdateRequest struct {
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
	City        *string `json:"city"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	LinkedIn    *string `json:"linkedin"`
	Industry    *string `json:"industry"`
	CompanySize *string `json:"company_size"`
	CompanyLogo *string `json:"company_logo"`
}

func (h *EmployerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	caller, ok := CallerFrom(r.Context())
	if !ok || !canActFor(caller, models.KindEmployer, id) {
		respondError(w, r, errForbidden("not allowed"))
		return
	}

	var req employerUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if req.CompanySize != nil && !validCompanySize(*req.CompanySize) {
		respondError(w, r, errValidation("company_size: unknown value"))
		return
	}

	emp, err := h.empRepo.GetEmployerByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if emp == nil {
		respondError(w, r, errNotFound("employer not found"))
		return
	}

	applyEmployerUpdate(emp, &req)
	if err := h.empRepo.UpdateEmployer(r.Context(), emp); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, emp, http.StatusOK)
}

func applyEmployerUpdate(emp *models.Employer, req *employerUpdateRequest) {
	if req.CompanyName != nil {
		emp.CompanyName = *req.CompanyName
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.City != nil {
		emp.City = *req.City
	}
	if req.Description != nil {
		emp.Description = *req.Description
	}
	if req.Website != nil {
		emp.Website = *req.Website
	}
	if req.LinkedIn != nil {
		emp.LinkedIn = *req.LinkedIn
	}
	if req.Industry != nil {
		emp.Industry = *req.Industry
	}
	if req.CompanySize != nil {
		emp.CompanySize = *req.CompanySize
	}
	if req.CompanyLogo != nil {
		emp.CompanyLogo = *req.CompanyLogo
	}
}

func validCompanySize(size string) bool {
	for _, s := range models.CompanySizes {
		if s == size {
			return true
		}
	}
	return false
}

func (h *EmployerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	if err := h.empRepo.DeleteEmployer(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, "employer deleted", http.StatusOK)
}
