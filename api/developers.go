package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type DeveloperHandler struct {
	devRepo repository.DeveloperRepo
}

func NewDeveloperHandler(dr repository.DeveloperRepo) *DeveloperHandler {
	return &DeveloperHandler{devRepo: dr}
}

// developerProfile is the outward shape of a developer record with the
// derived fields the clients render.
type developerProfile struct {
	*models.Developer
	FullName          string `json:"full_name"`
	ProfileCompletion int    `json:"profile_completion"`
	ProfileComplete   bool   `json:"profile_complete"`
}

func profileView(dev *models.Developer) developerProfile {
	return developerProfile{
		Developer:         dev,
		FullName:          models.FullName(dev),
		ProfileCompletion: models.ProfileCompletion(dev),
		ProfileComplete:   models.IsProfileComplete(dev),
	}
}

func (h *DeveloperHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	filter := repository.DeveloperFilter{
		City: r.URL.Query().Get("city"),
		Page: repository.Page{Limit: limit, Offset: (page - 1) * limit},
	}
	if v := r.URL.Query().Get("available"); v != "" {
		avail := v == "true" || v == "1"
		filter.IsAvailable = &avail
	}
	if v := r.URL.Query().Get("min_experience"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.MinExperience = &n
		}
	}

	devs, total, err := h.devRepo.ListDevelopers(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]developerProfile, 0, len(devs))
	for i := range devs {
		out = append(out, profileView(&devs[i]))
	}
	respondPage(w, out, newPagination(page, limit, total))
}

func (h *DeveloperHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	dev, err := h.devRepo.GetDeveloperByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if dev == nil {
		respondError(w, r, errNotFound("developer not found"))
		return
	}
	respondData(w, profileView(dev), http.StatusOK)
}

type developerUpdateRequest struct {
	FirstName         *string   `json:"first_name"`
	LastName          *string   `json:"last_name"`
	Phone             *string   `json:"phone"`
	City              *string   `json:"city"`
	Skills            *[]string `json:"skills"`
	ExperienceYears   *int      `json:"experience_years"`
	GithubURL         *string   `json:"github_url"`
	PortfolioURL      *string   `json:"portfolio_url"`
	ResumeURL         *string   `json:"resume_url"`
	ProfilePicture    *string   `json:"profile_picture"`
	SalaryExpectation *int64    `json:"salary_expectation"`
	IsAvailable       *bool     `json:"is_available"`
}

// Update modifies a developer profile. Owners and admins only; email, role
// and password never change through this path.
func (h *DeveloperHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	caller, ok := CallerFrom(r.Context())
	if !ok || !canActFor(caller, models.KindDeveloper, id) {
		respondError(w, r, errForbidden("not allowed"))
		return
	}

	var req developerUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		respondError(w, r, errValidation("experience_years: must not be negative"))
		return
	}

	dev, err := h.devRepo.GetDeveloperByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if dev == nil {
		respondError(w, r, errNotFound("developer not found"))
		return
	}

	applyDeveloperUpdate(dev, &req)
	if err := h.devRepo.UpdateDeveloper(r.Context(), dev); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, profileView(dev), http.StatusOK)
}

func applyDeveloperUpdate(dev *models.Developer, req *developerUpdateRequest) {
	if req.FirstName != nil {
		dev.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		dev.LastName = *req.LastName
	}
	if req.Phone != nil {
		dev.Phone = *req.Phone
	}
	if req.City != nil {
		dev.City = *req.City
	}
	if req.Skills != nil {
		dev.Skills = *req.Skills
	}
	if req.ExperienceYears != nil {
		dev.ExperienceYears = *req.ExperienceYears
	}
	if req.GithubURL != nil {
		dev.GithubURL = *req.GithubURL
	}
	if req.PortfolioURL != nil {
		dev.PortfolioURL = *req.PortfolioURL
	}
	if req.ResumeURL != nil {
		dev.ResumeURL = *req.ResumeURL
	}
	if req.ProfilePicture != nil {
		dev.ProfilePicture = *req.ProfilePicture
	}
	if req.SalaryExpectation != nil {
		dev.SalaryExpectation = *req.SalaryExpectation
	}
	if req.IsAvailable != nil {
		dev.IsAvailable = *req.IsAvailable
	}
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// SetAvailability flips the caller's own availability flag.
func (h *DeveloperHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	dev, ok := developerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("developer account required"))
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if err := h.devRepo.SetDeveloperAvailability(r.Context(), dev.ID, req.IsAvailable); err != nil {
		respondError(w, r, err)
		return
	}
	dev.IsAvailable = req.IsAvailable
	respondData(w, profileView(dev), http.StatusOK)
}

func (h *DeveloperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	if err := h.devRepo.DeleteDeveloper(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, "developer deleted", http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
