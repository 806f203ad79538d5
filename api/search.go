package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/garnizeh/devmatch/internal/schemas"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type SearchHandler struct {
	searchRepo repository.SearchRepo
	validator  *schemas.Validator
}

func NewSearchHandler(sr repository.SearchRepo, v *schemas.Validator) *SearchHandler {
	return &SearchHandler{searchRepo: sr, validator: v}
}

type searchRequest struct {
	Skills        []string `json:"skills"`
	City          string   `json:"city"`
	MinExperience *int     `json:"min_experience"`
	MaxExperience *int     `json:"max_experience"`
	MinSalary     *int64   `json:"min_salary"`
	MaxSalary     *int64   `json:"max_salary"`
	IsAvailable   *bool    `json:"is_available"`
	SortBy        string   `json:"sort_by"`
	SortDesc      bool     `json:"sort_desc"`
	Page          int      `json:"page"`
	Limit         int      `json:"limit"`
}

// Search runs the criteria-based developer search. Results are ranked by
// skill overlap with the requested skills before pagination.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if err := h.validator.Validate(r.Context(), "developer_search", body); err != nil {
		respondError(w, r, err)
		return
	}
	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	criteria := repository.SearchCriteria{
		Skills:        req.Skills,
		City:          req.City,
		MinExperience: req.MinExperience,
		MaxExperience: req.MaxExperience,
		MinSalary:     req.MinSalary,
		MaxSalary:     req.MaxSalary,
		IsAvailable:   req.IsAvailable,
		SortBy:        req.SortBy,
		SortDesc:      req.SortDesc,
		Page:          repository.Page{Limit: limit, Offset: (page - 1) * limit},
	}
	// Employers search for hires, so unfiltered searches default to
	// available developers only.
	if criteria.IsAvailable == nil {
		avail := true
		criteria.IsAvailable = &avail
	}

	results, total, err := h.searchRepo.SearchDevelopers(r.Context(), criteria)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, results, newPagination(page, limit, total))
}

// Quick serves the typeahead box: one term matched against name, skills
// and city of available developers.
func (h *SearchHandler) Quick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, r, errValidation("q: is required"))
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := h.searchRepo.QuickSearchDevelopers(r.Context(), q, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, results, http.StatusOK)
}

func (h *SearchHandler) Skills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.searchRepo.DistinctSkills(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, skills, http.StatusOK)
}

func (h *SearchHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.searchRepo.DistinctCities(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, cities, http.StatusOK)
}

func (h *SearchHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.searchRepo.DeveloperStatistics(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, stats, http.StatusOK)
}
