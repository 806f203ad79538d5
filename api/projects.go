package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type ProjectHandler struct {
	projRepo repository.ProjectRepo
}

func NewProjectHandler(pr repository.ProjectRepo) *ProjectHandler {
	return &ProjectHandler{projRepo: pr}
}

// List serves public projects to everyone. Authenticated developers asking
// for their own projects (or admins asking for anyone's) also get the
// private rows.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	q := r.URL.Query()

	filter := repository.ProjectFilter{
		PublicOnly: true,
		SortBy:     q.Get("sort_by"),
		SortDesc:   q.Get("order") != "asc",
		Page:       repository.Page{Limit: limit, Offset: (page - 1) * limit},
	}
	if v := q.Get("tech_stack"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.TechStack = append(filter.TechStack, t)
			}
		}
	}
	if v := q.Get("developer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, r, errValidation("invalid developer_id"))
			return
		}
		filter.DeveloperID = id
	}

	if caller, ok := CallerFrom(r.Context()); ok && filter.DeveloperID != 0 &&
		canActFor(caller, models.KindDeveloper, filter.DeveloperID) {
		filter.PublicOnly = false
	}

	projects, total, err := h.projRepo.ListProjects(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, projects, newPagination(page, limit, total))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	p, err := h.projRepo.GetProjectByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		respondError(w, r, errNotFound("project not found"))
		return
	}
	if !p.IsPublic {
		caller, ok := CallerFrom(r.Context())
		if !ok || !canActFor(caller, models.KindDeveloper, p.DeveloperID) {
			respondError(w, r, errForbidden("project is private"))
			return
		}
	}
	respondData(w, p, http.StatusOK)
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	DemoURL     string   `json:"demo_url"`
	GithubURL   string   `json:"github_url"`
	ImageURL    string   `json:"image_url"`
	IsPublic    *bool    `json:"is_public"`
}

const minProjectDescription = 10

func (req *projectRequest) validate() string {
	var problems []string
	if strings.TrimSpace(req.Title) == "" {
		problems = append(problems, "title: is required")
	}
	if len(strings.TrimSpace(req.Description)) < minProjectDescription {
		problems = append(problems, "description: must be at least 10 characters")
	}
	if len(req.TechStack) == 0 {
		problems = append(problems, "tech_stack: at least one entry is required")
	}
	return strings.Join(problems, "; ")
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	dev, ok := developerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("developer account required"))
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, r, errValidation(msg))
		return
	}

	p := &models.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TechStack:   req.TechStack,
		DemoURL:     req.DemoURL,
		GithubURL:   req.GithubURL,
		ImageURL:    req.ImageURL,
		DeveloperID: dev.ID,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}

	id, err := h.projRepo.CreateProject(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	p.ID = id
	respondData(w, p, http.StatusCreated)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	p, err := h.projRepo.GetProjectByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		respondError(w, r, errNotFound("project not found"))
		return
	}
	caller, ok := CallerFrom(r.Context())
	if !ok || !canActFor(caller, models.KindDeveloper, p.DeveloperID) {
		respondError(w, r, errForbidden("not your project"))
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if req.Title != "" {
		p.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.TechStack != nil {
		p.TechStack = req.TechStack
	}
	if req.DemoURL != "" {
		p.DemoURL = req.DemoURL
	}
	if req.GithubURL != "" {
		p.GithubURL = req.GithubURL
	}
	if req.ImageURL != "" {
		p.ImageURL = req.ImageURL
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}

	if err := h.projRepo.UpdateProject(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, p, http.StatusOK)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, errValidation("invalid id"))
		return
	}
	p, err := h.projRepo.GetProjectByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		respondError(w, r, errNotFound("project not found"))
		return
	}
	caller, ok := CallerFrom(r.Context())
	if !ok || !canActFor(caller, models.KindDeveloper, p.DeveloperID) {
		respondError(w, r, errForbidden("not your project"))
		return
	}
	if err := h.projRepo.DeleteProject(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, "project deleted", http.StatusOK)
}
