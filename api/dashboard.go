package api

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type DashboardHandler struct {
	reqRepo   repository.JobRequestRepo
	projRepo  repository.ProjectRepo
	dashRepo  repository.DashboardRepo
	searchRepo repository.SearchRepo
}

func NewDashboardHandler(rr repository.JobRequestRepo, pr repository.ProjectRepo, dr repository.DashboardRepo, sr repository.SearchRepo) *DashboardHandler {
	return &DashboardHandler{reqRepo: rr, projRepo: pr, dashRepo: dr, searchRepo: sr}
}

type statusCounts struct {
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Withdrawn int64 `json:"withdrawn"`
	Total     int64 `json:"total"`
}

// countStatuses runs the per-status counts concurrently; the filter selects
// whose requests are counted.
func (h *DashboardHandler) countStatuses(r *http.Request, base repository.JobRequestFilter) (*statusCounts, error) {
	var counts statusCounts
	g, ctx := errgroup.WithContext(r.Context())

	count := func(status models.RequestStatus, dst *int64) func() error {
		return func() error {
			f := base
			f.Status = status
			n, err := h.reqRepo.CountJobRequests(ctx, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	g.Go(count(models.StatusPending, &counts.Pending))
	g.Go(count(models.StatusAccepted, &counts.Accepted))
	g.Go(count(models.StatusRejected, &counts.Rejected))
	g.Go(count(models.StatusWithdrawn, &counts.Withdrawn))
	g.Go(count("", &counts.Total))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &counts, nil
}

type developerDashboard struct {
	Requests          *statusCounts         `json:"requests"`
	TotalProjects     int64                 `json:"total_projects"`
	PublicProjects    int64                 `json:"public_projects"`
	ProfileCompletion int                   `json:"profile_completion"`
	IsAvailable       bool                  `json:"is_available"`
	RecentActivity    []models.ActivityItem `json:"recent_activity"`
}

func (h *DashboardHandler) Developer(w http.ResponseWriter, r *http.Request) {
	dev, ok := developerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("developer account required"))
		return
	}

	counts, err := h.countStatuses(r, repository.JobRequestFilter{DeveloperID: dev.ID})
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, public, err := h.projRepo.CountProjectsByDeveloper(r.Context(), dev.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	activity, err := h.dashRepo.RecentDeveloperActivity(r.Context(), dev.ID, 5)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, developerDashboard{
		Requests:          counts,
		TotalProjects:     total,
		PublicProjects:    public,
		ProfileCompletion: models.ProfileCompletion(dev),
		IsAvailable:       dev.IsAvailable,
		RecentActivity:    activity,
	}, http.StatusOK)
}

type employerDashboard struct {
	Requests       *statusCounts         `json:"requests"`
	RecentActivity []models.ActivityItem `json:"recent_activity"`
}

func (h *DashboardHandler) Employer(w http.ResponseWriter, r *http.Request) {
	emp, ok := employerFrom(r.Context())
	if !ok {
		respondError(w, r, errForbidden("employer account required"))
		return
	}

	counts, err := h.countStatuses(r, repository.JobRequestFilter{EmployerID: emp.ID})
	if err != nil {
		respondError(w, r, err)
		return
	}
	activity, err := h.dashRepo.RecentEmployerActivity(r.Context(), emp.ID, 5)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, employerDashboard{
		Requests:       counts,
		RecentActivity: activity,
	}, http.StatusOK)
}

type adminDashboard struct {
	Totals     *repository.PlatformTotals      `json:"totals"`
	Developers *repository.DeveloperStatistics `json:"developers"`
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	totals, err := h.dashRepo.PlatformTotals(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	stats, err := h.searchRepo.DeveloperStatistics(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, adminDashboard{Totals: totals, Developers: stats}, http.StatusOK)
}

type analyticsResponse struct {
	Months []repository.MonthBucket `json:"months"`
}

// Analytics returns the monthly job-request creation histogram.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24 {
			respondError(w, r, errValidation("months: must be between 1 and 24"))
			return
		}
		months = n
	}
	buckets, err := h.dashRepo.JobRequestHistogram(r.Context(), months)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, analyticsResponse{Months: buckets}, http.StatusOK)
}
