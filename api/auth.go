package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/devmatch/internal/auth"
	"github.com/garnizeh/devmatch/internal/schemas"
	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

const tokenCookie = "token"

type AuthHandler struct {
	devRepo    repository.DeveloperRepo
	empRepo    repository.EmployerRepo
	tokens     *auth.Tokens
	validator  *schemas.Validator
	bcryptCost int
	cookieTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(dr repository.DeveloperRepo, er repository.EmployerRepo, tokens *auth.Tokens, v *schemas.Validator, bcryptCost int, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{devRepo: dr, empRepo: er, tokens: tokens, validator: v, bcryptCost: bcryptCost, cookieTTL: cookieTTL}
}

type developerSignupRequest struct {
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	Phone             string   `json:"phone"`
	City              string   `json:"city"`
	Skills            []string `json:"skills"`
	ExperienceYears   int      `json:"experience_years"`
	GithubURL         string   `json:"github_url"`
	PortfolioURL      string   `json:"portfolio_url"`
	SalaryExpectation int64    `json:"salary_expectation"`
}

type employerSignupRequest struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Description string `json:"description"`
	Website     string `json:"website"`
	LinkedIn    string `json:"linkedin"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (h *AuthHandler) DeveloperSignup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	ctx := r.Context()
	if err := h.validator.Validate(ctx, "developer_signup", body); err != nil {
		respondError(w, r, err)
		return
	}
	var req developerSignupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondError(w, r, err)
		return
	}

	dev := &models.Developer{
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:      hash,
		Phone:             req.Phone,
		City:              req.City,
		Skills:            req.Skills,
		ExperienceYears:   req.ExperienceYears,
		GithubURL:         req.GithubURL,
		PortfolioURL:      req.PortfolioURL,
		SalaryExpectation: req.SalaryExpectation,
		IsAvailable:       true,
		Role:              models.RoleDeveloper,
	}

	id, err := h.devRepo.CreateDeveloper(ctx, dev)
	if err != nil {
		respondError(w, r, err)
		return
	}
	dev.ID = id

	h.issue(w, r, id, dev.Role, models.KindDeveloper, dev, http.StatusCreated)
}

func (h *AuthHandler) EmployerSignup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	ctx := r.Context()
	if err := h.validator.Validate(ctx, "employer_signup", body); err != nil {
		respondError(w, r, err)
		return
	}
	var req employerSignupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondError(w, r, err)
		return
	}

	emp := &models.Employer{
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        req.Phone,
		City:         req.City,
		Description:  req.Description,
		Website:      req.Website,
		LinkedIn:     req.LinkedIn,
		Industry:     req.Industry,
		CompanySize:  req.CompanySize,
		Role:         models.RoleEmployer,
	}

	id, err := h.empRepo.CreateEmployer(ctx, emp)
	if err != nil {
		respondError(w, r, err)
		return
	}
	emp.ID = id

	h.issue(w, r, id, emp.Role, models.KindEmployer, emp, http.StatusCreated)
}

// Login authenticates either account kind. Unknown email and wrong password
// produce the identical error so accounts cannot be enumerated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	ctx := r.Context()
	if err := h.validator.Validate(ctx, "login", body); err != nil {
		respondError(w, r, err)
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}

	invalid := errUnauthorized("invalid credentials")

	switch models.Kind(req.UserType) {
	case models.KindDeveloper:
		dev, err := h.devRepo.GetDeveloperByEmail(ctx, req.Email)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if dev == nil || !auth.CheckPassword(dev.PasswordHash, req.Password) {
			respondError(w, r, invalid)
			return
		}
		h.issue(w, r, dev.ID, dev.Role, models.KindDeveloper, dev, http.StatusOK)
	case models.KindEmployer:
		emp, err := h.empRepo.GetEmployerByEmail(ctx, req.Email)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if emp == nil || !auth.CheckPassword(emp.PasswordHash, req.Password) {
			respondError(w, r, invalid)
			return
		}
		h.issue(w, r, emp.ID, emp.Role, models.KindEmployer, emp, http.StatusOK)
	default:
		respondError(w, r, errValidation("unknown user type"))
	}
}

// Me returns the caller's own record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if dev, ok := developerFrom(ctx); ok {
		respondData(w, profileView(dev), http.StatusOK)
		return
	}
	if emp, ok := employerFrom(ctx); ok {
		respondData(w, emp, http.StatusOK)
		return
	}
	respondError(w, r, errUnauthorized("missing credentials"))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errValidation("invalid request"))
		return
	}
	if len(req.NewPassword) < 6 {
		respondError(w, r, errValidation("new_password: must be at least 6 characters"))
		return
	}

	ctx := r.Context()
	hash, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if dev, ok := developerFrom(ctx); ok {
		if !auth.CheckPassword(dev.PasswordHash, req.CurrentPassword) {
			respondError(w, r, errUnauthorized("invalid credentials"))
			return
		}
		dev.PasswordHash = hash
		if err := h.devRepo.UpdateDeveloper(ctx, dev); err != nil {
			respondError(w, r, err)
			return
		}
		respondMessage(w, "password changed", http.StatusOK)
		return
	}
	if emp, ok := employerFrom(ctx); ok {
		if !auth.CheckPassword(emp.PasswordHash, req.CurrentPassword) {
			respondError(w, r, errUnauthorized("invalid credentials"))
			return
		}
		emp.PasswordHash = hash
		if err := h.empRepo.UpdateEmployer(ctx, emp); err != nil {
			respondError(w, r, err)
			return
		}
		respondMessage(w, "password changed", http.StatusOK)
		return
	}
	respondError(w, r, errUnauthorized("missing credentials"))
}

// Logout clears the token cookie; the bearer token itself stays valid until
// expiry (stateless JWT).
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respondMessage(w, "signed out", http.StatusOK)
}

// issue signs a token and returns it both in the body and as an httpOnly
// cookie; callers may use either transport.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, id int64, role models.Role, kind models.Kind, user any, status int) {
	tokenStr, err := h.tokens.Issue(id, role, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	if dev, ok := user.(*models.Developer); ok {
		user = profileView(dev)
	}
	respondData(w, authResponse{Token: tokenStr, User: user}, status)
}
