package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

const developerColumns = `id, first_name, last_name, email, password_hash, phone, city, skills, experience_years, github_url, portfolio_url, resume_url, profile_picture, salary_expectation, is_available, role, project_ids, created, updated`

func (r *SQLiteRepo) CreateDeveloper(ctx context.Context, d *models.Developer) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("developer is nil")
	}

	role := d.Role
	if role == "" {
		role = models.RoleDeveloper
	}
	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO developers (first_name, last_name, email, password_hash, phone, city, skills, experience_years, github_url, portfolio_url, resume_url, profile_picture, salary_expectation, is_available, role, project_ids, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FirstName, d.LastName, strings.ToLower(d.Email), d.PasswordHash, d.Phone, d.City,
		encodeStrings(d.Skills), d.ExperienceYears, d.GithubURL, d.PortfolioURL, d.ResumeURL,
		d.ProfilePicture, d.SalaryExpectation, boolToInt(d.IsAvailable), string(role),
		encodeIDs(d.ProjectIDs), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrEmailTaken
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetDeveloperByID(ctx context.Context, id int64) (*models.Developer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+developerColumns+` FROM developers WHERE id = ?`, id)
	return scanDeveloper(row)
}

func (r *SQLiteRepo) GetDeveloperByEmail(ctx context.Context, email string) (*models.Developer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+developerColumns+` FROM developers WHERE LOWER(email) = LOWER(?)`, email)
	return scanDeveloper(row)
}

func (r *SQLiteRepo) UpdateDeveloper(ctx context.Context, d *models.Developer) error {
	if d == nil {
		return fmt.Errorf("developer is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE developers SET first_name = ?, last_name = ?, phone = ?, city = ?, skills = ?, experience_years = ?, github_url = ?, portfolio_url = ?, resume_url = ?, profile_picture = ?, salary_expectation = ?, is_available = ?, password_hash = ?, updated = ? WHERE id = ?`,
		d.FirstName, d.LastName, d.Phone, d.City, encodeStrings(d.Skills), d.ExperienceYears,
		d.GithubURL, d.PortfolioURL, d.ResumeURL, d.ProfilePicture, d.SalaryExpectation,
		boolToInt(d.IsAvailable), d.PasswordHash, now(), d.ID)
	return err
}

func (r *SQLiteRepo) SetDeveloperAvailability(ctx context.Context, id int64, available bool) error {
	_, err := r.conn.Exec(ctx, `UPDATE developers SET is_available = ?, updated = ? WHERE id = ?`, boolToInt(available), now(), id)
	return err
}

func (r *SQLiteRepo) ListDevelopers(ctx context.Context, f repository.DeveloperFilter) ([]models.Developer, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.City != "" {
		where = append(where, "LOWER(city) LIKE LOWER(?)")
		args = append(args, "%"+f.City+"%")
	}
	if f.IsAvailable != nil {
		where = append(where, "is_available = ?")
		args = append(args, boolToInt(*f.IsAvailable))
	}
	if f.MinExperience != nil {
		where = append(where, "experience_years >= ?")
		args = append(args, *f.MinExperience)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM developers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := clampPage(f.Page)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+developerColumns+` FROM developers WHERE `+cond+` ORDER BY created DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Developer
	for rows.Next() {
		d, err := scanDeveloperRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) DeleteDeveloper(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM developers WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeveloper(row *sql.Row) (*models.Developer, error) {
	d, err := scanDeveloperFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanDeveloperRow(s scanner) (*models.Developer, error) {
	return scanDeveloperFrom(s)
}

func scanDeveloperFrom(s scanner) (*models.Developer, error) {
	var d models.Developer
	var skills, projectIDs, role string
	var available int
	if err := s.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.PasswordHash, &d.Phone,
		&d.City, &skills, &d.ExperienceYears, &d.GithubURL, &d.PortfolioURL, &d.ResumeURL,
		&d.ProfilePicture, &d.SalaryExpectation, &available, &role, &projectIDs,
		&d.Created, &d.Updated); err != nil {
		return nil, err
	}
	d.Skills = decodeStrings(skills)
	d.ProjectIDs = decodeIDs(projectIDs)
	d.IsAvailable = available != 0
	d.Role = models.Role(role)
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
