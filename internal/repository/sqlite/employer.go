package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

const employerColumns = `id, company_name, email, password_hash, phone, city, description, website, linkedin, company_logo, industry, company_size, role, created, updated`

func (r *SQLiteRepo) CreateEmployer(ctx context.Context, e *models.Employer) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("employer is nil")
	}

	role := e.Role
	if role == "" {
		role = models.RoleEmployer
	}
	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO employers (company_name, email, password_hash, phone, city, description, website, linkedin, company_logo, industry, company_size, role, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CompanyName, strings.ToLower(e.Email), e.PasswordHash, e.Phone, e.City, e.Description,
		e.Website, e.LinkedIn, e.CompanyLogo, e.Industry, e.CompanySize, string(role), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrEmailTaken
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEmployerByID(ctx context.Context, id int64) (*models.Employer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employerColumns+` FROM employers WHERE id = ?`, id)
	e, err := scanEmployer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepo) GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employerColumns+` FROM employers WHERE LOWER(email) = LOWER(?)`, email)
	e, err := scanEmployer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepo) UpdateEmployer(ctx context.Context, e *models.Employer) error {
	if e == nil {
		return fmt.Errorf("employer is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE employers SET company_name = ?, phone = ?, city = ?, description = ?, website = ?, linkedin = ?, company_logo = ?, industry = ?, company_size = ?, password_hash = ?, updated = ? WHERE id = ?`,
		e.CompanyName, e.Phone, e.City, e.Description, e.Website, e.LinkedIn, e.CompanyLogo,
		e.Industry, e.CompanySize, e.PasswordHash, now(), e.ID)
	return err
}

func (r *SQLiteRepo) ListEmployers(ctx context.Context, f repository.EmployerFilter) ([]models.Employer, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.City != "" {
		where = append(where, "LOWER(city) LIKE LOWER(?)")
		args = append(args, "%"+f.City+"%")
	}
	if f.Industry != "" {
		where = append(where, "LOWER(industry) = LOWER(?)")
		args = append(args, f.Industry)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM employers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := clampPage(f.Page)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+employerColumns+` FROM employers WHERE `+cond+` ORDER BY created DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Employer
	for rows.Next() {
		e, err := scanEmployer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) DeleteEmployer(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM employers WHERE id = ?`, id)
	return err
}

func scanEmployer(s scanner) (*models.Employer, error) {
	var e models.Employer
	var role string
	if err := s.Scan(&e.ID, &e.CompanyName, &e.Email, &e.PasswordHash, &e.Phone, &e.City,
		&e.Description, &e.Website, &e.LinkedIn, &e.CompanyLogo, &e.Industry, &e.CompanySize,
		&role, &e.Created, &e.Updated); err != nil {
		return nil, err
	}
	e.Role = models.Role(role)
	return &e, nil
}
