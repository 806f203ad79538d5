package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

const projectColumns = `id, title, description, tech_stack, demo_url, github_url, image_url, developer_id, is_public, created, updated`

// CreateProject inserts the project and appends its id to the owner's
// project_ids list inside one transaction so the forward list and the
// back-reference cannot diverge.
func (r *SQLiteRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return 0, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO projects (title, description, tech_stack, demo_url, github_url, image_url, developer_id, is_public, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, encodeStrings(p.TechStack), p.DemoURL, p.GithubURL, p.ImageURL,
		p.DeveloperID, boolToInt(p.IsPublic), ts, ts)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	var listJSON string
	if err := tx.QueryRowContext(ctx, `SELECT project_ids FROM developers WHERE id = ?`, p.DeveloperID).Scan(&listJSON); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("load owner project list: %w", err)
	}
	ids := append(decodeIDs(listJSON), id)
	if _, err := tx.ExecContext(ctx, `UPDATE developers SET project_ids = ?, updated = ? WHERE id = ?`, encodeIDs(ids), ts, p.DeveloperID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("update owner project list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepo) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE projects SET title = ?, description = ?, tech_stack = ?, demo_url = ?, github_url = ?, image_url = ?, is_public = ?, updated = ? WHERE id = ?`,
		p.Title, p.Description, encodeStrings(p.TechStack), p.DemoURL, p.GithubURL, p.ImageURL,
		boolToInt(p.IsPublic), now(), p.ID)
	return err
}

// DeleteProject removes the row and pulls the id out of the owner's list in
// one transaction.
func (r *SQLiteRepo) DeleteProject(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}

	var developerID int64
	if err := tx.QueryRowContext(ctx, `SELECT developer_id FROM projects WHERE id = ?`, id).Scan(&developerID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	var listJSON string
	if err := tx.QueryRowContext(ctx, `SELECT project_ids FROM developers WHERE id = ?`, developerID).Scan(&listJSON); err != nil && err != sql.ErrNoRows {
		_ = tx.Rollback()
		return fmt.Errorf("load owner project list: %w", err)
	}
	if listJSON != "" {
		kept := make([]int64, 0)
		for _, pid := range decodeIDs(listJSON) {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE developers SET project_ids = ?, updated = ? WHERE id = ?`, encodeIDs(kept), now(), developerID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("update owner project list: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepo) ListProjects(ctx context.Context, f repository.ProjectFilter) ([]models.Project, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.PublicOnly {
		where = append(where, "is_public = 1")
	}
	if f.DeveloperID != 0 {
		where = append(where, "developer_id = ?")
		args = append(args, f.DeveloperID)
	}
	if len(f.TechStack) > 0 {
		// any-of match against the JSON text column
		likes := make([]string, 0, len(f.TechStack))
		for _, tech := range f.TechStack {
			likes = append(likes, "tech_stack LIKE ?")
			args = append(args, `%"`+tech+`"%`)
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM projects WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := projectOrderBy(f.SortBy, f.SortDesc)
	limit, offset := clampPage(f.Page)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+cond+` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) CountProjectsByDeveloper(ctx context.Context, developerID int64) (int64, int64, error) {
	var total, public int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1), COALESCE(SUM(is_public), 0) FROM projects WHERE developer_id = ?`, developerID)
	if err := row.Scan(&total, &public); err != nil {
		return 0, 0, err
	}
	return total, public, nil
}

// projectOrderBy whitelists sortable columns; anything else falls back to
// newest first.
func projectOrderBy(sortBy string, desc bool) string {
	col := "created"
	switch sortBy {
	case "title":
		col = "title"
	case "updated":
		col = "updated"
	case "created", "":
	default:
	}
	if desc || sortBy == "" {
		return col + " DESC"
	}
	return col + " ASC"
}

func scanProject(s scanner) (*models.Project, error) {
	var p models.Project
	var tech string
	var public int
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &tech, &p.DemoURL, &p.GithubURL,
		&p.ImageURL, &p.DeveloperID, &public, &p.Created, &p.Updated); err != nil {
		return nil, err
	}
	p.TechStack = decodeStrings(tech)
	p.IsPublic = public != 0
	return &p, nil
}
