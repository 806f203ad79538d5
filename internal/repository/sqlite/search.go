package sqlite

import (
	"context"
	"sort"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

// SearchDevelopers applies the conjunctive predicate in SQL, then ranks the
// full match set by descending skill-overlap count before paginating, so the
// requested sort field only ever breaks ties.
func (r *SQLiteRepo) SearchDevelopers(ctx context.Context, c repository.SearchCriteria) ([]models.DeveloperSummary, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if c.City != "" {
		where = append(where, "LOWER(city) LIKE LOWER(?)")
		args = append(args, "%"+c.City+"%")
	}
	if c.MinExperience != nil {
		where = append(where, "experience_years >= ?")
		args = append(args, *c.MinExperience)
	}
	if c.MaxExperience != nil {
		where = append(where, "experience_years <= ?")
		args = append(args, *c.MaxExperience)
	}
	if c.MinSalary != nil {
		where = append(where, "salary_expectation >= ?")
		args = append(args, *c.MinSalary)
	}
	if c.MaxSalary != nil {
		where = append(where, "salary_expectation <= ?")
		args = append(args, *c.MaxSalary)
	}
	if c.IsAvailable != nil {
		where = append(where, "is_available = ?")
		args = append(args, boolToInt(*c.IsAvailable))
	}
	if len(c.Skills) > 0 {
		likes := make([]string, 0, len(c.Skills))
		for _, skill := range c.Skills {
			likes = append(likes, "skills LIKE ?")
			args = append(args, `%"`+skill+`"%`)
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+developerColumns+` FROM developers WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var matches []models.DeveloperSummary
	for rows.Next() {
		d, err := scanDeveloperRow(rows)
		if err != nil {
			return nil, 0, err
		}
		matches = append(matches, summarize(d, c.Skills))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sortSummaries(matches, c.SortBy, c.SortDesc)

	total := int64(len(matches))
	limit, offset := clampPage(c.Page)
	if offset >= len(matches) {
		matches = nil
	} else {
		end := offset + limit
		if end > len(matches) {
			end = len(matches)
		}
		matches = matches[offset:end]
	}

	for i := range matches {
		totalP, publicP, err := r.CountProjectsByDeveloper(ctx, matches[i].ID)
		if err != nil {
			return nil, 0, err
		}
		matches[i].TotalProjects = totalP
		matches[i].PublicProjects = publicP
	}

	return matches, total, nil
}

// QuickSearchDevelopers matches one free-text token against name, skills or
// city; only available developers are returned.
func (r *SQLiteRepo) QuickSearchDevelopers(ctx context.Context, q string, limit int) ([]models.DeveloperSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	pat := "%" + q + "%"
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+developerColumns+` FROM developers
		 WHERE is_available = 1
		   AND (LOWER(first_name || ' ' || last_name) LIKE LOWER(?)
		        OR LOWER(skills) LIKE LOWER(?)
		        OR LOWER(city) LIKE LOWER(?))
		 ORDER BY created DESC LIMIT ?`, pat, pat, pat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeveloperSummary
	for rows.Next() {
		d, err := scanDeveloperRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(d, nil))
	}
	return out, rows.Err()
}

// DistinctSkills unions the skill sets of all developers, sorted
// alphabetically. Not scoped to availability.
func (r *SQLiteRepo) DistinctSkills(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT skills FROM developers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, s := range decodeStrings(raw) {
			if s != "" {
				seen[s] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (r *SQLiteRepo) DistinctCities(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT DISTINCT city FROM developers WHERE city <> '' ORDER BY city`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeveloperStatistics(ctx context.Context) (*repository.DeveloperStatistics, error) {
	var s repository.DeveloperStatistics
	row := r.conn.QueryRow(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(is_available), 0),
		        COALESCE(AVG(experience_years), 0),
		        COALESCE(MIN(experience_years), 0),
		        COALESCE(MAX(experience_years), 0)
		 FROM developers`)
	if err := row.Scan(&s.Total, &s.Available, &s.AvgExperience, &s.MinExperience, &s.MaxExperience); err != nil {
		return nil, err
	}
	return &s, nil
}

func summarize(d *models.Developer, querySkills []string) models.DeveloperSummary {
	return models.DeveloperSummary{
		Developer:         *d,
		FullName:          models.FullName(d),
		ProfileCompletion: models.ProfileCompletion(d),
		SkillMatches:      skillOverlap(d.Skills, querySkills),
	}
}

// skillOverlap counts how many query skills the developer has
// (case-insensitive).
func skillOverlap(have, want []string) int {
	if len(want) == 0 {
		return 0
	}
	set := make(map[string]bool, len(have))
	for _, s := range have {
		set[strings.ToLower(s)] = true
	}
	n := 0
	for _, s := range want {
		if set[strings.ToLower(s)] {
			n++
		}
	}
	return n
}

// sortSummaries orders by skill overlap first; the requested field only
// decides between equal overlap counts.
func sortSummaries(rows []models.DeveloperSummary, sortBy string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SkillMatches != rows[j].SkillMatches {
			return rows[i].SkillMatches > rows[j].SkillMatches
		}
		less := tieLess(&rows[i], &rows[j], sortBy)
		if desc {
			return tieLess(&rows[j], &rows[i], sortBy)
		}
		return less
	})
}

func tieLess(a, b *models.DeveloperSummary, sortBy string) bool {
	switch sortBy {
	case "experience_years":
		return a.ExperienceYears < b.ExperienceYears
	case "salary_expectation":
		return a.SalaryExpectation < b.SalaryExpectation
	case "name":
		return a.FullName < b.FullName
	default:
		// newest first by default
		return a.Created > b.Created
	}
}
