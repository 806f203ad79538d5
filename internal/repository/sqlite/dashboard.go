package sqlite

import (
	"context"
	"sort"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

// RecentDeveloperActivity merges the developer's latest job requests and
// projects into one feed, newest first.
func (r *SQLiteRepo) RecentDeveloperActivity(ctx context.Context, developerID int64, limit int) ([]models.ActivityItem, error) {
	if limit <= 0 {
		limit = 5
	}

	var items []models.ActivityItem

	rows, err := r.conn.QueryRows(ctx,
		`SELECT job_title, status, created FROM job_requests WHERE developer_id = ? ORDER BY created DESC LIMIT ?`,
		developerID, limit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it models.ActivityItem
		if err := rows.Scan(&it.Title, &it.Status, &it.Created); err != nil {
			rows.Close()
			return nil, err
		}
		it.Type = "job_request"
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn.QueryRows(ctx,
		`SELECT title, created FROM projects WHERE developer_id = ? ORDER BY created DESC LIMIT ?`,
		developerID, limit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it models.ActivityItem
		if err := rows.Scan(&it.Title, &it.Created); err != nil {
			rows.Close()
			return nil, err
		}
		it.Type = "project"
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trimActivity(items, limit), nil
}

func (r *SQLiteRepo) RecentEmployerActivity(ctx context.Context, employerID int64, limit int) ([]models.ActivityItem, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.conn.QueryRows(ctx,
		`SELECT job_title, status, created FROM job_requests WHERE employer_id = ? ORDER BY created DESC LIMIT ?`,
		employerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ActivityItem
	for rows.Next() {
		var it models.ActivityItem
		if err := rows.Scan(&it.Title, &it.Status, &it.Created); err != nil {
			return nil, err
		}
		it.Type = "job_request"
		items = append(items, it)
	}
	return trimActivity(items, limit), rows.Err()
}

func (r *SQLiteRepo) PlatformTotals(ctx context.Context) (*repository.PlatformTotals, error) {
	var t repository.PlatformTotals
	row := r.conn.QueryRow(ctx,
		`SELECT (SELECT COUNT(1) FROM developers),
		        (SELECT COUNT(1) FROM employers),
		        (SELECT COUNT(1) FROM projects),
		        (SELECT COUNT(1) FROM job_requests)`)
	if err := row.Scan(&t.Developers, &t.Employers, &t.Projects, &t.JobRequests); err != nil {
		return nil, err
	}
	return &t, nil
}

// JobRequestHistogram groups request creation by year+month for the trailing
// window. Timestamps are stored as unix millis.
func (r *SQLiteRepo) JobRequestHistogram(ctx context.Context, months int) ([]repository.MonthBucket, error) {
	if months <= 0 {
		months = 6
	}
	cutoff := now() - int64(months)*31*24*60*60*1000

	rows, err := r.conn.QueryRows(ctx,
		`SELECT CAST(strftime('%Y', created / 1000, 'unixepoch') AS INTEGER) AS y,
		        CAST(strftime('%m', created / 1000, 'unixepoch') AS INTEGER) AS m,
		        COUNT(1)
		 FROM job_requests WHERE created >= ?
		 GROUP BY y, m ORDER BY y, m`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.MonthBucket
	for rows.Next() {
		var b repository.MonthBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func trimActivity(items []models.ActivityItem, limit int) []models.ActivityItem {
	sort.Slice(items, func(i, j int) bool { return items[i].Created > items[j].Created })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
