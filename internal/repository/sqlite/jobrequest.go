package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

const jobRequestColumns = `id, employer_id, developer_id, job_title, job_description, salary_offer, salary_type, status, interview_date, interview_location, interview_notes, employer_notes, developer_notes, created, updated`

// CreateJobRequest is an atomic check-and-insert: the INSERT only fires when
// no pending row exists for the pair, and the unique partial index backstops
// the race between two concurrent creates.
func (r *SQLiteRepo) CreateJobRequest(ctx context.Context, jr *models.JobRequest) (int64, error) {
	if jr == nil {
		return 0, fmt.Errorf("job request is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO job_requests (employer_id, developer_id, job_title, job_description, salary_offer, salary_type, status, interview_location, interview_notes, employer_notes, developer_notes, created, updated)
		 SELECT ?, ?, ?, ?, ?, ?, 'pending', '', '', ?, '', ?, ?
		 WHERE NOT EXISTS (
		     SELECT 1 FROM job_requests WHERE employer_id = ? AND developer_id = ? AND status = 'pending'
		 )`,
		jr.EmployerID, jr.DeveloperID, jr.JobTitle, jr.JobDescription, jr.SalaryOffer,
		string(jr.SalaryType), jr.EmployerNotes, ts, ts,
		jr.EmployerID, jr.DeveloperID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicatePending
		}
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, repository.ErrDuplicatePending
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobRequestByID(ctx context.Context, id int64) (*models.JobRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobRequestColumns+` FROM job_requests WHERE id = ?`, id)
	jr, err := scanJobRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return jr, nil
}

// TransitionJobRequest is a single conditional write: the status column only
// changes when the row is still in the expected source state.
func (r *SQLiteRepo) TransitionJobRequest(ctx context.Context, id int64, from, to models.RequestStatus, upd repository.StatusUpdate) error {
	set := []string{"status = ?", "updated = ?"}
	args := []any{string(to), now()}
	set, args = appendUpdateFields(set, args, upd)
	args = append(args, id, string(from))

	res, err := r.conn.Exec(ctx, `UPDATE job_requests SET `+strings.Join(set, ", ")+` WHERE id = ? AND status = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrStaleStatus
	}
	return nil
}

func (r *SQLiteRepo) UpdateJobRequestFields(ctx context.Context, id int64, upd repository.StatusUpdate) error {
	set := []string{"updated = ?"}
	args := []any{now()}
	set, args = appendUpdateFields(set, args, upd)
	if len(set) == 1 {
		// nothing to write
		return nil
	}
	args = append(args, id)

	_, err := r.conn.Exec(ctx, `UPDATE job_requests SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	return err
}

func appendUpdateFields(set []string, args []any, upd repository.StatusUpdate) ([]string, []any) {
	if upd.DeveloperNotes != nil {
		set = append(set, "developer_notes = ?")
		args = append(args, *upd.DeveloperNotes)
	}
	if upd.EmployerNotes != nil {
		set = append(set, "employer_notes = ?")
		args = append(args, *upd.EmployerNotes)
	}
	if upd.InterviewDate != nil {
		set = append(set, "interview_date = ?")
		args = append(args, *upd.InterviewDate)
	}
	if upd.InterviewLocation != nil {
		set = append(set, "interview_location = ?")
		args = append(args, *upd.InterviewLocation)
	}
	if upd.InterviewNotes != nil {
		set = append(set, "interview_notes = ?")
		args = append(args, *upd.InterviewNotes)
	}
	return set, args
}

func (r *SQLiteRepo) ListJobRequests(ctx context.Context, f repository.JobRequestFilter) ([]models.JobRequest, int64, error) {
	cond, args := jobRequestWhere(f)

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM job_requests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := clampPage(f.Page)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobRequestColumns+` FROM job_requests WHERE `+cond+` ORDER BY created DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.JobRequest
	for rows.Next() {
		jr, err := scanJobRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *jr)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) CountJobRequests(ctx context.Context, f repository.JobRequestFilter) (int64, error) {
	cond, args := jobRequestWhere(f)
	var total int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM job_requests WHERE `+cond, args...).Scan(&total)
	return total, err
}

func (r *SQLiteRepo) DeleteJobRequest(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM job_requests WHERE id = ?`, id)
	return err
}

func jobRequestWhere(f repository.JobRequestFilter) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if f.EmployerID != 0 {
		where = append(where, "employer_id = ?")
		args = append(args, f.EmployerID)
	}
	if f.DeveloperID != 0 {
		where = append(where, "developer_id = ?")
		args = append(args, f.DeveloperID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	return strings.Join(where, " AND "), args
}

func scanJobRequest(s scanner) (*models.JobRequest, error) {
	var jr models.JobRequest
	var salaryType, status string
	var interviewDate sql.NullInt64
	if err := s.Scan(&jr.ID, &jr.EmployerID, &jr.DeveloperID, &jr.JobTitle, &jr.JobDescription,
		&jr.SalaryOffer, &salaryType, &status, &interviewDate, &jr.InterviewLocation,
		&jr.InterviewNotes, &jr.EmployerNotes, &jr.DeveloperNotes, &jr.Created, &jr.Updated); err != nil {
		return nil, err
	}
	jr.SalaryType = models.SalaryType(salaryType)
	jr.Status = models.RequestStatus(status)
	if interviewDate.Valid {
		jr.InterviewDate = &interviewDate.Int64
	}
	return &jr, nil
}
