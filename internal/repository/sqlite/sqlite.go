package sqlite

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/garnizeh/devmatch/internal/db"
	"github.com/garnizeh/devmatch/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.DeveloperRepo = (*SQLiteRepo)(nil)
var _ repository.EmployerRepo = (*SQLiteRepo)(nil)
var _ repository.ProjectRepo = (*SQLiteRepo)(nil)
var _ repository.JobRequestRepo = (*SQLiteRepo)(nil)
var _ repository.SearchRepo = (*SQLiteRepo)(nil)
var _ repository.DashboardRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// String sets (skills, tech stacks) and id lists are stored as JSON text
// columns; these helpers keep the encoding in one place.

func encodeStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func encodeIDs(v []int64) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var out []int64
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// isUniqueViolation detects constraint errors from the sqlite driver, which
// surfaces them as plain text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func clampPage(p repository.Page) (limit, offset int) {
	limit = p.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
