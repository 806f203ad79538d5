package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPages int64
	}{
		{"empty", 1, 20, 0, 0},
		{"exact fit", 1, 20, 40, 2},
		{"partial last page", 1, 20, 41, 3},
		{"single row", 3, 10, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPagination(tt.page, tt.limit, tt.total)
			if p.Pages != tt.wantPages {
				t.Fatalf("pages = %d, want %d", p.Pages, tt.wantPages)
			}
			if p.Page != tt.page || p.Limit != tt.limit || p.Total != tt.total {
				t.Fatalf("pagination = %+v", p)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/api/developers", 1, 20},
		{"explicit", "/api/developers?page=3&limit=50", 3, 50},
		{"zero page ignored", "/api/developers?page=0", 1, 20},
		{"negative ignored", "/api/developers?page=-2&limit=-5", 1, 20},
		{"limit over cap ignored", "/api/developers?limit=500", 1, 20},
		{"garbage ignored", "/api/developers?page=abc&limit=xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, limit := parsePage(r)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Fatalf("parsePage = (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestRespondErrorSuppressesDetail(t *testing.T) {
	defer SetDevMode(false)

	boom := &testError{"database exploded"}

	SetDevMode(false)
	w := httptest.NewRecorder()
	respondError(w, httptest.NewRequest("GET", "/api/developers", nil), boom)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if msg := decodeEnvelope(t, w).Message; msg != "internal server error" {
		t.Fatalf("production message = %q, want generic", msg)
	}

	SetDevMode(true)
	w = httptest.NewRecorder()
	respondError(w, httptest.NewRequest("GET", "/api/developers", nil), boom)
	if msg := decodeEnvelope(t, w).Message; msg != "database exploded" {
		t.Fatalf("dev message = %q, want detail", msg)
	}
}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
