package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository/mock"
)

func TestProjectCreateAppendsToOwnerList(t *testing.T) {
	m := mock.NewMocks()
	dev, _ := seedAccounts(t, m)
	h := NewProjectHandler(m.ProjRepo)

	w := httptest.NewRecorder()
	r := asDeveloper(httptest.NewRequest("POST", "/api/projects",
		strings.NewReader(`{"title":"Side Project","description":"A small tool I built","tech_stack":["go"],"is_public":false}`)), dev)
	h.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%s", w.Code, w.Body.String())
	}

	stored := m.DevRepo.Devs[dev.ID]
	if len(stored.ProjectIDs) != 1 || stored.ProjectIDs[0] != 1 {
		t.Fatalf("owner project list = %v, want [1]", stored.ProjectIDs)
	}
}

func TestProjectCreateValidation(t *testing.T) {
	m := mock.NewMocks()
	dev, _ := seedAccounts(t, m)
	h := NewProjectHandler(m.ProjRepo)

	w := httptest.NewRecorder()
	r := asDeveloper(httptest.NewRequest("POST", "/api/projects",
		strings.NewReader(`{"title":"   ","description":"too short"}`)), dev)
	h.Create(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body=%s)", w.Code, w.Body.String())
	}
	msg := decodeEnvelope(t, w).Message
	for _, want := range []string{"title", "description", "tech_stack"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregate message missing %q: %s", want, msg)
		}
	}
}

func TestPrivateProjectVisibility(t *testing.T) {
	m := mock.NewMocks()
	dev, emp := seedAccounts(t, m)
	h := NewProjectHandler(m.ProjRepo)

	w := httptest.NewRecorder()
	r := asDeveloper(httptest.NewRequest("POST", "/api/projects",
		strings.NewReader(`{"title":"Secret","description":"Not for public eyes","tech_stack":["go"],"is_public":false}`)), dev)
	h.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"anonymous", httptest.NewRequest("GET", "/api/projects/1", nil), http.StatusForbidden},
		{"other kind", asEmployer(httptest.NewRequest("GET", "/api/projects/1", nil), emp), http.StatusForbidden},
		{"owner", asDeveloper(httptest.NewRequest("GET", "/api/projects/1", nil), dev), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Get(w, withID(tt.req, "1"))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestProjectUpdateOwnership(t *testing.T) {
	m := mock.NewMocks()
	dev, _ := seedAccounts(t, m)
	h := NewProjectHandler(m.ProjRepo)

	w := httptest.NewRecorder()
	r := asDeveloper(httptest.NewRequest("POST", "/api/projects",
		strings.NewReader(`{"title":"Mine","description":"My own project here","tech_stack":["go"]}`)), dev)
	h.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}

	other := &models.Developer{Email: "other@example.com", Role: models.RoleDeveloper}
	id, err := m.DevRepo.CreateDeveloper(r.Context(), other)
	if err != nil {
		t.Fatalf("seed other developer: %v", err)
	}
	other.ID = id

	w = httptest.NewRecorder()
	r = withID(asDeveloper(httptest.NewRequest("PUT", "/api/projects/1",
		strings.NewReader(`{"title":"Hijacked"}`)), other), "1")
	h.Update(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger update status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	r = withID(asDeveloper(httptest.NewRequest("PUT", "/api/projects/1",
		strings.NewReader(`{"title":"Renamed"}`)), dev), "1")
	h.Update(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("owner update status = %d, body=%s", w.Code, w.Body.String())
	}
	if got := m.ProjRepo.Projects[1].Title; got != "Renamed" {
		t.Fatalf("title = %q, want Renamed", got)
	}
}

func TestProjectDeleteRemovesFromOwnerList(t *testing.T) {
	m := mock.NewMocks()
	dev, _ := seedAccounts(t, m)
	h := NewProjectHandler(m.ProjRepo)

	w := httptest.NewRecorder()
	r := asDeveloper(httptest.NewRequest("POST", "/api/projects",
		strings.NewReader(`{"title":"Ephemeral","description":"Here briefly, then gone","tech_stack":["go"]}`)), dev)
	h.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r = withID(asDeveloper(httptest.NewRequest("DELETE", "/api/projects/1", nil), dev), "1")
	h.Delete(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body=%s", w.Code, w.Body.String())
	}
	if got := m.DevRepo.Devs[dev.ID].ProjectIDs; len(got) != 0 {
		t.Fatalf("owner project list = %v, want empty", got)
	}
}
