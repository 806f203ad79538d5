package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/devmatch/internal/upload"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type UploadHandler struct {
	store   *upload.Store
	devRepo repository.DeveloperRepo
	empRepo repository.EmployerRepo
}

func NewUploadHandler(store *upload.Store, dr repository.DeveloperRepo, er repository.EmployerRepo) *UploadHandler {
	return &UploadHandler{store: store, devRepo: dr, empRepo: er}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Single stores one file of the kind named in the path. For profile assets
// the returned URL is also persisted onto the caller's account record.
func (h *UploadHandler) Single(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, errValidation("invalid multipart form"))
		return
	}
	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		respondError(w, r, errValidation("file: is required"))
		return
	}

	url, err := h.store.Save(kind, fhs[0])
	if err != nil {
		respondError(w, r, uploadErr(err))
		return
	}

	if err := h.persistURL(r, kind, url); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, uploadResponse{URL: url}, http.StatusCreated)
}

type multiUploadResponse struct {
	URLs   []string `json:"urls"`
	Failed []string `json:"failed,omitempty"`
}

// Multiple stores a batch of project images. Bad files are skipped and
// reported by name rather than failing the whole batch.
func (h *UploadHandler) Multiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, errValidation("invalid multipart form"))
		return
	}
	fhs := r.MultipartForm.File["files"]
	if len(fhs) == 0 {
		respondError(w, r, errValidation("files: at least one file is required"))
		return
	}

	out := multiUploadResponse{URLs: []string{}}
	for _, fh := range fhs {
		url, err := h.store.Save("project-image", fh)
		if err != nil {
			out.Failed = append(out.Failed, fh.Filename)
			continue
		}
		out.URLs = append(out.URLs, url)
	}
	respondData(w, out, http.StatusCreated)
}

func (h *UploadHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, files, http.StatusOK)
}

func (h *UploadHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if err := h.store.Delete(name); err != nil {
		respondError(w, r, uploadErr(err))
		return
	}
	respondMessage(w, "file deleted", http.StatusOK)
}

// persistURL writes profile asset URLs back onto the owning account so the
// upload and the profile field cannot drift apart.
func (h *UploadHandler) persistURL(r *http.Request, kind, url string) error {
	ctx := r.Context()
	switch kind {
	case "resume", "profile-picture":
		dev, ok := developerFrom(ctx)
		if !ok {
			return errForbidden("developer account required")
		}
		if kind == "resume" {
			dev.ResumeURL = url
		} else {
			dev.ProfilePicture = url
		}
		return h.devRepo.UpdateDeveloper(ctx, dev)
	case "company-logo":
		emp, ok := employerFrom(ctx)
		if !ok {
			return errForbidden("employer account required")
		}
		emp.CompanyLogo = url
		return h.empRepo.UpdateEmployer(ctx, emp)
	}
	// Project images attach to a project later; nothing to persist here.
	return nil
}

func uploadErr(err error) error {
	switch {
	case errors.Is(err, upload.ErrUnknownKind):
		return errNotFound("unknown upload kind")
	case errors.Is(err, upload.ErrTooLarge):
		return errTooLarge("file exceeds the size limit")
	case errors.Is(err, upload.ErrBadType):
		return errValidation("unsupported file type")
	case errors.Is(err, upload.ErrNotFound):
		return errNotFound("file not found")
	}
	return err
}
