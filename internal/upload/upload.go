// Package upload implements the disk-backed multipart file store: per-kind
// subdirectories, MIME allowlists, a size ceiling and collision-resistant
// generated names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrBadType     = errors.New("file type not allowed for this upload kind")
	ErrUnknownKind = errors.New("unknown upload kind")
	ErrNotFound    = errors.New("file not found")
)

// kind describes one upload category: where its files land and which content
// types it accepts.
type kind struct {
	subdir string
	mimes  map[string]bool
}

var kinds = map[string]kind{
	"resume": {
		subdir: "resumes",
		mimes: map[string]bool{
			"application/pdf":    true,
			"application/msword": true,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		},
	},
	"profile-picture": {
		subdir: "profile-pictures",
		mimes:  imageMIMEs(),
	},
	"company-logo": {
		subdir: "company-logos",
		mimes:  imageMIMEs(),
	},
	"project-image": {
		subdir: "project-images",
		mimes:  imageMIMEs(),
	},
}

func imageMIMEs() map[string]bool {
	return map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
}

// Store saves uploaded files under a root directory.
type Store struct {
	root     string
	maxBytes int64
}

func NewStore(root string, maxBytes int64) *Store {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Store{root: root, maxBytes: maxBytes}
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"`
}

// Save stores one multipart file under its kind's subdirectory and returns
// the relative URL path to persist on the owning account record.
func (s *Store) Save(kindName string, fh *multipart.FileHeader) (string, error) {
	k, ok := kinds[kindName]
	if !ok {
		return "", ErrUnknownKind
	}
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if !k.mimes[contentType] {
		return "", fmt.Errorf("%w: %s", ErrBadType, contentType)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.root, k.subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + safeExt(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// the size header is client-supplied; cap the copy as well
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1)); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if info, err := dst.Stat(); err == nil && info.Size() > s.maxBytes {
		_ = os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return path.Join("/uploads", k.subdir, name), nil
}

// List walks every kind subdirectory.
func (s *Store) List() ([]FileInfo, error) {
	var out []FileInfo
	for _, k := range kinds {
		entries, err := os.ReadDir(filepath.Join(s.root, k.subdir))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			out = append(out, FileInfo{
				Name:     e.Name(),
				URL:      path.Join("/uploads", k.subdir, e.Name()),
				Size:     info.Size(),
				Modified: info.ModTime().UTC().UnixMilli(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified > out[j].Modified })
	return out, nil
}

// Delete removes a stored file by bare name, searching the kind
// subdirectories. Names containing path separators are rejected.
func (s *Store) Delete(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrNotFound
	}
	for _, k := range kinds {
		p := filepath.Join(s.root, k.subdir, name)
		if _, err := os.Stat(p); err == nil {
			return os.Remove(p)
		}
	}
	return ErrNotFound
}

// safeExt keeps only a plain extension from the client-supplied name.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
