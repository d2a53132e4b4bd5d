// Package uploads stores avatar and event images on local disk and
// hands back URL paths served from /uploads.
package uploads

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type Store struct {
	root       string
	avatarsDir string
	eventsDir  string
}

func NewStore(root string) (*Store, error) {
	s := &Store{
		root:       root,
		avatarsDir: filepath.Join(root, "avatars"),
		eventsDir:  filepath.Join(root, "events"),
	}
	for _, dir := range []string{s.root, s.avatarsDir, s.eventsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// Root is the directory the HTTP layer serves as /uploads.
func (s *Store) Root() string { return s.root }

// SaveAvatar stores the file and returns its URL path
// ("/uploads/avatars/<name>").
func (s *Store) SaveAvatar(file *multipart.FileHeader, userID string) (string, error) {
	name, err := s.save(file, s.avatarsDir, "user", userID)
	if err != nil {
		return "", err
	}
	return "/uploads/avatars/" + name, nil
}

// SaveEventImage stores the file and returns its URL path
// ("/uploads/events/<name>").
func (s *Store) SaveEventImage(file *multipart.FileHeader, userID string) (string, error) {
	name, err := s.save(file, s.eventsDir, "event", userID)
	if err != nil {
		return "", err
	}
	return "/uploads/events/" + name, nil
}

func (s *Store) save(file *multipart.FileHeader, dir, kind, userID string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", apperr.ErrValidation
	}

	name := fmt.Sprintf("%s_%s_%d_%s", kind, userID, time.Now().Unix(), sanitize(file.Filename))

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteAvatar removes a previously stored avatar by its URL. Best-effort.
func (s *Store) DeleteAvatar(url string) {
	s.delete(s.avatarsDir, url)
}

// DeleteEventImage removes a previously stored event image by its URL.
// Best-effort.
func (s *Store) DeleteEventImage(url string) {
	s.delete(s.eventsDir, url)
}

func (s *Store) delete(dir, url string) {
	if url == "" {
		return
	}
	name := sanitize(path.Base(url))
	if name == "" || name == "." {
		return
	}
	if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("uploads: delete %s failed: %v", name, err)
	}
}

// sanitize keeps only filename-safe characters, dropping any path or
// shell material a client might smuggle in.
func sanitize(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
