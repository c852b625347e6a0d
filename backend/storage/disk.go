package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the object-store binding for video and thumbnail assets.
// The production deployment points it at a disk volume fronted by the
// media static route; swapping in a bucket-backed implementation only
// needs these three calls.
type Store interface {
	Upload(path string, r io.Reader) error
	PublicURL(path string) string
	Remove(path string) error
}

type DiskStore struct {
	Root    string
	BaseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Upload(path string, r io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	return err
}

func (s *DiskStore) PublicURL(path string) string {
	return s.BaseURL + "/" + path
}

func (s *DiskStore) Remove(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

func (s *DiskStore) resolve(path string) (string, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.Root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("object path %q escapes storage root", path)
	}
	return full, nil
}

// VideoObjectPath builds the storage key for an uploaded video:
// {sanitized-user-identifier}/{video-id}_{sanitized-filename}.
func VideoObjectPath(ownerEmail, videoID, filename string) string {
	return FolderForEmail(ownerEmail) + "/" + videoID + "_" + SanitizeFileName(filename)
}

// FolderForEmail turns an email address into a safe folder name.
func FolderForEmail(email string) string {
	folder := strings.ReplaceAll(email, "@", "_at_")
	return strings.ReplaceAll(folder, ".", "_")
}

// SanitizeFileName lowercases the name and replaces anything outside
// [a-z0-9.-] with underscores.
func SanitizeFileName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
