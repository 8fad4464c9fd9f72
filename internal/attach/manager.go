// Package attach stores invitation attachments (the scanned invite document)
// on disk under random names and keeps the original name in metadata.
package attach

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var allowedExts = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// Info describes one stored attachment, as denormalized onto the invitation.
type Info struct {
	URL  string
	Name string
	Mime string
	Size int64
	TS   time.Time
}

type Manager struct {
	logger *slog.Logger
	dir    string
}

func New(dir string) *Manager {
	return &Manager{
		logger: slog.Default().With("logger", "attach"),
		dir:    dir,
	}
}

func (m *Manager) Init() error {
	return os.MkdirAll(m.dir, 0o777)
}

// Allowed checks the upload whitelist (pdf, jpg, jpeg, png).
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}

	return allowedExts[strings.ToLower(filename[i+1:])]
}

// Save writes the upload under a fresh uuid name, sniffing the real mime
// type from content rather than trusting the client.
func (m *Manager) Save(origName string, r io.Reader) (*Info, error) {
	if !Allowed(origName) {
		return nil, fmt.Errorf("file type not allowed: %s", origName)
	}

	ext := strings.ToLower(filepath.Ext(origName))
	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	path := filepath.Join(m.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	size, err := io.Copy(f, r)

	if err1 := f.Close(); err == nil {
		err = err1
	}

	if err != nil {
		_ = os.Remove(path)

		return nil, err
	}

	mime := "application/octet-stream"

	if mt, err := mimetype.DetectFile(path); err == nil {
		mime = mt.String()
	} else {
		m.logger.Warn("mime detect failed", slog.Any("error", err))
	}

	return &Info{
		URL:  "/uploads/" + stored,
		Name: filepath.Base(origName),
		Mime: mime,
		Size: size,
		TS:   time.Now().UTC(),
	}, nil
}

// Path maps a stored name back to the file on disk, refusing traversal.
func (m *Manager) Path(stored string) (string, error) {
	if stored == "" || strings.ContainsAny(stored, "/\\") {
		return "", fmt.Errorf("bad file name")
	}

	path := filepath.Join(m.dir, stored)

	if _, err := os.Stat(path); err != nil {
		return "", err
	}

	return path, nil
}

// Remove deletes the file behind an attachment URL, best effort.
func (m *Manager) Remove(url string) {
	stored := strings.TrimPrefix(url, "/uploads/")

	path, err := m.Path(stored)
	if err != nil {
		return
	}

	if err := os.Remove(path); err != nil {
		m.logger.Warn("remove failed", slog.Any("error", err))
	}
}
