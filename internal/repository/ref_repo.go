package repository

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// RefData is the editable reference lists behind the dashboard selects:
// convening titles, political parties and assignment roles.
type RefData struct {
	OrganizerTitles []string `yaml:"convoca_cargos" json:"convoca_cargos"`
	Parties         []string `yaml:"partidos" json:"partidos"`
	Roles           []string `yaml:"roles" json:"roles"`
}

// RefFileRepository serves reference lists from a YAML file and reloads it
// when the file is written.
type RefFileRepository struct {
	file   string
	logger *slog.Logger
	data   RefData

	watcher *fsnotify.Watcher

	mx sync.RWMutex
}

func NewRefFileRepo(file string) *RefFileRepository {
	r := &RefFileRepository{
		logger: slog.Default().With("logger", "RefData"),
		file:   file,
	}

	if err := r.load(); err != nil {
		r.logger.Error("error loading reference file", slog.Any("error", err))
	}

	return r
}

func (r *RefFileRepository) load() error {
	r.mx.Lock()
	defer r.mx.Unlock()

	if _, err := os.Lstat(r.file); os.IsNotExist(err) {
		// create empty file
		f, err := os.Create(r.file)
		if err != nil {
			return err
		}

		return f.Close()
	}

	dat, err := os.ReadFile(r.file)
	if err != nil {
		return err
	}

	var data RefData

	if err := yaml.Unmarshal(dat, &data); err != nil {
		return err
	}

	r.data = data

	return nil
}

func (r *RefFileRepository) Start() error {
	var err error
	r.watcher, err = fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	if err := r.watcher.Add(r.file); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-r.watcher.Events:
				if !ok {
					return
				}

				r.logger.Debug(fmt.Sprintf("event: %v", event))

				if event.Has(fsnotify.Write) && event.Name == r.file {
					r.logger.Info("reference file is modified, reloading")

					if err := r.load(); err != nil {
						r.logger.Error("error", slog.Any("error", err))
					}
				}
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}

				r.logger.Error("error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (r *RefFileRepository) Stop() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

func (r *RefFileRepository) Data() RefData {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return r.data
}

func (r *RefFileRepository) OrganizerTitles() []string {
	return r.Data().OrganizerTitles
}

func (r *RefFileRepository) Parties() []string {
	return r.Data().Parties
}

func (r *RefFileRepository) Roles() []string {
	return r.Data().Roles
}

// HasTitle accepts any value when the list is empty (no file configured).
func (r *RefFileRepository) HasTitle(s string) bool {
	titles := r.OrganizerTitles()

	if len(titles) == 0 {
		return true
	}

	for _, t := range titles {
		if t == s {
			return true
		}
	}

	return false
}
