// Package storage provides file-backed persistence for archivist: loading
// content records and saving the pipeline metadata the archive is written to.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/archivist/pkg/models"
	"gopkg.in/yaml.v3"
)

// MetadataFile represents the top-level structure of the persisted metadata.
type MetadataFile struct {
	Version     string                 `yaml:"version" json:"version"`
	GeneratedAt time.Time              `yaml:"generated_at" json:"generated_at"`
	Archive     models.Archive         `yaml:"archive" json:"archive"`
	Options     *models.ArchiveOptions `yaml:"options,omitempty" json:"options,omitempty"`
	Extra       map[string]any         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// MetadataStore persists the host pipeline's metadata map.
type MetadataStore interface {
	Load() (models.Metadata, error)
	Save(meta models.Metadata) error
	Path() string
}

type fileMetadataStore struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// NewMetadataStore creates a MetadataStore writing to path. Files ending in
// .json are written as JSON, anything else as YAML.
func NewMetadataStore(fs afero.Fs, path string) MetadataStore {
	return &fileMetadataStore{fs: fs, path: path, now: time.Now}
}

func (s *fileMetadataStore) Path() string { return s.path }

func (s *fileMetadataStore) isJSON() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".json")
}

// Load reads the metadata file. A missing file yields empty metadata.
func (s *fileMetadataStore) Load() (models.Metadata, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path); !exists {
			return models.Metadata{}, nil
		}
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	var mf MetadataFile
	if s.isJSON() {
		err = json.Unmarshal(data, &mf)
	} else {
		err = yaml.Unmarshal(data, &mf)
	}
	if err != nil {
		return nil, fmt.Errorf("loading metadata: parsing %s: %w", s.path, err)
	}

	meta := make(models.Metadata, len(mf.Extra)+1)
	for k, v := range mf.Extra {
		meta[k] = v
	}
	if mf.Archive != nil {
		meta[models.ArchiveKey] = mf.Archive
	}
	if mf.Options != nil {
		meta[models.ArchiveOptionsKey] = *mf.Options
	}
	return meta, nil
}

// Save writes meta, creating parent directories as needed.
func (s *fileMetadataStore) Save(meta models.Metadata) error {
	mf := MetadataFile{
		Version:     "1.0",
		GeneratedAt: s.now().UTC(),
	}
	for k, v := range meta {
		if k == models.ArchiveKey || k == models.ArchiveOptionsKey {
			continue
		}
		if mf.Extra == nil {
			mf.Extra = make(map[string]any)
		}
		mf.Extra[k] = v
	}
	if a, ok := meta.Archive(); ok {
		mf.Archive = a
	}
	if o, ok := meta.ArchiveOptions(); ok {
		mf.Options = &o
	}

	var (
		data []byte
		err  error
	)
	if s.isJSON() {
		data, err = json.MarshalIndent(&mf, "", "  ")
	} else {
		data, err = yaml.Marshal(&mf)
	}
	if err != nil {
		return fmt.Errorf("saving metadata: encoding: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("saving metadata: creating directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("saving metadata: writing file: %w", err)
	}
	return nil
}
