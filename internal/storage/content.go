package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/valter-silva-au/archivist/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultContentExtensions are the file extensions loaded as records.
var DefaultContentExtensions = []string{".md", ".markdown", ".html"}

// ContentLoader reads the record set a pipeline run operates on.
type ContentLoader interface {
	Load() (models.Files, error)
}

// frontMatterLoader loads content files whose optional YAML front matter is
// delimited by "---" lines.
type frontMatterLoader struct {
	fs         afero.Fs
	root       string
	extensions map[string]bool
	logger     *log.Logger
}

// NewContentLoader creates a ContentLoader reading files under root from fs.
// Use afero.NewOsFs() for the real filesystem or afero.NewMemMapFs() in tests.
// logger may be nil.
func NewContentLoader(fs afero.Fs, root string, logger *log.Logger, extensions ...string) ContentLoader {
	if len(extensions) == 0 {
		extensions = DefaultContentExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &frontMatterLoader{fs: fs, root: root, extensions: exts, logger: logger}
}

// Load walks the root directory and returns one record per content file,
// keyed by its slash-separated path relative to root.
func (l *frontMatterLoader) Load() (models.Files, error) {
	exists, err := afero.DirExists(l.fs, l.root)
	if err != nil {
		return nil, fmt.Errorf("loading content: checking %s: %w", l.root, err)
	}
	if !exists {
		return nil, fmt.Errorf("loading content: source directory %s does not exist", l.root)
	}

	files := make(models.Files)
	err = afero.Walk(l.fs, l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != l.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !l.extensions[strings.ToLower(filepath.Ext(path))] {
			l.debug("skipping file with unknown extension", "path", path)
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}
		key := filepath.ToSlash(rel)

		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		rec, err := ParseRecord(key, data)
		if err != nil {
			return err
		}
		files[key] = rec
		l.debug("loaded content file", "key", key, "fields", len(rec.Fields))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	l.debug("content loaded", "root", l.root, "records", len(files))
	return files, nil
}

func (l *frontMatterLoader) debug(msg string, keyvals ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keyvals...)
	}
}

var frontMatterDelim = []byte("---")

// ParseRecord splits data into YAML front matter and body. Content without a
// leading "---" line has no front matter.
func ParseRecord(key string, data []byte) (*models.Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	rec := models.NewRecord(key, nil)

	first, rest, found := cutLine(data)
	if !found || !bytes.Equal(bytes.TrimRight(first, " \t\r"), frontMatterDelim) {
		rec.Body = string(data)
		return rec, nil
	}

	var header []byte
	closed := false
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), frontMatterDelim) {
			closed = true
			break
		}
		header = append(header, line...)
		header = append(header, '\n')
	}
	if !closed {
		return nil, fmt.Errorf("parsing %s: unterminated front matter", key)
	}

	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &rec.Fields); err != nil {
			return nil, fmt.Errorf("parsing %s front matter: %w", key, err)
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]any)
		}
	}
	rec.Body = string(rest)
	return rec, nil
}

// cutLine returns the first line of data (without the newline) and the rest.
// found is false when data holds no newline.
func cutLine(data []byte) (line, rest []byte, found bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:], true
	}
	return data, nil, false
}
