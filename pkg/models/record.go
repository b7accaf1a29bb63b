package models

import (
	"encoding/json"
	"maps"
)

// Record is one content item, typically a markdown file whose YAML front
// matter has been decoded into Fields.
type Record struct {
	// Key identifies the record within its source, e.g. "posts/hello.md".
	Key string `yaml:"-" json:"-"`
	// FileName is the traceability annotation set when the record is archived.
	FileName string `yaml:"-" json:"-"`
	// Fields holds the decoded front matter.
	Fields map[string]any `yaml:"-" json:"-"`
	// Body is the content after the front matter. It is never interpreted.
	Body string `yaml:"-" json:"-"`
}

// Files maps record keys to records, as supplied by the host pipeline.
type Files map[string]*Record

// NewRecord creates a record with the given key and front matter fields.
func NewRecord(key string, fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Record{Key: key, Fields: fields}
}

// Field returns the front matter value stored under name.
func (r *Record) Field(name string) (any, bool) {
	if r == nil || r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Title returns the "title" front matter field, falling back to the key.
func (r *Record) Title() string {
	if v, ok := r.Field("title"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return r.Key
}

// Annotated returns a shallow copy of the record with FileName set to its key.
// The copy owns its own Fields map so later writes do not alias the source.
func (r *Record) Annotated() *Record {
	return &Record{
		Key:      r.Key,
		FileName: r.Key,
		Fields:   maps.Clone(r.Fields),
		Body:     r.Body,
	}
}

// flatten returns the front matter plus the fileName annotation.
func (r *Record) flatten() map[string]any {
	out := make(map[string]any, len(r.Fields)+1)
	maps.Copy(out, r.Fields)
	if r.FileName != "" {
		out["fileName"] = r.FileName
	}
	return out
}

// MarshalYAML emits the record as its front matter plus fileName.
func (r *Record) MarshalYAML() (interface{}, error) {
	return r.flatten(), nil
}

// UnmarshalYAML restores a record written by MarshalYAML.
func (r *Record) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var fields map[string]any
	if err := unmarshal(&fields); err != nil {
		return err
	}
	r.restore(fields)
	return nil
}

// MarshalJSON emits the record as its front matter plus fileName.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.flatten())
}

// UnmarshalJSON restores a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.restore(fields)
	return nil
}

func (r *Record) restore(fields map[string]any) {
	if fields == nil {
		fields = make(map[string]any)
	}
	if name, ok := fields["fileName"].(string); ok {
		r.Key = name
		r.FileName = name
		delete(fields, "fileName")
	}
	r.Fields = fields
}
