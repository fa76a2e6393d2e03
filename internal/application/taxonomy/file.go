package taxonomy

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// File is the YAML taxonomy document.
type File struct {
	Tags    []string   `yaml:"tags"`
	Queries []QueryDef `yaml:"queries,omitempty"`

	// lines[i] is the source line of Tags[i]; empty for files not read from YAML.
	lines []int
}

// QueryDef is a named query stored next to the taxonomy.
type QueryDef struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// LineError reports a tag entry the file could not register.
type LineError struct {
	Line int
	Tag  string
	Err  error
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseFile decodes a taxonomy document, remembering the line of each tag.
func ParseFile(data []byte) (File, error) {
	var file File
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return File{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := doc.Decode(&file); err != nil {
		return File{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	file.lines = tagLines(&doc)
	return file, nil
}

// tagLines returns the source line of every item under the top-level tags key.
func tagLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value != "tags" {
			continue
		}
		seq := root.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, item := range seq.Content {
			lines[j] = item.Line
		}
		return lines
	}
	return nil
}

// ReadFile reads and parses a taxonomy file from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	file, err := ParseFile(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// ReadFileFS reads and parses a taxonomy file from fsys.
func ReadFileFS(fsys fs.FS, name string) (File, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", name, err)
	}
	file, err := ParseFile(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", name, err)
	}
	return file, nil
}

func (f File) line(i int) int {
	if i < len(f.lines) {
		return f.lines[i]
	}
	return 0
}

// RegisterInto registers every listed tag in reg. Entries that already exist
// are not errors, so a file may list a parent after its child.
// It returns the tags created and one LineError per rejected entry.
func (f File) RegisterInto(reg *tags.Registry) ([]tags.Tag, []error) {
	var created []tags.Tag
	var errs []error
	for i, name := range f.Tags {
		fresh, failures := reg.RegisterAll(name)
		created = append(created, fresh...)
		for _, err := range failures {
			if errors.Is(err, tags.ErrAlreadyExists) {
				continue
			}
			errs = append(errs, &LineError{Line: f.line(i), Tag: name, Err: err})
		}
	}
	return created, errs
}

// Build creates a fresh registry holding exactly the listed tags.
func (f File) Build() (*tags.Registry, error) {
	reg := tags.NewRegistry()
	if _, errs := f.RegisterInto(reg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// NewFile builds the document for reg, listing every known tag in sorted order.
func NewFile(reg *tags.Registry, queries []QueryDef) File {
	return File{Tags: tags.Strings(reg.All()), Queries: queries}
}

// Encode renders the document as YAML.
func (f File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(f); err != nil {
		return nil, fmt.Errorf("encode taxonomy: %w", err)
	}
	_ = encoder.Close()
	return buf.Bytes(), nil
}
