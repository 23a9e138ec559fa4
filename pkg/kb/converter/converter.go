package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"policygen/entities"
)

const MetaFilePath = "file_path"

// Func turns the file at path into text plus converter-specific meta.
type Func func(path string) (text string, meta map[string]any, err error)

// Registry maps lower-case file extensions to converters.
type Registry struct {
	byExt map[string]Func
}

// NewRegistry knows every built-in format.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]Func{
		".txt":  TextFile,
		".md":   TextFile,
		".html": HTMLFile,
		".htm":  HTMLFile,
		".pdf":  PDFFile,
		".xlsx": XLSXFile,
	}}
}

func (r *Registry) Register(ext string, fn Func) {
	r.byExt[strings.ToLower(ext)] = fn
}

func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Convert reads one file into a source document carrying file_path in meta.
func (r *Registry) Convert(path string) (entities.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := r.byExt[ext]
	if !ok {
		return entities.Document{}, fmt.Errorf("convert %s: unsupported extension %q", path, ext)
	}
	text, meta, err := fn(path)
	if err != nil {
		return entities.Document{}, fmt.Errorf("convert %s: %w", path, err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta[MetaFilePath] = path
	return entities.Document{
		ID:      SourceID(path, text),
		Content: text,
		Meta:    meta,
	}, nil
}

// ConvertAll converts paths in order and stops at the first failure.
func (r *Registry) ConvertAll(paths []string) ([]entities.Document, error) {
	out := make([]entities.Document, 0, len(paths))
	for _, p := range paths {
		d, err := r.Convert(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func SourceID(path, content string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path+"\x00"+content)).String()
}

func TextFile(path string) (string, map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return strings.ToValidUTF8(string(b), "�"), nil, nil
}
