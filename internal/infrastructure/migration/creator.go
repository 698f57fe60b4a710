package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Version}}_{{.Name}} ({{.Direction}})
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// Entry is one migration found in a source directory
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// BaseName returns the file name shared by the up and down halves
func (e Entry) BaseName() string {
	return fmt.Sprintf("%06d_%s", e.Version, e.Name)
}

// Created describes a migration pair written by Create
type Created struct {
	Entry
	UpPath   string
	DownPath string
}

// Create writes an empty up/down pair into dir, numbered one past the
// highest existing version
func Create(dir, name, description string) (*Created, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	c := &Created{Entry: Entry{Version: next, Name: clean, HasDown: true}}
	c.UpPath = filepath.Join(dir, c.BaseName()+upSuffix)
	c.DownPath = filepath.Join(dir, c.BaseName()+downSuffix)

	created := time.Now().UTC().Format(time.RFC3339)
	if err := writeTemplate(c.UpPath, c.Entry, "up", created, description); err != nil {
		return nil, err
	}
	if err := writeTemplate(c.DownPath, c.Entry, "down", created, description); err != nil {
		_ = os.Remove(c.UpPath)
		return nil, err
	}
	return c, nil
}

// List returns the migrations in fsys ordered by version. Files that do not
// follow the NNNNNN_name.(up|down).sql layout are ignored.
func List(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		base, down := splitSuffix(f.Name())
		if base == "" {
			continue
		}
		num, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			continue
		}
		e, seen := byVersion[uint(v)]
		if !seen {
			e = &Entry{Version: uint(v), Name: name}
			byVersion[uint(v)] = e
		}
		if down {
			e.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func splitSuffix(file string) (string, bool) {
	switch {
	case strings.HasSuffix(file, upSuffix):
		return strings.TrimSuffix(file, upSuffix), false
	case strings.HasSuffix(file, downSuffix):
		return strings.TrimSuffix(file, downSuffix), true
	}
	return "", false
}

func writeTemplate(path string, e Entry, direction, created, description string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return fileTemplate.Execute(f, map[string]any{
		"Version":     fmt.Sprintf("%06d", e.Version),
		"Name":        e.Name,
		"Direction":   direction,
		"Created":     created,
		"Description": description,
	})
}

// sanitizeName lowercases name and collapses separators into single
// underscores, dropping anything else
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
