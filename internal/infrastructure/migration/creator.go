package migration

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Entry is one migration found in a source
type Entry struct {
	Version uint64
	Name    string
	HasUp   bool
	HasDown bool
}

// Base is the file name stem shared by the up and down scripts
func (e Entry) Base() string {
	return fmt.Sprintf("%06d_%s", e.Version, e.Name)
}

// List reads golang-migrate style file pairs from fsys, ordered by version.
// A missing root yields no entries.
func List(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[uint64]*Entry{}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		stem, up := strings.CutSuffix(f.Name(), ".up.sql")
		if !up {
			var down bool
			if stem, down = strings.CutSuffix(f.Name(), ".down.sql"); !down {
				continue
			}
		}
		prefix, name, ok := strings.Cut(stem, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if !ok || err != nil {
			continue
		}
		e := byVersion[v]
		if e == nil {
			e = &Entry{Version: v, Name: name}
			byVersion[v] = e
		}
		if up {
			e.HasUp = true
		} else {
			e.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

// Unpaired returns the entries missing either script
func Unpaired(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if !e.HasUp || !e.HasDown {
			out = append(out, e)
		}
	}
	return out
}

var scriptTmpl = template.Must(template.New("script").Parse(
	`-- {{.Base}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// Created describes a freshly written pair
type Created struct {
	Entry
	UpPath   string
	DownPath string
}

// Create writes an empty up/down pair in dir, numbered after the highest
// version already there.
func Create(dir, name, description string, now time.Time) (*Created, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint64 = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	c := &Created{Entry: Entry{Version: next, Name: slug, HasUp: true, HasDown: true}}
	c.UpPath = filepath.Join(dir, c.Base()+".up.sql")
	c.DownPath = filepath.Join(dir, c.Base()+".down.sql")

	data := struct {
		Base, Created, Description string
		Down                       bool
	}{Base: c.Base(), Created: now.UTC().Format(time.RFC3339), Description: description}

	if err := writeScript(c.UpPath, data); err != nil {
		return nil, err
	}
	data.Down = true
	if err := writeScript(c.DownPath, data); err != nil {
		_ = os.Remove(c.UpPath)
		return nil, err
	}
	return c, nil
}

// writeScript never overwrites an existing file
func writeScript(path string, data any) error {
	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// slugify lowercases name and joins its words with single underscores
func slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	kept := words[:0]
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, w)
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}
