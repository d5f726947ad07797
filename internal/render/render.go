package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

const (
	layoutDir  = "layouts"
	partialDir = "partials"
	pageDir    = "pages"
	rootName   = "base"
)

// Renderer executes page templates inside the shared layout. In dev mode templates are reparsed
// on every call so edits show up without a restart.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
	dev   bool
	pages map[string]*template.Template
}

// New parses every template under fsys. Parse errors are returned even in dev mode.
func New(fsys fs.FS, funcs template.FuncMap, dev bool) (*Renderer, error) {
	r := &Renderer{fsys: fsys, funcs: funcs, dev: dev}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

// Render executes page name into w. Output is buffered so a failed execution writes nothing.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	pages := r.pages
	if r.dev {
		fresh, err := r.parse()
		if err != nil {
			return err
		}
		pages = fresh
	}
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, rootName, data); err != nil {
		return fmt.Errorf("render: execute %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Pages returns the parsed page names.
func (r *Renderer) Pages() []string {
	out := make([]string, 0, len(r.pages))
	for name := range r.pages {
		out = append(out, name)
	}
	return out
}

func (r *Renderer) parse() (map[string]*template.Template, error) {
	shared, err := r.collect(layoutDir, partialDir)
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("render: no layout templates found")
	}
	base, err := template.New(rootName).Funcs(r.funcs).ParseFS(r.fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}

	files, err := r.collect(pageDir)
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(r.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}
	return pages, nil
}

// collect lists the .tmpl files under the given directories. Note: ParseFS globs don't support **.
func (r *Renderer) collect(dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := fs.WalkDir(r.fsys, dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("render: walk %s: %w", dir, err)
		}
	}
	return files, nil
}
