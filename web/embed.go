// Package web embeds the site's templates, UI strings, page content and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates locales content public
var files embed.FS

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return f
}

// Templates returns the html/template sources.
func Templates() fs.FS { return sub("templates") }

// Locales returns the UI string bundles (<locale>.json).
func Locales() fs.FS { return sub("locales") }

// Content returns the per-topic page content (<topic>.yaml).
func Content() fs.FS { return sub("content") }

// Assets returns the files served under /assets/.
func Assets() fs.FS { return sub("public/assets") }
