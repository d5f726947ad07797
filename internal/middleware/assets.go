package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// AssetsWithCache wraps a file server over fsys and applies Cache-Control, Vary, and ETag handling.
// Mount it behind http.StripPrefix so request paths are relative to fsys.
func AssetsWithCache(fsys fs.FS) http.Handler {
	// precompute ETags for files under fsys
	etags := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d == nil || d.IsDir() {
			return nil
		}
		if et, err := fileETag(fsys, path); err == nil {
			etags["/"+path] = et
		}
		return nil
	})
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
		key := r.URL.Path
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		if et := etags[key]; et != "" {
			w.Header().Set("ETag", et)
			if matchesETag(r.Header.Get("If-None-Match"), et) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "*" || trimmed == etag {
			return true
		}
	}
	return false
}

func fileETag(fsys fs.FS, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
