package scan

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var exts = []string{".html", ".htm", ".xhtml", ".zip"}

// WalkDir walks directory and returns list of readers with their filenames.
// HTML files inside zip archives are listed as "archive.zip:inner.html".
func WalkDir(root string) (map[string]io.ReadCloser, error) {
	files := make(map[string]io.ReadCloser)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !matchExt(path) {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) == ".zip" {
			return readZip(path, files)
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		files[path] = f
		return nil
	})
	if err != nil {
		for _, f := range files {
			f.Close()
		}
		return nil, err
	}
	return files, nil
}

func readZip(path string, files map[string]io.ReadCloser) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if !matchExt(zf.Name) || strings.ToLower(filepath.Ext(zf.Name)) == ".zip" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(io.LimitReader(rc, MaxDocumentSize))
		rc.Close()
		if err != nil {
			return err
		}
		files[path+":"+zf.Name] = io.NopCloser(bytes.NewReader(data))
	}
	return nil
}

func matchExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
