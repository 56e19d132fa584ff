package plotpage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	indexID = "index"
	dirPerm = 0o755
	htmlExt = ".html"
)

// MultiPageRenderer writes one standalone HTML file per page into OutputDir.
type MultiPageRenderer struct {
	OutputDir string // Directory to write HTML files into.
	Theme     Theme  // Applied to every page written.
}

// PagePath returns the file a page with the given id is written to.
func (r *MultiPageRenderer) PagePath(id string) string {
	return filepath.Join(r.OutputDir, id+htmlExt)
}

// RenderPage renders page to <OutputDir>/<id>.html, creating the directory
// when needed. It returns the written path.
func (r *MultiPageRenderer) RenderPage(id string, page *Page) (string, error) {
	err := os.MkdirAll(r.OutputDir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", r.OutputDir, err)
	}

	page.Theme = r.Theme
	outPath := r.PagePath(id)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	err = HTMLRenderer{}.Render(f, page)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}

	return outPath, nil
}

// RenderIndex renders page as <OutputDir>/index.html.
func (r *MultiPageRenderer) RenderIndex(page *Page) (string, error) {
	return r.RenderPage(indexID, page)
}
