// Package plotpage renders standalone HTML story pages built from echarts
// charts, narrative text blocks and navigation links.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const styleTagLen = len("</style>")

// Renderable is the interface for chart components.
type Renderable interface {
	Render(w io.Writer) error
}

// Link is a navigation target rendered as an anchor.
type Link struct {
	Label  string
	Href   string
	Active bool
}

// Hint contains interpretive guidance for a section.
type Hint struct {
	Title string
	Items []string
}

// Section is one block of a page: optional heading and text, optional links,
// and an optional chart. Hidden sections are emitted with display:none.
type Section struct {
	ID     string
	Title  string
	Text   string
	Hint   Hint
	Links  []Link
	Chart  Renderable
	Hidden bool
}

// Row groups sections rendered side by side.
type Row struct {
	ID       string
	Sections []Section
}

// Page represents a complete story page. Title names the document; Heading
// is shown in the header and may be empty.
type Page struct {
	Title       string
	Heading     string
	Description string
	ProjectName string
	Theme       Theme
	Nav         []Link
	Rows        []Row
}

// NewPage creates a new story page.
func NewPage(title, description string) *Page {
	return &Page{
		Title:       title,
		Heading:     title,
		Description: description,
		ProjectName: "gamestory",
		Theme:       ThemeLight,
	}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends a row holding the given sections.
func (p *Page) Add(id string, sections ...Section) {
	p.Rows = append(p.Rows, Row{ID: id, Sections: sections})
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct{}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	header, err := renderTemplate("header.html", headerData{
		ProjectName: page.ProjectName,
		Title:       page.Heading,
		Description: page.Description,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	var nav template.HTML

	if len(page.Nav) > 0 {
		nav, err = renderTemplate("nav.html", navData{Items: page.Nav})
		if err != nil {
			return fmt.Errorf("render nav: %w", err)
		}
	}

	var content bytes.Buffer

	for _, row := range page.Rows {
		rowHTML, rowErr := r.renderRow(row)
		if rowErr != nil {
			return fmt.Errorf("render row %s: %w", row.ID, rowErr)
		}

		content.WriteString(string(rowHTML))
	}

	darkClass := ""
	if page.Theme == ThemeDark {
		darkClass = "dark"
	}

	html, err := renderTemplate("page.html", pageData{
		Title:     page.Title,
		DarkClass: darkClass,
		Theme:     GetThemeConfig(page.Theme),
		Header:    header,
		Nav:       nav,
		Content:   template.HTML(content.String()), //nolint:gosec // assembled from escaped templates.
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func (r HTMLRenderer) renderRow(row Row) (template.HTML, error) {
	sections := make([]template.HTML, 0, len(row.Sections))

	for _, section := range row.Sections {
		sectionHTML, err := r.renderSection(section)
		if err != nil {
			return "", err
		}

		sections = append(sections, sectionHTML)
	}

	return renderTemplate("row.html", rowData{ID: row.ID, Sections: sections})
}

func (r HTMLRenderer) renderSection(section Section) (template.HTML, error) {
	chartHTML, err := renderChart(section.Chart)
	if err != nil {
		return "", fmt.Errorf("section %s: %w", section.ID, err)
	}

	var hint *hintData

	if len(section.Hint.Items) > 0 {
		hint = &hintData{Title: section.Hint.Title, Items: section.Hint.Items}
	}

	return renderTemplate("section.html", sectionData{
		ID:     section.ID,
		Title:  section.Title,
		Text:   section.Text,
		Links:  section.Links,
		Chart:  template.HTML(chartHTML), //nolint:gosec // echarts output.
		Hint:   hint,
		Hidden: section.Hidden,
	})
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	content, err := renderChart(cw.chart)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, content)
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent strips the document shell echarts wraps around a chart.
// Fragments that are not full documents pass through untouched.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 || end < start {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
