package render

import (
	"strconv"

	"github.com/Sumatoshi-tech/gamestory/pkg/plotpage"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

// Page composes the board into a story page: the scene buttons, every
// narrative block with only the active one visible, the annotation strip and
// the chart surfaces.
func (b *Board) Page() *plotpage.Page {
	page := plotpage.NewPage(b.story.Title, "").WithTheme(b.theme)
	if b.narrative != scene.Overview {
		page.Heading = ""
	}

	for _, s := range scene.All() {
		page.Nav = append(page.Nav, plotpage.Link{
			Label:  s.Label(),
			Href:   b.links.Scene(s),
			Active: s == b.narrative,
		})
	}

	narrative := make([]plotpage.Section, 0, len(scene.All()))

	for _, s := range scene.All() {
		n := b.story.Narrative(s)
		section := plotpage.Section{
			ID:     "text-" + s.ID(),
			Title:  n.Heading,
			Text:   n.Text,
			Hidden: s != b.narrative,
		}

		if s == scene.Overview && b.story.Hint != "" {
			section.Hint = plotpage.Hint{Items: []string{b.story.Hint}}
		}

		narrative = append(narrative, section)
	}

	page.Add("narrative", narrative...)

	if len(b.annotations) > 0 {
		page.Add("annotations", b.annotationSection())
	}

	if chart, ok := b.charts[SurfaceMain]; ok {
		page.Add("chart", plotpage.Section{ID: string(SurfaceMain), Chart: chart})
	}

	var comparison []plotpage.Section

	for _, s := range []Surface{SurfaceDevelopers, SurfacePublishers} {
		if chart, ok := b.charts[s]; ok {
			comparison = append(comparison, plotpage.Section{ID: string(s), Chart: chart})
		}
	}

	if len(comparison) > 0 {
		page.Add("comparison", comparison...)
	}

	return page
}

func (b *Board) annotationSection() plotpage.Section {
	section := plotpage.Section{ID: "annotations", Hint: plotpage.Hint{Title: "Also on the timeline"}}

	for _, m := range b.annotations {
		href := ""
		if m.Target != nil {
			href = b.links.Annotation(m.Year)
		}

		if href == "" {
			section.Hint.Items = append(section.Hint.Items, strconv.Itoa(m.Year)+": "+m.Label)

			continue
		}

		section.Links = append(section.Links, plotpage.Link{
			Label: strconv.Itoa(m.Year) + ": " + m.Label,
			Href:  href,
		})
	}

	return section
}
