package render

import (
	"strconv"

	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

// Links maps navigation actions to hrefs.
type Links interface {
	Scene(s scene.Scene) string
	Annotation(year int) string
}

// FileLinks points at sibling <scene>.html files, as written by the render command.
type FileLinks struct{}

// Scene returns the page file of s.
func (FileLinks) Scene(s scene.Scene) string {
	return s.ID() + ".html"
}

// Annotation returns the page file of the marker's target scene, or "" for
// informational markers.
func (l FileLinks) Annotation(year int) string {
	target, ok := scene.AnnotationTarget(year)
	if !ok {
		return ""
	}

	return l.Scene(target)
}

// RouteLinks points at the HTTP routes of the story server.
type RouteLinks struct {
	Prefix string
}

// Scene returns the route that selects s.
func (l RouteLinks) Scene(s scene.Scene) string {
	return l.Prefix + "/scene/" + s.ID()
}

// Annotation returns the route that clicks the marker for year, or "" for
// informational markers.
func (l RouteLinks) Annotation(year int) string {
	if _, ok := scene.AnnotationTarget(year); !ok {
		return ""
	}

	return l.Prefix + "/annotation/" + strconv.Itoa(year)
}
