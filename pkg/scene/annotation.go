package scene

import (
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
)

// Annotation is a labelled marker on the overview line chart.
type Annotation struct {
	Year  int    `json:"year"`
	Count int    `json:"count"`
	Label string `json:"label"`

	// Target is the scene a click navigates to; nil for informational markers.
	Target *Scene `json:"target,omitempty"`
}

// Action returns the click action for a navigable marker.
func (a Annotation) Action() (Action, bool) {
	if a.Target == nil {
		return Action{}, false
	}

	return AnnotationClick(a.Year), true
}

// DefaultAnnotationLabels are the notable years called out on the overview.
func DefaultAnnotationLabels() map[int]string {
	return map[int]string{
		2003: "Steam Launch",
		2014: "Start of the Surge",
		2019: "Slight Drop",
		2024: "All-time Peak",
		2025: "Data Incomplete",
	}
}

// OverviewAnnotations places a marker for every labelled year present in
// counts, ordered by year. Years absent from the series get no marker.
func OverviewAnnotations(counts []aggregate.YearCount, labels map[int]string) []Annotation {
	byYear := make(map[int]int, len(counts))
	for _, yc := range counts {
		byYear[yc.Year] = yc.Count
	}

	marks := make([]Annotation, 0, len(labels))

	for _, year := range slices.Sorted(maps.Keys(labels)) {
		count, ok := byYear[year]
		if !ok {
			continue
		}

		mark := Annotation{Year: year, Count: count, Label: labels[year]}

		if target, navigable := AnnotationTarget(year); navigable {
			mark.Target = &target
		}

		marks = append(marks, mark)
	}

	return marks
}
