package scene

import (
	"context"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
)

// Frame is the aggregation handed to the renderer when a scene is entered.
// Overview frames carry Counts and Annotations; comparison frames carry Window
// and the two parallel series.
type Frame struct {
	Scene       Scene                 `json:"scene"`
	Counts      []aggregate.YearCount `json:"counts,omitempty"`
	Annotations []Annotation          `json:"annotations,omitempty"`
	Window      *Window               `json:"window,omitempty"`
	Developers  []aggregate.YearValue `json:"developers,omitempty"`
	Publishers  []aggregate.YearValue `json:"publishers,omitempty"`
}

// Compute runs the aggregation appropriate to s: year counts for Overview,
// the fixed year-pair comparison otherwise.
func Compute(ctx context.Context, records []dataset.GameRecord, s Scene, labels map[int]string) (Frame, error) {
	if !s.Valid() {
		return Frame{}, ErrUnknownScene
	}

	frame := Frame{Scene: s}

	window, ok := s.Window()
	if !ok {
		frame.Counts = aggregate.YearCountsContext(ctx, records)
		frame.Annotations = OverviewAnnotations(frame.Counts, labels)

		return frame, nil
	}

	cmp := aggregate.CompareYearsContext(ctx, records, window.A, window.B)
	frame.Window = &window
	frame.Developers = cmp.Developers()
	frame.Publishers = cmp.Publishers()

	return frame, nil
}
