// Package aggregate derives the per-year series shown by each scene from the
// loaded records. Every function is pure: the same records always produce the
// same output, regardless of record order.
package aggregate

import (
	"context"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/releasedate"
)

const tracerName = "gamestory/aggregate"

// YearCount is the number of releases in one year. Count is always at least 1;
// years without releases are absent.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// YearComparison holds distinct developer and publisher counts for one year of
// a two-year window. Zero is valid when the year has no releases.
type YearComparison struct {
	Year               int `json:"year"`
	DistinctDevelopers int `json:"distinctDevelopers"`
	DistinctPublishers int `json:"distinctPublishers"`
}

// YearValue is one bar of a comparison chart.
type YearValue struct {
	Year  int `json:"year"`
	Value int `json:"value"`
}

// Comparison is the result for a window, always ordered [A, B].
type Comparison [2]YearComparison

// Developers returns the developer series in window order.
func (c Comparison) Developers() []YearValue {
	return []YearValue{
		{Year: c[0].Year, Value: c[0].DistinctDevelopers},
		{Year: c[1].Year, Value: c[1].DistinctDevelopers},
	}
}

// Publishers returns the publisher series in window order.
func (c Comparison) Publishers() []YearValue {
	return []YearValue{
		{Year: c[0].Year, Value: c[0].DistinctPublishers},
		{Year: c[1].Year, Value: c[1].DistinctPublishers},
	}
}

// YearCounts counts releases per year, skipping records whose release date
// does not parse. The result is sorted ascending by year.
func YearCounts(records []dataset.GameRecord) []YearCount {
	perYear := make(map[int]int)

	for i := range records {
		year, ok := releasedate.Year(records[i].ReleaseDateRaw)
		if !ok {
			continue
		}

		perYear[year]++
	}

	years := slices.Sorted(maps.Keys(perYear))
	counts := make([]YearCount, len(years))

	for i, year := range years {
		counts[i] = YearCount{Year: year, Count: perYear[year]}
	}

	return counts
}

// CompareYears counts distinct non-empty developer and publisher names for
// yearA and yearB. Field values are compared as opaque strings, so a
// comma-joined list of studios counts as one name.
func CompareYears(records []dataset.GameRecord, yearA, yearB int) Comparison {
	developers := map[int]map[string]struct{}{yearA: {}, yearB: {}}
	publishers := map[int]map[string]struct{}{yearA: {}, yearB: {}}

	for i := range records {
		rec := &records[i]

		year, ok := releasedate.Year(rec.ReleaseDateRaw)
		if !ok || (year != yearA && year != yearB) {
			continue
		}

		if rec.Developer != "" {
			developers[year][rec.Developer] = struct{}{}
		}

		if rec.Publisher != "" {
			publishers[year][rec.Publisher] = struct{}{}
		}
	}

	return Comparison{
		{Year: yearA, DistinctDevelopers: len(developers[yearA]), DistinctPublishers: len(publishers[yearA])},
		{Year: yearB, DistinctDevelopers: len(developers[yearB]), DistinctPublishers: len(publishers[yearB])},
	}
}

// YearCountsContext is YearCounts wrapped in a trace span.
func YearCountsContext(ctx context.Context, records []dataset.GameRecord) []YearCount {
	_, span := otel.Tracer(tracerName).Start(ctx, "aggregate.year_counts")
	defer span.End()

	counts := YearCounts(records)
	span.SetAttributes(attribute.Int("aggregate.years", len(counts)))

	return counts
}

// CompareYearsContext is CompareYears wrapped in a trace span.
func CompareYearsContext(ctx context.Context, records []dataset.GameRecord, yearA, yearB int) Comparison {
	_, span := otel.Tracer(tracerName).Start(ctx, "aggregate.compare_years")
	defer span.End()

	span.SetAttributes(attribute.Int("aggregate.year_a", yearA), attribute.Int("aggregate.year_b", yearB))

	return CompareYears(records, yearA, yearB)
}
