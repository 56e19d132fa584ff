package aggregate

import "github.com/Sumatoshi-tech/gamestory/pkg/dataset"

// Summary describes the dataset as a whole.
type Summary struct {
	Records   int `json:"records"`
	Dated     int `json:"dated"`
	Undated   int `json:"undated"`
	FirstYear int `json:"firstYear,omitempty"`
	LastYear  int `json:"lastYear,omitempty"`
	PeakYear  int `json:"peakYear,omitempty"`
	PeakCount int `json:"peakCount,omitempty"`
}

// Summarize computes the summary from a record set.
func Summarize(records []dataset.GameRecord) Summary {
	return SummarizeCounts(len(records), YearCounts(records))
}

// SummarizeCounts computes the summary from an already aggregated series.
// Ties for the peak resolve to the earliest year.
func SummarizeCounts(records int, counts []YearCount) Summary {
	summary := Summary{Records: records}

	for _, yc := range counts {
		summary.Dated += yc.Count

		if yc.Count > summary.PeakCount {
			summary.PeakYear = yc.Year
			summary.PeakCount = yc.Count
		}
	}

	summary.Undated = records - summary.Dated

	if len(counts) > 0 {
		summary.FirstYear = counts[0].Year
		summary.LastYear = counts[len(counts)-1].Year
	}

	return summary
}
