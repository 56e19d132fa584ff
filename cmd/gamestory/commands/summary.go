package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

const (
	summaryCmdUse   = "summary [games.csv]"
	summaryCmdShort = "Print release counts and year-pair comparisons as tables"
	noColorUsage    = "disable colored output"
)

type summaryOptions struct {
	*rootOptions

	noColor bool
}

func newSummaryCommand(root *rootOptions) *cobra.Command {
	opts := &summaryOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   summaryCmdUse,
		Short: summaryCmdShort,
		Args:  cobra.MaximumNArgs(maxDatasetArgs),
		RunE:  opts.run,
	}

	cmd.Flags().BoolVar(&opts.noColor, noColorFlag, false, noColorUsage)

	return cmd
}

func (o *summaryOptions) run(cmd *cobra.Command, args []string) error {
	sess, err := o.openSession(cmd, observability.ModeCLI, args)
	if err != nil {
		return err
	}
	defer sess.close(cmd.Context())

	pal := newPalette(o.noColor)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	records := sess.records()

	counts := aggregate.YearCountsContext(ctx, records)

	writeDatasetTable(out, pal, sess.data.Stats, aggregate.SummarizeCounts(len(records), counts))
	writeYearCountsTable(out, pal, counts)

	comparisons := make([]aggregate.Comparison, 0, len(scene.All()))

	for _, sc := range scene.All() {
		window, ok := sc.Window()
		if !ok {
			continue
		}

		comparisons = append(comparisons, aggregate.CompareYearsContext(ctx, records, window.A, window.B))
	}

	writeComparisonTable(out, pal, comparisons)

	return nil
}

// palette colors terminal output. Disabled colors print plain text.
type palette struct {
	title *color.Color
	up    *color.Color
	down  *color.Color
}

func newPalette(noColor bool) palette {
	pal := palette{
		title: color.New(color.FgCyan, color.Bold),
		up:    color.New(color.FgGreen),
		down:  color.New(color.FgRed),
	}

	if noColor {
		pal.title.DisableColor()
		pal.up.DisableColor()
		pal.down.DisableColor()
	}

	return pal
}

func newTable(out io.Writer, pal palette, title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(pal.title.Sprint(title))

	return tbl
}

func writeDatasetTable(out io.Writer, pal palette, stats dataset.Stats, summary aggregate.Summary) {
	tbl := newTable(out, pal, "Dataset")

	tbl.AppendRows([]table.Row{
		{"Records", humanize.Comma(int64(summary.Records))},
		{"Dated", humanize.Comma(int64(summary.Dated))},
		{"Undated", humanize.Comma(int64(summary.Undated))},
		{"Malformed rows", humanize.Comma(int64(stats.MalformedRows))},
	})

	if summary.Dated > 0 {
		tbl.AppendRows([]table.Row{
			{"Years", fmt.Sprintf("%d-%d", summary.FirstYear, summary.LastYear)},
			{"Peak year", fmt.Sprintf("%d (%s games)", summary.PeakYear, humanize.Comma(int64(summary.PeakCount)))},
		})
	}

	tbl.Render()
}

func writeYearCountsTable(out io.Writer, pal palette, counts []aggregate.YearCount) {
	tbl := newTable(out, pal, "Releases per year")
	tbl.AppendHeader(table.Row{"Year", "Games", "Change"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	total := 0

	for i, yc := range counts {
		total += yc.Count

		change := ""
		if i > 0 {
			change = formatChange(pal, yc.Count-counts[i-1].Count)
		}

		tbl.AppendRow(table.Row{yc.Year, humanize.Comma(int64(yc.Count)), change})
	}

	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(total)), ""})
	tbl.Render()
}

func formatChange(pal palette, delta int) string {
	switch {
	case delta > 0:
		return pal.up.Sprint("+" + humanize.Comma(int64(delta)))
	case delta < 0:
		return pal.down.Sprint(humanize.Comma(int64(delta)))
	default:
		return "0"
	}
}

func writeComparisonTable(out io.Writer, pal palette, comparisons []aggregate.Comparison) {
	tbl := newTable(out, pal, "Year-pair comparisons")
	tbl.AppendHeader(table.Row{"Window", "Year", "Developers", "Publishers"})

	for _, cmp := range comparisons {
		window := scene.Window{A: cmp[0].Year, B: cmp[1].Year}

		for _, yc := range cmp {
			tbl.AppendRow(table.Row{
				window.String(),
				yc.Year,
				humanize.Comma(int64(yc.DistinctDevelopers)),
				humanize.Comma(int64(yc.DistinctPublishers)),
			})
		}

		tbl.AppendSeparator()
	}

	tbl.Render()
}
