package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

const (
	navigateCmdUse   = "navigate [games.csv] [action...]"
	navigateCmdShort = "Replay navigation actions from the overview and print each transition"
	navigateJSON     = "print transitions as JSON"
)

// ErrRejectedActions is returned when at least one action was rejected.
var ErrRejectedActions = errors.New("navigation actions rejected")

type navigateOptions struct {
	*rootOptions

	json    bool
	noColor bool
}

// transition is one applied action and the scene it left active.
type transition struct {
	Action  string       `json:"action"`
	From    scene.Scene  `json:"from"`
	To      scene.Scene  `json:"to"`
	Heading string       `json:"heading,omitempty"`
	Frame   *scene.Frame `json:"frame,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type navigateReport struct {
	Transitions []transition    `json:"transitions"`
	Final       scene.Scene     `json:"final"`
	Board       render.Snapshot `json:"board"`
}

func newNavigateCommand(root *rootOptions) *cobra.Command {
	opts := &navigateOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   navigateCmdUse,
		Short: navigateCmdShort,
		Long: `Navigate enters the overview, then applies each action in order.
Actions are scene:<id> (overview, 2013-2014, 2018-2019, 2023-2024) or
annotation:<year> for an overview marker click. A rejected action
leaves the current scene unchanged.`,
		Example: `  gamestory navigate games.csv annotation:2019 scene:overview
  gamestory navigate --json games.csv scene:2013-2014`,
		RunE: opts.run,
	}

	cmd.Flags().BoolVar(&opts.json, jsonFlag, false, navigateJSON)
	cmd.Flags().BoolVar(&opts.noColor, noColorFlag, false, noColorUsage)

	return cmd
}

// splitNavigateArgs separates the optional dataset path from the actions.
func splitNavigateArgs(args []string) (datasetArgs, actions []string) {
	if len(args) > 0 && !isActionArg(args[0]) {
		return args[:1], args[1:]
	}

	return nil, args
}

func isActionArg(arg string) bool {
	kind, _, ok := strings.Cut(arg, ":")

	return ok && (strings.EqualFold(kind, "scene") || strings.EqualFold(kind, "annotation"))
}

func (o *navigateOptions) run(cmd *cobra.Command, args []string) error {
	datasetArgs, actions := splitNavigateArgs(args)

	sess, err := o.openSession(cmd, observability.ModeCLI, datasetArgs)
	if err != nil {
		return err
	}
	defer sess.close(cmd.Context())

	ctx := cmd.Context()
	board := render.NewBoard(sess.story, render.WithLogger(sess.logger))
	nav := scene.NewNavigator(sess.records(), board, board,
		scene.WithLogger(sess.logger),
		scene.WithTracer(sess.providers.Tracer),
		scene.WithAnnotationLabels(sess.story.AnnotationLabels()),
	)

	report := navigateReport{Transitions: make([]transition, 0, len(actions)+1)}
	record := func(action string, from scene.Scene, frame scene.Frame, err error) {
		to := nav.Current()
		tr := transition{Action: action, From: from, To: to, Heading: sess.story.Narrative(to).Heading}

		if err != nil {
			tr.Error = err.Error()
		} else {
			tr.Frame = &frame
		}

		report.Transitions = append(report.Transitions, tr)
	}

	frame, err := nav.Start(ctx)
	record(scene.Select(scene.Overview).String(), scene.Overview, frame, err)

	rejected := 0

	for _, raw := range actions {
		from := nav.Current()

		action, parseErr := scene.ParseAction(raw)
		if parseErr != nil {
			rejected++

			record(raw, from, scene.Frame{}, parseErr)

			continue
		}

		frame, err = nav.Dispatch(ctx, action)
		if err != nil {
			rejected++
		}

		record(action.String(), from, frame, err)
	}

	report.Final = nav.Current()
	report.Board = board.Snapshot()

	if o.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		err = enc.Encode(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		writeTransitions(cmd.OutOrStdout(), newPalette(o.noColor), report)
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRejectedActions, rejected, len(actions))
	}

	return nil
}

func writeTransitions(out io.Writer, pal palette, report navigateReport) {
	for _, tr := range report.Transitions {
		if tr.Error != "" {
			fmt.Fprintf(out, "%s  %s\n", tr.Action, pal.down.Sprint("rejected: "+tr.Error))

			continue
		}

		fmt.Fprintf(out, "%s  %s -> %s  %s\n", tr.Action, tr.From, pal.title.Sprint(tr.To.ID()), tr.Heading)
		writeFrame(out, *tr.Frame)
	}

	fmt.Fprintf(out, "final: %s\n", report.Final)
}

func writeFrame(out io.Writer, frame scene.Frame) {
	if frame.Window == nil {
		total := 0
		for _, yc := range frame.Counts {
			total += yc.Count
		}

		if len(frame.Counts) > 0 {
			fmt.Fprintf(out, "    years %d-%d, %s games\n",
				frame.Counts[0].Year, frame.Counts[len(frame.Counts)-1].Year, humanize.Comma(int64(total)))
		}

		for _, mark := range frame.Annotations {
			target := ""
			if mark.Target != nil {
				target = " -> " + mark.Target.ID()
			}

			fmt.Fprintf(out, "    marker %d %q (%s)%s\n", mark.Year, mark.Label, humanize.Comma(int64(mark.Count)), target)
		}

		return
	}

	fmt.Fprintf(out, "    developers %s\n", formatSeries(frame.Developers))
	fmt.Fprintf(out, "    publishers %s\n", formatSeries(frame.Publishers))
}

func formatSeries(series []aggregate.YearValue) string {
	parts := make([]string, 0, len(series))
	for _, yv := range series {
		parts = append(parts, fmt.Sprintf("%d=%s", yv.Year, humanize.Comma(int64(yv.Value))))
	}

	return strings.Join(parts, " ")
}
