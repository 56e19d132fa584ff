package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
	"github.com/Sumatoshi-tech/gamestory/pkg/story"
)

// Tool name constants.
const (
	ToolNameYearCounts   = "gamestory_year_counts"
	ToolNameCompareYears = "gamestory_compare_years"
	ToolNameNavigate     = "gamestory_navigate"
)

// MaxNavigateActions bounds the number of actions replayed in one call.
const MaxNavigateActions = 64

// Sentinel errors for tool input validation.
var (
	// ErrInvalidYear indicates a year parameter is missing or not positive.
	ErrInvalidYear = errors.New("year must be a positive integer")
	// ErrInvalidRange indicates from is after to.
	ErrInvalidRange = errors.New("from must not be after to")
	// ErrTooManyActions indicates the navigate input exceeds MaxNavigateActions.
	ErrTooManyActions = errors.New("too many navigation actions")
)

// YearCountsInput is the input schema for the gamestory_year_counts tool.
type YearCountsInput struct {
	From int `json:"from,omitempty" jsonschema:"optional first year to include"`
	To   int `json:"to,omitempty"   jsonschema:"optional last year to include"`
}

// CompareYearsInput is the input schema for the gamestory_compare_years tool.
type CompareYearsInput struct {
	YearA int `json:"year_a" jsonschema:"first year of the comparison window"`
	YearB int `json:"year_b" jsonschema:"second year of the comparison window"`
}

// NavigateInput is the input schema for the gamestory_navigate tool.
type NavigateInput struct {
	Actions []string `json:"actions,omitempty" jsonschema:"actions applied in order after the overview is entered (scene:<id> or annotation:<year>)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// YearCountsResult is the payload of gamestory_year_counts.
type YearCountsResult struct {
	Counts  []aggregate.YearCount `json:"counts"`
	Summary aggregate.Summary     `json:"summary"`
}

// CompareYearsResult is the payload of gamestory_compare_years.
type CompareYearsResult struct {
	Comparison aggregate.Comparison  `json:"comparison"`
	Developers []aggregate.YearValue `json:"developers"`
	Publishers []aggregate.YearValue `json:"publishers"`
}

// NavigateStep is one applied action and the scene it left active.
type NavigateStep struct {
	Action  string       `json:"action"`
	From    scene.Scene  `json:"from"`
	To      scene.Scene  `json:"to"`
	Heading string       `json:"heading,omitempty"`
	Frame   *scene.Frame `json:"frame,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// NavigateResult is the payload of gamestory_navigate.
type NavigateResult struct {
	Steps []NavigateStep  `json:"steps"`
	Final scene.Scene     `json:"final"`
	Board render.Snapshot `json:"board"`
}

type toolset struct {
	records []dataset.GameRecord
	story   *story.Story
	logger  *slog.Logger
	tracer  trace.Tracer
}

func (ts *toolset) handleYearCounts(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input YearCountsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.From < 0 || input.To < 0 {
		return errorResult(ErrInvalidYear)
	}

	if input.From > 0 && input.To > 0 && input.From > input.To {
		return errorResult(fmt.Errorf("%w: %d > %d", ErrInvalidRange, input.From, input.To))
	}

	counts := aggregate.YearCountsContext(ctx, ts.records)
	result := YearCountsResult{
		Counts:  make([]aggregate.YearCount, 0, len(counts)),
		Summary: aggregate.SummarizeCounts(len(ts.records), counts),
	}

	for _, yc := range counts {
		if input.From > 0 && yc.Year < input.From {
			continue
		}

		if input.To > 0 && yc.Year > input.To {
			continue
		}

		result.Counts = append(result.Counts, yc)
	}

	return jsonResult(result)
}

func (ts *toolset) handleCompareYears(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CompareYearsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.YearA <= 0 || input.YearB <= 0 {
		return errorResult(fmt.Errorf("%w: year_a=%d year_b=%d", ErrInvalidYear, input.YearA, input.YearB))
	}

	cmp := aggregate.CompareYearsContext(ctx, ts.records, input.YearA, input.YearB)

	return jsonResult(CompareYearsResult{
		Comparison: cmp,
		Developers: cmp.Developers(),
		Publishers: cmp.Publishers(),
	})
}

// handleNavigate replays actions on a fresh navigator. An action that fails
// to parse or apply is reported on its step and leaves the scene unchanged.
func (ts *toolset) handleNavigate(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input NavigateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Actions) > MaxNavigateActions {
		return errorResult(fmt.Errorf("%w: %d (max %d)", ErrTooManyActions, len(input.Actions), MaxNavigateActions))
	}

	board := render.NewBoard(ts.story, render.WithLogger(ts.logger))
	nav := scene.NewNavigator(ts.records, board, board,
		scene.WithLogger(ts.logger),
		scene.WithTracer(ts.tracer),
		scene.WithAnnotationLabels(ts.story.AnnotationLabels()),
	)

	result := NavigateResult{Steps: make([]NavigateStep, 0, len(input.Actions)+1)}

	frame, err := nav.Start(ctx)
	result.Steps = append(result.Steps, ts.step(scene.Select(scene.Overview).String(), scene.Overview, nav.Current(), frame, err))

	for _, raw := range input.Actions {
		from := nav.Current()

		action, parseErr := scene.ParseAction(raw)
		if parseErr != nil {
			result.Steps = append(result.Steps, ts.step(raw, from, from, scene.Frame{}, parseErr))

			continue
		}

		frame, err = nav.Dispatch(ctx, action)
		result.Steps = append(result.Steps, ts.step(action.String(), from, nav.Current(), frame, err))
	}

	result.Final = nav.Current()
	result.Board = board.Snapshot()

	return jsonResult(result)
}

func (ts *toolset) step(action string, from, to scene.Scene, frame scene.Frame, err error) NavigateStep {
	st := NavigateStep{Action: action, From: from, To: to, Heading: ts.story.Narrative(to).Heading}

	if err != nil {
		st.Error = err.Error()

		return st
	}

	st.Frame = &frame

	return st
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
