// Package mcp implements a Model Context Protocol server exposing the release
// aggregations and the scene navigator as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/story"
	"github.com/Sumatoshi-tech/gamestory/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "gamestory"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Records is the loaded dataset every tool aggregates over.
	Records []dataset.GameRecord

	// Story supplies narrative and marker labels. Nil uses the embedded story.
	Story *story.Story

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the gamestory tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	toolset *toolset
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	st := deps.Story
	if st == nil {
		def, err := story.Default()
		if err != nil {
			return nil, fmt.Errorf("mcp server: %w", err)
		}

		st = def
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := &mcpsdk.ServerOptions{Logger: logger}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		toolset: &toolset{
			records: deps.Records,
			story:   st,
			logger:  logger.With(slog.String("module", "mcp")),
			tracer:  deps.Tracer,
		},
	}

	srv.registerTools()

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(slices.Values(s.tools))
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameYearCounts,
		Description: yearCountsToolDescription,
	}, withMetrics(s.metrics, ToolNameYearCounts, withTracing(s.tracer, ToolNameYearCounts, s.toolset.handleYearCounts)))
	s.trackTool(ToolNameYearCounts)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCompareYears,
		Description: compareYearsToolDescription,
	}, withMetrics(s.metrics, ToolNameCompareYears, withTracing(s.tracer, ToolNameCompareYears, s.toolset.handleCompareYears)))
	s.trackTool(ToolNameCompareYears)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameNavigate,
		Description: navigateToolDescription,
	}, withMetrics(s.metrics, ToolNameNavigate, withTracing(s.tracer, ToolNameNavigate, s.toolset.handleNavigate)))
	s.trackTool(ToolNameNavigate)
}

// mcpSpanPrefix is the prefix for MCP tool span and metric operation names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps a tool handler in a span per invocation and appends the
// trace_id to the response when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	yearCountsToolDescription = "Count video game releases per year. " +
		"Undated or unparseable records are excluded. Optional from/to bound the years returned."

	compareYearsToolDescription = "Compare two years by distinct developer and publisher counts. " +
		"Names are compared as exact strings."

	navigateToolDescription = "Replay navigation actions (scene:<id> or annotation:<year>) " +
		"against the scene state machine, starting from the overview, and return each transition."
)
