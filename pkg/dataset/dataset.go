// Package dataset loads the tabular game release dataset into immutable records.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Default column names of the source dataset.
const (
	DefaultTitleColumn       = "Name"
	DefaultReleaseDateColumn = "Release date"
	DefaultDevelopersColumn  = "Developers"
	DefaultPublishersColumn  = "Publishers"
)

const (
	tracerName = "gamestory/dataset"
	byteOrder  = "\ufeff"
)

// ErrEmptyDataset is returned when the input has no header row.
var ErrEmptyDataset = errors.New("dataset has no header row")

// Columns maps record fields to header names in the source file.
type Columns struct {
	Title       string
	ReleaseDate string
	Developers  string
	Publishers  string
}

// DefaultColumns returns the column names used by the published dataset.
func DefaultColumns() Columns {
	return Columns{
		Title:       DefaultTitleColumn,
		ReleaseDate: DefaultReleaseDateColumn,
		Developers:  DefaultDevelopersColumn,
		Publishers:  DefaultPublishersColumn,
	}
}

// GameRecord is one row of the dataset. Records are never mutated after load.
type GameRecord struct {
	Title          string
	ReleaseDateRaw string
	Developer      string
	Publisher      string

	// Extra holds every other column of the row, keyed by header name.
	Extra map[string]string
}

// Stats describes what happened while loading.
type Stats struct {
	Rows           int
	MalformedRows  int
	MissingColumns []string
}

// Dataset is the in-memory record set shared read-only by every aggregation.
type Dataset struct {
	Records []GameRecord
	Stats   Stats
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.Records)
}

// Option configures Load.
type Option func(*loader)

// WithColumns overrides the header names.
func WithColumns(cols Columns) Option {
	return func(l *loader) {
		l.cols = cols
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

type loader struct {
	cols   Columns
	logger *slog.Logger
}

// Open loads the dataset stored at path.
func Open(ctx context.Context, path string, options ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	l := newLoader(options)

	info, statErr := f.Stat()
	if statErr == nil {
		l.logger.InfoContext(ctx, "loading dataset",
			slog.String("path", path),
			slog.String("size", humanize.Bytes(uint64(max(info.Size(), 0)))),
		)
	}

	ds, err := l.run(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return ds, nil
}

// Load reads CSV from r. Rows that fail to parse do not abort the load; they
// become records with every field absent.
func Load(ctx context.Context, r io.Reader, options ...Option) (*Dataset, error) {
	return newLoader(options).run(ctx, r)
}

func (l *loader) run(ctx context.Context, r io.Reader) (*Dataset, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "dataset.load")
	defer span.End()

	ds, err := l.load(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("dataset.rows", ds.Stats.Rows),
		attribute.Int("dataset.malformed_rows", ds.Stats.MalformedRows),
	)

	if len(ds.Stats.MissingColumns) > 0 {
		l.logger.WarnContext(ctx, "dataset is missing columns",
			slog.Any("columns", ds.Stats.MissingColumns))
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("rows", humanize.Comma(int64(ds.Stats.Rows))),
		slog.Int("malformed_rows", ds.Stats.MalformedRows),
	)

	return ds, nil
}

func newLoader(options []Option) *loader {
	l := &loader{
		cols:   DefaultColumns(),
		logger: slog.Default().With(slog.String("module", "dataset")),
	}

	for _, opt := range options {
		opt(l)
	}

	return l
}

func (l *loader) load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	layout := newHeaderLayout(header, l.cols)
	ds := &Dataset{
		Records: make([]GameRecord, 0),
		Stats:   Stats{MissingColumns: layout.missing},
	}

	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(readErr, &parseErr) {
			ds.Stats.Rows++
			ds.Stats.MalformedRows++
			ds.Records = append(ds.Records, GameRecord{})

			continue
		}

		if readErr != nil {
			return nil, fmt.Errorf("read row %d: %w", ds.Stats.Rows+1, readErr)
		}

		ds.Stats.Rows++
		ds.Records = append(ds.Records, layout.record(row))
	}

	return ds, nil
}

// headerLayout resolves column positions once per file.
type headerLayout struct {
	names       []string
	title       int
	releaseDate int
	developers  int
	publishers  int
	missing     []string
}

func newHeaderLayout(header []string, cols Columns) headerLayout {
	names := make([]string, len(header))
	index := make(map[string]int, len(header))

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrder)
		}

		name = strings.TrimSpace(name)
		names[i] = name

		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	layout := headerLayout{names: names}

	lookup := func(name string) int {
		pos, ok := index[name]
		if !ok {
			layout.missing = append(layout.missing, name)

			return -1
		}

		return pos
	}

	layout.title = lookup(cols.Title)
	layout.releaseDate = lookup(cols.ReleaseDate)
	layout.developers = lookup(cols.Developers)
	layout.publishers = lookup(cols.Publishers)

	return layout
}

func (h headerLayout) record(row []string) GameRecord {
	rec := GameRecord{
		Title:          field(row, h.title),
		ReleaseDateRaw: field(row, h.releaseDate),
		Developer:      strings.TrimSpace(field(row, h.developers)),
		Publisher:      strings.TrimSpace(field(row, h.publishers)),
	}

	for i, value := range row {
		if i >= len(h.names) || h.isCore(i) {
			continue
		}

		if rec.Extra == nil {
			rec.Extra = make(map[string]string, len(h.names))
		}

		rec.Extra[h.names[i]] = value
	}

	return rec
}

func (h headerLayout) isCore(pos int) bool {
	return pos == h.title || pos == h.releaseDate || pos == h.developers || pos == h.publishers
}

// field returns the value at pos, or "" when the column is absent or the row is short.
func field(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}

	return row[pos]
}
