package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
)

const sampleCSV = `AppID,Name,Release date,Price,Developers,Publishers
10,Counter-Strike,"Nov 1, 2000",9.99,Valve,Valve
20,Indie Thing,"Mar 3, 2014",0,  Tiny Studio  ,
30,Broken Date,Coming soon,4.99,,Someone
`

func TestLoad_ParsesCoreAndExtraFields(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Load(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	first := ds.Records[0]
	assert.Equal(t, "Counter-Strike", first.Title)
	assert.Equal(t, "Nov 1, 2000", first.ReleaseDateRaw)
	assert.Equal(t, "Valve", first.Developer)
	assert.Equal(t, "Valve", first.Publisher)
	assert.Equal(t, "10", first.Extra["AppID"])
	assert.Equal(t, "9.99", first.Extra["Price"])
	assert.NotContains(t, first.Extra, "Name")

	second := ds.Records[1]
	assert.Equal(t, "Tiny Studio", second.Developer)
	assert.Empty(t, second.Publisher)

	third := ds.Records[2]
	assert.Equal(t, "Coming soon", third.ReleaseDateRaw)
	assert.Empty(t, third.Developer)

	assert.Equal(t, 3, ds.Stats.Rows)
	assert.Zero(t, ds.Stats.MalformedRows)
	assert.Empty(t, ds.Stats.MissingColumns)
}

func TestLoad_ShortRowsLeaveFieldsAbsent(t *testing.T) {
	t.Parallel()

	input := "Name,Release date,Developers,Publishers\nOnly Title,\"Jan 5, 2019\"\n"

	ds, err := dataset.Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	rec := ds.Records[0]
	assert.Equal(t, "Only Title", rec.Title)
	assert.Equal(t, "Jan 5, 2019", rec.ReleaseDateRaw)
	assert.Empty(t, rec.Developer)
	assert.Empty(t, rec.Publisher)
}

func TestLoad_MalformedRowKeepsNeighbours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bad  string
	}{
		{name: "text after closing quote", bad: `"B"x,Jun 1 2014,Y,Q`},
		{name: "bare quote", bad: `B"x,"Jun 1, 2014",Y,Q`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := "Name,Release date,Developers,Publishers\n" +
				"A,\"Mar 3, 2014\",X,P\n" +
				tt.bad + "\n" +
				"C,\"Jun 1, 2014\",Z,R\n"

			ds, err := dataset.Load(context.Background(), strings.NewReader(input))
			require.NoError(t, err)
			require.Equal(t, 3, ds.Len())

			assert.Equal(t, 3, ds.Stats.Rows)
			assert.Equal(t, 1, ds.Stats.MalformedRows)

			first := ds.Records[0]
			assert.Equal(t, "A", first.Title)
			assert.Equal(t, "Mar 3, 2014", first.ReleaseDateRaw)
			assert.Equal(t, "X", first.Developer)
			assert.Equal(t, "P", first.Publisher)

			assert.Equal(t, dataset.GameRecord{}, ds.Records[1])

			last := ds.Records[2]
			assert.Equal(t, "C", last.Title)
			assert.Equal(t, "Jun 1, 2014", last.ReleaseDateRaw)
			assert.Equal(t, "Z", last.Developer)
			assert.Equal(t, "R", last.Publisher)

			assert.Equal(t, []aggregate.YearCount{{Year: 2014, Count: 2}}, aggregate.YearCounts(ds.Records))
		})
	}
}

func TestLoad_MissingColumnsAreReported(t *testing.T) {
	t.Parallel()

	input := "Name,Release date\nA,\"Jan 5, 2019\"\n"

	ds, err := dataset.Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{dataset.DefaultDevelopersColumn, dataset.DefaultPublishersColumn}, ds.Stats.MissingColumns)
	assert.Empty(t, ds.Records[0].Developer)
}

func TestLoad_StripsByteOrderMark(t *testing.T) {
	t.Parallel()

	input := "\ufeffName,Release date,Developers,Publishers\nA,\"Jan 5, 2019\",D,P\n"

	ds, err := dataset.Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "A", ds.Records[0].Title)
	assert.Empty(t, ds.Stats.MissingColumns)
}

func TestLoad_CustomColumns(t *testing.T) {
	t.Parallel()

	input := "title,released,dev,pub\nA,\"Jan 5, 2019\",D,P\n"
	cols := dataset.Columns{Title: "title", ReleaseDate: "released", Developers: "dev", Publishers: "pub"}

	ds, err := dataset.Load(context.Background(), strings.NewReader(input), dataset.WithColumns(cols))
	require.NoError(t, err)

	rec := ds.Records[0]
	assert.Equal(t, "A", rec.Title)
	assert.Equal(t, "Jan 5, 2019", rec.ReleaseDateRaw)
	assert.Equal(t, "D", rec.Developer)
	assert.Equal(t, "P", rec.Publisher)
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := dataset.Load(context.Background(), strings.NewReader(""))
	require.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	ds, err := dataset.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := dataset.Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
