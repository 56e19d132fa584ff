package releasedate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gamestory/pkg/releasedate"
)

func TestYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "canonical", raw: "Mar 3, 2014", want: 2014, wantOK: true},
		{name: "zero padded day", raw: "Oct 09, 2008", want: 2008, wantOK: true},
		{name: "no space after comma", raw: "Mar 3,2014", want: 2014, wantOK: true},
		{name: "extra whitespace", raw: "  Jun   1 ,  2019 ", want: 2019, wantOK: true},
		{name: "lowercase month", raw: "dec 31, 2024", want: 2024, wantOK: true},
		{name: "empty", raw: "", wantOK: false},
		{name: "blank", raw: "   ", wantOK: false},
		{name: "garbage", raw: "bad", wantOK: false},
		{name: "full month name", raw: "March 3, 2014", wantOK: false},
		{name: "iso date", raw: "2014-03-03", wantOK: false},
		{name: "missing day", raw: "Mar 2014", wantOK: false},
		{name: "trailing text", raw: "Mar 3, 2014 (EA)", wantOK: false},
		{name: "day past month end rolls over", raw: "Feb 30, 2014", want: 2014, wantOK: true},
		{name: "day past year end rolls over", raw: "Dec 32, 2014", want: 2015, wantOK: true},
		{name: "day zero rolls back", raw: "Jan 0, 2014", want: 2013, wantOK: true},
		{name: "unknown month", raw: "Foo 3, 2014", wantOK: false},
		{name: "placeholder", raw: "Coming soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := releasedate.Year(tt.raw)
			require.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestYear_Deterministic(t *testing.T) {
	t.Parallel()

	for range 3 {
		year, ok := releasedate.Year("Nov 15, 2013")
		require.True(t, ok)
		assert.Equal(t, 2013, year)
	}
}

func TestParse_KeepsMonthAndDay(t *testing.T) {
	t.Parallel()

	parsed, ok := releasedate.Parse("Jul 4, 2019")
	require.True(t, ok)
	assert.Equal(t, 7, int(parsed.Month()))
	assert.Equal(t, 4, parsed.Day())
}

func TestParse_RollsOverDays(t *testing.T) {
	t.Parallel()

	parsed, ok := releasedate.Parse("Feb 30, 2014")
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, time.March, 2, 0, 0, 0, 0, time.UTC), parsed)
}
