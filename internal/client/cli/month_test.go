package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func hasDays(keys ...datekey.Key) func(datekey.Key) bool {
	set := make(map[datekey.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(k datekey.Key) bool { return set[k] }
}

func TestRenderMonth_Golden(t *testing.T) {
	noColor(t)
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	tests := []struct {
		name     string
		year     int
		month    time.Month
		has      func(datekey.Key) bool
		selected datekey.Key
		today    datekey.Key
	}{
		{
			name:     "month_march_2024",
			year:     2024,
			month:    time.March,
			has:      hasDays("2024-03-03", "2024-03-10", "2024-03-15", "2024-03-31", "2024-04-01"),
			selected: "2024-03-10",
			today:    "2024-03-20",
		},
		{
			name:  "month_february_2026_empty",
			year:  2026,
			month: time.February,
			has:   hasDays(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderMonth(&buf, tt.year, tt.month, tt.has, tt.selected, tt.today))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderMonth_HighlightsWithColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	var buf bytes.Buffer
	require.NoError(t, renderMonth(&buf, 2024, time.March, hasDays(), "2024-03-10", ""))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestParseMonth(t *testing.T) {
	y, m, err := parseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)

	_, _, err = parseMonth("2024-2-1")
	require.Error(t, err)
}
