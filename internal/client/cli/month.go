package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/fatih/color"
)

// monthWidth is the printed width of one week row.
const monthWidth = len("Su  Mo  Tu  We  Th  Fr  Sa")

var (
	dayPlain    = color.New(color.Faint)
	dayWithNote = color.New(color.Bold, color.FgHiWhite)
	daySelected = color.New(color.ReverseVideo)
	dayToday    = color.New(color.Underline)
	monthTitle  = color.New(color.FgWhite, color.Italic)
)

// renderMonth prints a Sunday-first calendar of the month. Days with an
// entry carry a "*" marker; the selected day and today are highlighted.
func renderMonth(w io.Writer, year int, month time.Month, has func(datekey.Key) bool, selected, today datekey.Key) error {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	days := time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()

	title := fmt.Sprintf("%s %d", month, year)
	mid := (monthWidth - len(title)) / 2
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), monthTitle.Sprint(title)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Su  Mo  Tu  We  Th  Fr  Sa"); err != nil {
		return err
	}

	// Pad out the start of the month.
	cells := make([]string, 0, 7)
	for i := time.Sunday; i < first.Weekday(); i++ {
		cells = append(cells, "   ")
	}

	for d := 1; d <= days; d++ {
		key, err := datekey.Of(year, month, d)
		if err != nil {
			return err
		}

		style, mark := dayPlain, " "
		if has(key) {
			style, mark = dayWithNote, "*"
		}
		switch key {
		case selected:
			style = daySelected
		case today:
			style = dayToday
		}
		cells = append(cells, style.Sprintf("%2d", d)+mark)

		if len(cells) == 7 || d == days {
			if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " ")); err != nil {
				return err
			}
			cells = cells[:0]
		}
	}

	_, err := fmt.Fprintln(w, "\n* has an entry")
	return err
}

// parseMonth accepts YYYY-MM.
func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
