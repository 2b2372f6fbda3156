package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/cache"
	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// longDateLayout renders a day for humans, e.g. "Sunday, March 10, 2024".
const longDateLayout = "Monday, January 2, 2006"

// previewLen bounds the first-line preview in the entry list.
const previewLen = 60

var errNoSelection = errors.New("no day selected, use 'today' or 'select YYYY-MM-DD'")

func (a *App) longDate(key datekey.Key) string {
	t, err := a.codec.DisplayDate(key)
	if err != nil {
		return key.String()
	}
	return t.Format(longDateLayout)
}

func (a *App) selected() (datekey.Key, error) {
	sel := a.ctrl.Snapshot().Selected
	if sel.IsZero() {
		return "", errNoSelection
	}
	return sel, nil
}

func (a *App) selectKey(ctx context.Context, key datekey.Key) error {
	if _, err := a.ctrl.SelectKey(ctx, key); err != nil {
		return err
	}
	return a.Show(ctx)
}

// Today selects the current day of the diary's calendar.
func (a *App) Today(ctx context.Context) error {
	return a.selectKey(ctx, a.codec.Today(a.now()))
}

// Select selects the day written as YYYY-MM-DD or an RFC 3339 timestamp.
func (a *App) Select(ctx context.Context, arg string) error {
	key, err := a.codec.Parse(arg)
	if err != nil {
		return err
	}
	return a.selectKey(ctx, key)
}

// Step moves the selection by days, starting from today if nothing is
// selected.
func (a *App) Step(ctx context.Context, days int) error {
	from := a.ctrl.Snapshot().Selected
	if from.IsZero() {
		from = a.codec.Today(a.now())
	}
	key, err := from.AddDays(days)
	if err != nil {
		return err
	}
	return a.selectKey(ctx, key)
}

// Show prints the selected day and its entry.
func (a *App) Show(ctx context.Context) error {
	snap := a.ctrl.Snapshot()
	if !snap.HasSelection() {
		return errNoSelection
	}

	fmt.Fprintln(a.out, a.longDate(snap.Selected))
	fmt.Fprintln(a.out, strings.Repeat("-", len(a.longDate(snap.Selected))))
	switch {
	case snap.Pending:
		fmt.Fprintln(a.out, "(loading...)")
	case snap.Entry == nil:
		fmt.Fprintln(a.out, "(no entry, use 'write' to add one)")
	case snap.Entry.Content == "":
		fmt.Fprintln(a.out, "(empty entry)")
	default:
		fmt.Fprintln(a.out, snap.Entry.Content)
	}
	return nil
}

// Write replaces the selected day's entry with text typed by the user.
func (a *App) Write(ctx context.Context) error {
	key, err := a.selected()
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Write the entry for %s", a.longDate(key))
	if e, st := a.ctrl.EntryFor(key); st == cache.Present {
		prompt += " (replaces the current text)"
		a.log.Debug(ctx, "overwriting entry", "date", key, "id", e.ID)
	}

	content, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if content == "" {
		ok, err := Confirm(a.reader, fmt.Sprintf("Save an empty entry for %s?", a.longDate(key)), a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Nothing written, entry unchanged.")
			return nil
		}
	}

	if _, err := a.ctrl.SaveKey(ctx, key, content); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// Delete removes the selected day's entry after confirmation.
func (a *App) Delete(ctx context.Context) error {
	key, err := a.selected()
	if err != nil {
		return err
	}

	if _, st := a.ctrl.EntryFor(key); st == cache.Absent {
		fmt.Fprintf(a.out, "No entry for %s.\n", a.longDate(key))
		return nil
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete the entry for %s?", a.longDate(key)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}

	if err := a.ctrl.DeleteKey(ctx, key); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Month prints a calendar of the month given as YYYY-MM, or of the selected
// day's month, or of the current month.
func (a *App) Month(ctx context.Context, arg string) error {
	today := a.codec.Today(a.now())
	sel := a.ctrl.Snapshot().Selected

	var (
		year  int
		month time.Month
		err   error
	)
	if arg != "" {
		year, month, err = parseMonth(arg)
	} else {
		from := sel
		if from.IsZero() {
			from = today
		}
		year, month, err = from.Month()
	}
	if err != nil {
		return err
	}

	return renderMonth(a.out, year, month, a.ctrl.HasEntry, sel, today)
}

// List prints every entry, newest first.
func (a *App) List(ctx context.Context) error {
	entries := a.ctrl.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "%-28s %s\n", a.longDate(e.Date), preview(e.Content))
	}
	return nil
}

// Refresh reloads every entry from the server.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.ctrl.LoadAll(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d entries loaded.\n", len(a.ctrl.Entries()))
	return nil
}

// Export asks the server for a downloadable copy of the diary. With a path
// argument the copy is saved there instead of printing the link.
func (a *App) Export(ctx context.Context, arg string) error {
	url, err := a.exportService.Export(ctx)
	if err != nil {
		return err
	}
	if arg == "" {
		fmt.Fprintln(a.out, "Download your diary (link valid for 15 minutes):")
		fmt.Fprintln(a.out, url)
		return nil
	}

	path, n, err := a.exportService.Save(ctx, url, arg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s.\n", n, path)
	return nil
}

func preview(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	r := []rune(line)
	if len(r) > previewLen {
		return string(r[:previewLen-3]) + "..."
	}
	return line
}
