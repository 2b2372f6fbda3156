// Package cli provides the interactive Daybook command-line client.
//
// It wires configuration, the local session store, the API client and the
// sync controller into a REPL that plays the role of the calendar and the
// entry editor. Typical flow: log in, pick a day, read or write its entry,
// move around the month.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
