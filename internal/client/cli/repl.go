package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn and printFn are test seams for user-facing REPL output.
var printlnFn = fmt.Println
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	handleError(ctx context.Context, err error)
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Today(ctx context.Context) error
	Select(ctx context.Context, arg string) error
	Step(ctx context.Context, days int) error
	Show(ctx context.Context) error
	Write(ctx context.Context) error
	Delete(ctx context.Context) error
	Month(ctx context.Context, arg string) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Export(ctx context.Context, arg string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, exit"
	helpLoggedIn  = "Available commands: today, (s)elect YYYY-MM-DD, (n)ext, (p)rev, show, (w)rite, delete, (m)onth [YYYY-MM], (l)ist, refresh, export [FILE], logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Daybook CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Diary commands need a session; without one
// the user is asked to login first. Errors returned by command handlers go
// to a.handleError so a failed command never ends the loop. The loop exits
// on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("daybook %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, errInputClosed) {
				a.handleError(ctx, err)
			}
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "signup":
			report(ctx, a, a.Signup(ctx))
			continue
		case "login":
			report(ctx, a, a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			if isDiaryCommand(cmd) {
				printlnFn("Please login first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			report(ctx, a, a.Logout(ctx))
		case "today", "t":
			report(ctx, a, a.Today(ctx))
		case "select", "s":
			if len(args) == 0 {
				printlnFn("Usage: select YYYY-MM-DD")
				continue
			}
			report(ctx, a, a.Select(ctx, args[0]))
		case "next", "n":
			report(ctx, a, a.Step(ctx, 1))
		case "prev", "p":
			report(ctx, a, a.Step(ctx, -1))
		case "show":
			report(ctx, a, a.Show(ctx))
		case "write", "w":
			report(ctx, a, a.Write(ctx))
		case "delete", "rm":
			report(ctx, a, a.Delete(ctx))
		case "month", "m":
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			report(ctx, a, a.Month(ctx, arg))
		case "list", "l":
			report(ctx, a, a.List(ctx))
		case "refresh":
			report(ctx, a, a.Refresh(ctx))
		case "export":
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			report(ctx, a, a.Export(ctx, arg))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(ctx context.Context, a execIface, err error) {
	if err != nil {
		a.handleError(ctx, err)
	}
}

func isDiaryCommand(cmd string) bool {
	switch cmd {
	case "logout", "today", "t", "select", "s", "next", "n", "prev", "p", "show",
		"write", "w", "delete", "rm", "month", "m", "list", "l", "refresh", "export":
		return true
	}
	return false
}
