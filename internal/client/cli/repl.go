package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Sessions(ctx context.Context) error
	NewSession(ctx context.Context, args []string) error
	DeleteSession(ctx context.Context, args []string) error
	Connect(ctx context.Context, args []string) error
	Disconnect(ctx context.Context) error
	Tables(ctx context.Context) error
	Collections(ctx context.Context) error
	Table(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the dblook CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'; the remaining tokens are passed as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                  show available commands
//	  - register [user]       create an account
//	  - login [user]          authenticate
//	  - status                show mode, startup restore result and state
//	  - reset                 discard local state
//	  - exit | quit           leave the program
//
//	Logged in:
//	  - help                  show available commands
//	  - whoami                show the signed-in user
//	  - sessions              list database sessions
//	  - newsession <name>     create a session (database URL is prompted)
//	  - delsession <id>       delete a session
//	  - connect <id>          connect a session and make it active
//	  - disconnect            deselect the active session
//	  - tables                list vector tables of the active session
//	  - table [schema.]name   select a table in the active session
//	  - collections           list collections of the selected table
//	  - select [collection]   select a collection by id or name (no argument clears it)
//	  - status | reset        as above
//	  - logout                log out
//	  - exit | quit           leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("dblook %s> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, sessions, newsession, delsession, connect, disconnect, tables, table, collections, select, status, reset, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, reset, exit")
			}

		case "register":
			cmdErr = a.Register(ctx, args)

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "sessions", "ls":
			cmdErr = a.Sessions(ctx)

		case "newsession":
			cmdErr = a.NewSession(ctx, args)

		case "delsession":
			cmdErr = a.DeleteSession(ctx, args)

		case "connect":
			cmdErr = a.Connect(ctx, args)

		case "disconnect":
			cmdErr = a.Disconnect(ctx)

		case "tables":
			cmdErr = a.Tables(ctx)

		case "collections":
			cmdErr = a.Collections(ctx)

		case "table":
			cmdErr = a.Table(ctx, args)

		case "select":
			cmdErr = a.Select(ctx, args)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describeError(cmdErr))
		}
	}
}
