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
	Add(ctx context.Context) error
	List(ctx context.Context, status string) error
	Edit(ctx context.Context) error
	MarkRead(ctx context.Context) error
	Delete(ctx context.Context) error
	Info(ctx context.Context) error
	Check(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop over an open catalog session.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, context cancellation, or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current catalog (from statusFn) and accepts commands:
//
//   - help:           show available commands
//   - add:            add a book (interactive prompts)
//   - list [status]:  list books, optionally only unread/reading/read
//   - edit:           edit a book's title, author, or status
//   - read:           mark a book as read
//   - delete:         delete a book after confirmation
//   - info:           show catalog statistics
//   - check:          re-run the integrity check
//   - exit | quit:    leave the program
//
// Errors returned by command handlers are reported to the user here and the
// loop continues; only leaving the loop closes the catalog.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		printlnFn(fmt.Sprintf("bookvault %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: add, (l)ist [status], edit, read, delete, info, check, exit")

		case "add":
			err = a.Add(ctx)

		case "l", "list":
			status := ""
			if len(args) > 0 {
				status = args[0]
			}
			err = a.List(ctx, status)

		case "edit":
			err = a.Edit(ctx)

		case "read":
			err = a.MarkRead(ctx)

		case "delete":
			err = a.Delete(ctx)

		case "info":
			err = a.Info(ctx)

		case "check":
			err = a.Check(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
