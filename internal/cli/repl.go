package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to
// operate. The real App type satisfies this interface; tests can
// provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Timeline(ctx context.Context) error
	Memories(ctx context.Context) error
	AddMemory(ctx context.Context) error
	EditMemory(ctx context.Context) error
	DeleteMemory(ctx context.Context) error
	Bucket(ctx context.Context, args []string) error
	Milestones(ctx context.Context, args []string) error
	Countdown(ctx context.Context) error
	Gallery(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// While locked, only help, login and exit are available; everything
// else prompts for login first. Errors returned by command handlers
// are ignored here; handlers log their own errors, which keeps the
// loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("keepsake %s> ", statusFn()))
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

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: timeline, memories, add, edit, del, bucket, milestones, countdown, gallery, refresh, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isUnlocked() {
			printlnFn("Locked. Type 'login' first.")
			continue
		}

		switch cmd {
		case "timeline":
			_ = a.Timeline(ctx)

		case "memories":
			_ = a.Memories(ctx)

		case "add":
			_ = a.AddMemory(ctx)

		case "edit":
			_ = a.EditMemory(ctx)

		case "del":
			_ = a.DeleteMemory(ctx)

		case "bucket":
			_ = a.Bucket(ctx, args)

		case "milestones":
			_ = a.Milestones(ctx, args)

		case "countdown":
			_ = a.Countdown(ctx)

		case "gallery":
			_ = a.Gallery(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
