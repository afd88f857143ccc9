package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs. The real
// App satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	OpenFeed(ctx context.Context, user string) error
	Older(ctx context.Context) error
	MergeNew(ctx context.Context) error
	Post(ctx context.Context) error
	Delete(ctx context.Context, arg string) error
	Profile(ctx context.Context) error
	Show(ctx context.Context) error
}

// runREPL reads a line, dispatches the first token as a command, and
// loops until EOF or exit/quit. Command handlers report their own errors
// to the user; the loop only cares about I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("libapp> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed [user], show, older, new, post, delete <id>, profile, logout, exit")
			} else {
				printlnFn("Available commands: register, login, feed [user], show, older, new, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "feed":
			_ = a.OpenFeed(ctx, arg)

		case "show":
			_ = a.Show(ctx)

		case "older":
			_ = a.Older(ctx)

		case "new":
			_ = a.MergeNew(ctx)

		case "post":
			_ = a.Post(ctx)

		case "delete":
			_ = a.Delete(ctx, arg)

		case "profile":
			_ = a.Profile(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
