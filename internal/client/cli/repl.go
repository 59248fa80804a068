package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saveeat/saveeat-client/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errUsage makes the REPL print the command's usage line.
var errUsage = errors.New("usage")

type command struct {
	name  string
	usage string
	help  string
	// auth commands are hidden and refused while signed out.
	auth bool
	run  func(ctx context.Context, args []string) error
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() []command
}

// runREPL starts a simple read–eval–print loop for the SaveEat CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to the matching entry of a.commands(). The loop exits on EOF,
// when ctx is done or when the user types "exit" or "quit".
//
// Command errors are printed with client.Message so the user sees the
// server's own explanation when there is one.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("saveeat [%s] > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := strings.ToLower(parts[0]), parts[1:]

		switch name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printHelp(a)
			continue
		}

		cmd, ok := lookup(a, name)
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.auth && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		if err := cmd.run(ctx, args); err != nil {
			if errors.Is(err, errUsage) {
				printlnFn("Usage:", cmd.usage)
				continue
			}
			printlnFn("Error:", client.Message(err))
		}
	}
}

func lookup(a execIface, name string) (command, bool) {
	for _, c := range a.commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printHelp(a execIface) {
	printlnFn("Available commands:")
	loggedIn := a.isLoggedIn()
	for _, c := range a.commands() {
		if c.auth && !loggedIn {
			continue
		}
		printlnFn(fmt.Sprintf("  %-34s %s", c.usage, c.help))
	}
	printlnFn(fmt.Sprintf("  %-34s %s", "exit | quit", "leave the program"))
}
