package main

import (
	"context"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/aoideee/bookshelf/internal/client"
)

const defaultServer = "http://localhost:3001"

// Run is the CLI entry point. args includes the program name. Returns the
// process exit code.
func Run(ctx context.Context, out, errOut io.Writer, args []string, env map[string]string) int {
	global := flag.NewFlagSet("shelf", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	server := global.StringP("server", "s", "", "API base URL (env SHELF_SERVER, default "+defaultServer+")")

	s := &shelf{out: out, errOut: errOut}

	if len(args) > 0 {
		args = args[1:]
	}
	if err := global.Parse(args); err != nil {
		printUsage(errOut)
		return s.fail(err)
	}

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "-h" || rest[0] == "--help" || rest[0] == "help" {
		printUsage(out)
		return 0
	}

	baseURL := *server
	if baseURL == "" {
		baseURL = env["SHELF_SERVER"]
	}
	if baseURL == "" {
		baseURL = defaultServer
	}
	s.api = client.New(baseURL, nil)
	s.catalog = client.NewMirror(s.api)

	for _, cmd := range commands() {
		if cmd.name == rest[0] {
			return cmd.execute(ctx, s, rest[1:])
		}
	}

	printUsage(errOut)
	return s.fail(&unknownCommandError{name: rest[0]})
}

type unknownCommandError struct{ name string }

func (e *unknownCommandError) Error() string { return "unknown command: " + e.name }

func printUsage(w io.Writer) {
	s := &shelf{out: w}
	s.printf("Usage: shelf [--server URL] <command> [flags]\n\nCommands:\n")
	for _, cmd := range commands() {
		s.printf("  %-34s %s\n", cmd.synopsis(), cmd.short)
	}
}
