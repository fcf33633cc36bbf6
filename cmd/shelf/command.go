package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/aoideee/bookshelf/internal/client"
)

// shelf is what every command runs against: the output streams, the raw API
// and the mirrored catalog. Lists are read through the mirror so one
// invocation never fetches the same list twice.
type shelf struct {
	out     io.Writer
	errOut  io.Writer
	api     *client.Client
	catalog *client.Mirror
}

func (s *shelf) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *shelf) fail(err error) int {
	_, _ = fmt.Fprintln(s.errOut, "error:", err)
	return 1
}

type command struct {
	name  string
	args  string // synopsis after the name
	short string
	flags *flag.FlagSet
	run   func(ctx context.Context, s *shelf, args []string) error
}

func (c *command) synopsis() string {
	return strings.TrimSpace(c.name + " " + c.args)
}

// execute parses the command's flags and runs it. Returns the exit code.
func (c *command) execute(ctx context.Context, s *shelf, args []string) int {
	c.flags.SetOutput(io.Discard)

	err := c.flags.Parse(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		s.printf("Usage: shelf %s\n\n%s\n", c.synopsis(), c.short)
		if usages := c.flags.FlagUsages(); usages != "" {
			s.printf("\nFlags:\n%s", usages)
		}
		return 0
	case err != nil:
		return s.fail(fmt.Errorf("%s: %w", c.name, err))
	}

	if err := c.run(ctx, s, c.flags.Args()); err != nil {
		return s.fail(err)
	}
	return 0
}
