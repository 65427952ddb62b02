package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/render"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage")

type handler func(ctx context.Context, p *render.Printer, args []string) error

type command struct {
	summary string
	run     handler
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"register": {"create an account", a.cmdRegister},
		"login":    {"log in and store the token", a.cmdLogin},
		"logout":   {"forget the stored token", a.cmdLogout},
		"whoami":   {"show the current account", a.cmdAccount},
		"account":  {"show the current account", a.cmdAccount},
		"token":    {"token regenerate", a.cmdToken},
		"password": {"change the account password", a.cmdPassword},
		"stations": {"stations list|upsert", a.cmdStations},
		"sensors":  {"sensors list|upsert", a.cmdSensors},
		"records":  {"records list|template|upload|archive", a.cmdRecords},
		"station":  {"station show <id>", a.cmdStation},
		"tree":     {"select sensors and show their tags and records", a.cmdTree},
	}
}

// Run parses global flags and dispatches to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("envmon", flag.ContinueOnError)
	fs.SetOutput(a.out)
	output := fs.String("o", render.FormatTable, "output format: table|json|yaml")
	fs.Usage = func() { a.usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		a.usage(fs)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	printer, err := render.NewPrinter(a.out, *output)
	if err != nil {
		return err
	}

	cmd, ok := a.commands()[rest[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}
	a.logger.Debug("run command", zap.String("command", rest[0]), zap.Strings("args", rest[1:]))
	return cmd.run(ctx, printer, rest[1:])
}

func (a *App) usage(fs *flag.FlagSet) {
	fmt.Fprintln(a.out, "usage: envmon [-o table|json|yaml] <command> [flags]")
	fmt.Fprintln(a.out, "\ncommands:")
	cmds := a.commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-10s %s\n", name, cmds[name].summary)
	}
	fmt.Fprintln(a.out, "\nflags:")
	fs.PrintDefaults()
}

func (a *App) subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// subcommand splits "<verb> [flags]" for grouped commands.
func subcommand(group string, args []string, verbs ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: %s requires one of %s", ErrUsage, group, strings.Join(verbs, "|"))
	}
	for _, v := range verbs {
		if args[0] == v {
			return v, args[1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: unknown %s command %q", ErrUsage, group, args[0])
}

// checked turns transport failures and failed envelopes into one error.
func checked[T any](env *clients.Envelope[T], err error) (*clients.Envelope[T], error) {
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, raw)
	}
	return uint(v), nil
}

func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTime accepts RFC 3339 or a bare date. Empty input is the zero time.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q", ErrUsage, raw)
	}
	return t, nil
}

func closeQuietly(c io.Closer, logger *zap.Logger, what string) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", zap.String("resource", what), zap.Error(err))
	}
}
