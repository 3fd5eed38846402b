// Command gobind binds record types described by schema files and uses them
// to check, canonicalize and describe documents.
//
//	gobind check  -s schema.yaml
//	gobind canon  -s schema.yaml [-i json|yaml|cbor|msgpack] [-o json|yaml|cbor|msgpack] [--omit-nulls] [file]
//	gobind schema -s schema.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
	"github.com/reoring/gobind/dynamic"
	_ "github.com/reoring/gobind/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env carries the process streams so commands can run under test.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// errUsage marks failures that should print usage and exit 2.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(e env, fs *pflag.FlagSet, c *common, args []string) error
	flags   func(fs *pflag.FlagSet)
}

var commands = []command{
	{name: "check", summary: "print the binding table of a schema", run: runCheck},
	{name: "canon", summary: "decode a document and re-encode it canonically", run: runCanon, flags: canonFlags},
	{name: "schema", summary: "print the JSON Schema of a record type", run: runSchema},
}

// common holds the flags every subcommand accepts.
type common struct {
	schema  string
	verbose bool
	log     *zap.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
			usage(stdout)
			return 0
		}
		fmt.Fprintf(stderr, "gobind: unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	var c common
	fs := pflag.NewFlagSet("gobind "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&c.schema, "schema", "s", "", "schema file (YAML, or JSON with comments for .json/.jsonc)")
	fs.BoolVar(&c.verbose, "verbose", false, "log codec resolution to stderr")
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if c.schema == "" {
		fmt.Fprintln(stderr, "gobind: --schema is required")
		fs.PrintDefaults()
		return 2
	}

	log := newLogger(c.verbose, stderr)
	defer func() { _ = log.Sync() }()
	c.log = log

	err := cmd.run(e, fs, &c, fs.Args())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "gobind %s: %v\n", cmd.name, err)
		return 2
	}
	if iss, ok := gobind.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(stderr, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
		}
		return 1
	}
	log.Error("command failed", zap.String("command", cmd.name), zap.Error(err))
	fmt.Fprintf(stderr, "gobind %s: %v\n", cmd.name, err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gobind <command> -s schema.yaml [flags]")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-7s %s\n", c.name, c.summary)
	}
}

// bindSchema loads the schema file and binds it with a registry that logs
// through the command logger.
func bindSchema(c *common) (*gobind.TypeBinding[dynamic.Record], error) {
	s, err := dynamic.Load(c.schema)
	if err != nil {
		return nil, err
	}
	reg := codec.New(codec.WithLogger(c.log))
	b, err := s.Bind(reg)
	if err != nil {
		return nil, err
	}
	c.log.Debug("schema bound", zap.String("schema", c.schema), zap.String("type", b.Name()), zap.Int("fields", len(b.Fields())))
	return b, nil
}
