package main

import (
	"context"
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	gobind "github.com/reoring/gobind"
)

func runCheck(e env, _ *pflag.FlagSet, c *common, _ []string) error {
	b, err := bindSchema(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s\n", b.Name())
	for _, f := range b.Fields() {
		ctor := "-"
		if f.ConstructorSupplied {
			ctor = fmt.Sprintf("ctor[%d]", f.ConstructorIndex)
		}
		fmt.Fprintf(e.stdout, "%d\t%s\t%s\tsettable=%t\toptional=%t\n", f.Index, f.JSONName, ctor, f.Settable, f.Optional)
	}
	return nil
}

func runSchema(e env, _ *pflag.FlagSet, c *common, _ []string) error {
	b, err := bindSchema(c)
	if err != nil {
		return err
	}
	s, err := b.JSONSchema()
	if err != nil {
		return err
	}
	out, err := j.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.stdout, "%s\n", out)
	return err
}

func canonFlags(fs *pflag.FlagSet) {
	fs.StringP("input-format", "i", "json", "input format: json, yaml, cbor or msgpack")
	fs.StringP("output-format", "o", "json", "output format: json, yaml, cbor or msgpack")
	fs.Bool("omit-nulls", false, "leave null-valued fields out of the output")
	fs.Bool("fail-fast", false, "stop at the first decode issue")
}

func runCanon(e env, fs *pflag.FlagSet, c *common, args []string) error {
	inFormat, _ := fs.GetString("input-format")
	outFormat, _ := fs.GetString("output-format")
	omitNulls, _ := fs.GetBool("omit-nulls")
	failFast, _ := fs.GetBool("fail-fast")
	if len(args) > 1 {
		return fmt.Errorf("%w: at most one input file", errUsage)
	}
	newSource, ok := sources[inFormat]
	if !ok {
		return fmt.Errorf("%w: unknown input format %q", errUsage, inFormat)
	}
	newSink, ok := sinks[outFormat]
	if !ok {
		return fmt.Errorf("%w: unknown output format %q", errUsage, outFormat)
	}
	b, err := bindSchema(c)
	if err != nil {
		return err
	}

	in := e.stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	ctx := context.Background()
	rec, err := b.Decode(ctx, newSource(in), gobind.DecodeOpt{FailFast: failFast})
	if err != nil {
		return err
	}
	c.log.Debug("decoded", zap.String("format", inFormat))

	w := newSink(e.stdout)
	if err := b.Encode(ctx, rec, w, gobind.EncodeOpt{OmitNulls: omitNulls}); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if outFormat == "json" {
		_, err = io.WriteString(e.stdout, "\n")
	}
	return err
}
