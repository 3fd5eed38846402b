package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gobind "github.com/reoring/gobind"
	cborsink "github.com/reoring/gobind/sink/cbor"
	msgpacksink "github.com/reoring/gobind/sink/msgpack"
	yamlsink "github.com/reoring/gobind/sink/yaml"
	cborsrc "github.com/reoring/gobind/source/cbor"
	msgpacksrc "github.com/reoring/gobind/source/msgpack"
	yamlsrc "github.com/reoring/gobind/source/yaml"
)

type flushSink interface {
	gobind.Sink
	Flush() error
}

var sources = map[string]func(io.Reader) gobind.Source{
	"json":    gobind.JSONReader,
	"yaml":    yamlsrc.NewReader,
	"cbor":    cborsrc.NewReader,
	"msgpack": msgpacksrc.NewReader,
}

var sinks = map[string]func(io.Writer) flushSink{
	"json":    func(w io.Writer) flushSink { return gobind.NewJSONWriter(w) },
	"yaml":    func(w io.Writer) flushSink { return yamlsink.NewWriter(w) },
	"cbor":    func(w io.Writer) flushSink { return cborsink.NewWriter(w) },
	"msgpack": func(w io.Writer) flushSink { return msgpacksink.NewWriter(w) },
}

// newLogger writes warnings as JSON to w, or everything from debug up in the
// console format when verbose.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if verbose {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(w),
			zap.DebugLevel,
		)
		return zap.New(core, zap.Development())
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		zap.WarnLevel,
	)
	return zap.New(core)
}
