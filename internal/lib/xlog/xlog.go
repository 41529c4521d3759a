package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ImSingee/go-ex/pp"
)

// DisabledLogger drops every record
var DisabledLogger = slog.New(DisabledLogHandler{})

type DisabledLogHandler struct{}

func (DisabledLogHandler) Enabled(context.Context, slog.Level) bool { return false }

func (DisabledLogHandler) Handle(context.Context, slog.Record) error { return nil }

func (h DisabledLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h DisabledLogHandler) WithGroup(string) slog.Handler { return h }

// Setup configures the default logger and pp output. quiet wins over debug.
func Setup(debug, quiet bool) {
	if quiet {
		pp.Stdout.ChangeWriter(io.Discard)
		pp.Stderr.ChangeWriter(io.Discard)

		slog.SetDefault(DisabledLogger)
		return
	}

	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}
