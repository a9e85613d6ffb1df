package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/zx06/minke/internal/app"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/output"
	"github.com/zx06/minke/internal/ui"
)

func main() {
	exit := run()
	os.Exit(exit)
}

// run is the main entry point
func run() int {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// execute runs one CLI invocation and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	GlobalConfig = &Config{}
	a := app.New(version, commit, date)
	w := output.New(stdout, stderr)
	cio := &IO{In: stdin, W: &w}

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(NewListCommand(cio))
	root.AddCommand(NewShowCommand(cio))
	root.AddCommand(NewAddCommand(cio))
	root.AddCommand(NewDeleteCommand(cio))
	root.AddCommand(NewImportCommand(cio))
	root.AddCommand(NewExportCommand(cio))
	root.AddCommand(NewClearCommand(cio))
	root.AddCommand(NewTagsCommand(cio))
	root.AddCommand(NewProbeCommand(cio))
	root.AddCommand(NewMCPCommand())
	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		xe := normalizeErr(err)
		if GlobalConfig.Logger != nil {
			GlobalConfig.Logger.Debug("command failed", "code", xe.Code, "err", err)
		}
		if hint := errorHint(xe); hint != "" {
			ui.New(stderr, !isInteractive()).Error(xe.Message, hint)
		}
		format := resolveFormatForError(GlobalConfig.FormatStr)
		_ = w.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}
	return int(errors.ExitOK)
}
