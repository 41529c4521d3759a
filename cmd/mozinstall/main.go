package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ImSingee/go-ex/ee"
	"github.com/spf13/cobra"

	"github.com/ImSingee/mozinstall/internal/lib/xlog"
	"github.com/ImSingee/mozinstall/internal/version"
)

const help = `Install a Firefox style application bundle (zip, tar, dmg or exe)
and print the path of the application binary.

Usage:
  mozinstall -s <installer> [-d <destination>] [--app <name>]
`

func newApp() *cobra.Command {
	o := &options{}

	app := &cobra.Command{
		Use:           "mozinstall",
		Long:          help,
		Version:       version.GetVersionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.PersistentFlags().SortFlags = false
	app.PersistentFlags().BoolVar(&o.debug, "debug", false, "print additional debug information")
	app.PersistentFlags().BoolVarP(&o.quiet, "quiet", "q", false, "quiet mode (hide any output)")
	app.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if o.quiet {
			if null, _ := os.Open(os.DevNull); null != nil {
				os.Stdout = null
				os.Stderr = null
			}
		}

		xlog.Setup(o.debug, o.quiet)
		return nil
	}

	app.Flags().SortFlags = false
	app.Flags().StringVarP(&o.source, "source", "s", "", "path to the installer (zip, tar, dmg or exe) or an installed directory")
	app.Flags().StringVarP(&o.destination, "destination", "d", "", "directory to install the application into (default: the installer's directory)")
	app.Flags().StringVar(&o.app, "app", "", "name of the application binary to locate (default: firefox)")
	app.Flags().StringVar(&o.configFile, "config", "", "config file (default: $MOZINSTALL_CONFIG or .mozinstallrc in the working directory)")
	app.Flags().BoolVar(&o.deleteArchive, "delete-archive", false, "remove zip/tar installers after extraction")
	app.Flags().BoolVar(&o.progress, "progress", false, "show installation steps")

	app.RunE = func(cmd *cobra.Command, args []string) error {
		o.appSet = cmd.Flags().Changed("app")
		o.destinationSet = cmd.Flags().Changed("destination")
		o.deleteArchiveSet = cmd.Flags().Changed("delete-archive")

		return run(cmd.Context(), o)
	}

	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().ExecuteContext(ctx)
	stop()

	if err != nil {
		code := exitCode(err)

		switch {
		case ee.Is(err, ee.Phantom):
		case code == exitInvalidSource:
			slog.Debug("invalid source", "err", err)
			l("Error: must specify valid source")
		default:
			l("Error: %v", err)
		}

		os.Exit(code)
	}
}

func l(msg string, args ...any) {
	s := msg
	if len(args) != 0 {
		s = fmt.Sprintf(msg, args...)
	}

	_, _ = os.Stderr.Write([]byte("mozinstall - " + strings.TrimSpace(s) + "\n"))
}
