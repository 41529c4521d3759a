package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ImSingee/mozinstall/internal/config"
	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/lib/tl"
	"github.com/ImSingee/mozinstall/internal/mozinstall"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/utils"
)

const (
	exitFailure           = 1
	exitInvalidSource     = 2
	exitUnsupportedFormat = 3
	exitBinaryNotFound    = 4
)

type options struct {
	source        string
	destination   string
	app           string
	configFile    string
	deleteArchive bool
	progress      bool
	debug         bool
	quiet         bool

	appSet           bool
	destinationSet   bool
	deleteArchiveSet bool
}

func run(ctx context.Context, o *options) error {
	// a bad source wins over a bad config file
	if err := checkSource(o.source); err != nil {
		return err
	}

	info := platform.Detect(ctx)
	slog.Debug("platform", "info", info)

	req, err := buildRequest(o, info.Platform)
	if err != nil {
		return err
	}

	// an already installed directory only needs the binary lookup
	if utils.IsDir(req.Source) {
		binary, err := mozinstall.GetBinary(req.Source, req.App, req.Platform)
		if err != nil {
			return err
		}
		pp.Println(binary)
		return nil
	}

	var binary string
	if o.progress && !o.quiet {
		binary, err = installWithProgress(ctx, req, os.Stderr)
	} else {
		binary, err = install(ctx, req)
	}
	if err != nil {
		return err
	}

	pp.Println(binary)
	return nil
}

func checkSource(source string) error {
	if source == "" {
		return installer.ErrInvalidSource
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %v", installer.ErrInvalidSource, err)
	}
	return nil
}

// buildRequest merges the config file into the command line options
func buildRequest(o *options, p platform.Platform) (*mozinstall.Request, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, ee.Wrap(err, "cannot get working directory")
	}

	c, err := config.Load(o.configFile, wd)
	if err != nil {
		return nil, err
	}
	if c.File != "" {
		slog.Debug("config loaded", "file", c.File)
	}

	req := &mozinstall.Request{
		Source:        o.source,
		Destination:   c.Destination,
		App:           c.App,
		Platform:      p,
		InstallerArgs: c.InstallerArgs,
		DeleteArchive: c.DeleteArchive,
	}
	if o.destinationSet || o.destination != "" {
		req.Destination = o.destination
	}
	if o.appSet || o.app != "" {
		req.App = o.app
	}
	if o.deleteArchiveSet {
		req.DeleteArchive = o.deleteArchive
	}
	if req.App == "" {
		req.App = mozinstall.DefaultApp
	}

	return req, nil
}

func install(ctx context.Context, req *mozinstall.Request) (string, error) {
	result, err := mozinstall.Install(ctx, req)
	if err != nil {
		return "", err
	}

	slog.Debug("install finished", "format", result.Format, "installDir", result.InstallDir, "version", result.Version)

	return result.Binary, nil
}

func installWithProgress(ctx context.Context, req *mozinstall.Request, w io.Writer, opts ...tea.ProgramOption) (string, error) {
	var (
		plan       *mozinstall.Plan
		installDir string
		binary     string
	)

	err := tl.Run(ctx, w, []*tl.Step{
		{
			Title: "Detect installer format",
			Run: func(ctx context.Context) (err error) {
				plan, err = mozinstall.Prepare(req)
				return err
			},
		},
		{
			Title: "Install " + req.App,
			Run: func(ctx context.Context) (err error) {
				installDir, err = plan.Install(ctx)
				return err
			},
		},
		{
			Title: "Locate " + req.App + " binary",
			Run: func(ctx context.Context) (err error) {
				binary, err = plan.Locate(installDir)
				return err
			},
		},
	}, opts...)
	if err != nil {
		// the step list already shows the error
		return "", fmt.Errorf("%w%w", ee.Phantom, err)
	}

	return binary, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case ee.Is(err, installer.ErrInvalidSource):
		return exitInvalidSource
	case ee.Is(err, installer.ErrUnsupportedFormat):
		return exitUnsupportedFormat
	case ee.Is(err, installer.ErrBinaryNotFound):
		return exitBinaryNotFound
	default:
		return exitFailure
	}
}
