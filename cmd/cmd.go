// Package cmd is the sleepreset command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version string
	Commit  string
	Date    string
}

var (
	// appFs backs the config file, local ICS files, the feed cache and exports.
	appFs afero.Fs = afero.NewOsFs()
	clock          = time.Now
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "path to the YAML config file",
		EnvVar: "SLEEPRESET_CONFIG",
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	return newApp(bArgs, os.Stdout).Run(args)
}

func newApp(bArgs BuildArgs, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "sleepreset"
	app.HelpName = "sleepreset"
	app.Usage = "plan tonight's bedtime from tomorrow's calendar"
	app.UsageText = "sleepreset [--config FILE] <command> [arguments...]"
	app.Version = bArgs.Version
	app.Writer = out
	app.Flags = globalFlags
	app.Action = runTUI
	app.Commands = []cli.Command{
		{
			Name:   "tui",
			Usage:  "open the interactive interface (default)",
			Action: runTUI,
		},
		{
			Name:   "plan",
			Usage:  "print tonight's recommended bedtime",
			Action: plan,
			Flags:  planFlags,
		},
		{
			Name:   "add",
			Usage:  "add a local event",
			Action: add,
			Flags:  addFlags,
		},
		{
			Name:    "events",
			Aliases: []string{"ls"},
			Usage:   "list upcoming events",
			Action:  events,
			Flags:   eventsFlags,
		},
		{
			Name:      "import",
			Usage:     "import an ICS file or URL, or refresh every subscription",
			ArgsUsage: "[FILE|URL|SUBSCRIPTION]",
			Action:    importCmd,
			Flags:     importFlags,
		},
		{
			Name:   "export",
			Usage:  "export stored events as csv, json or ics",
			Action: exportCmd,
			Flags:  exportFlags,
		},
		{
			Name:   "watch",
			Usage:  "refresh subscriptions on the configured schedule",
			Action: watch,
			Flags:  watchFlags,
		},
		{
			Name:   "version",
			Usage:  "print the version",
			Action: func(ctx *cli.Context) error { return printVersion(ctx, bArgs) },
		},
	}
	app.HideVersion = true
	return app
}

func printVersion(ctx *cli.Context, b BuildArgs) error {
	v := b.Version
	if v == "" {
		v = "dev"
	}
	fmt.Fprintf(ctx.App.Writer, "%s %s (%s_%s)\n", ctx.App.Name, v, runtime.GOOS, runtime.GOARCH)
	if b.Commit != "" {
		fmt.Fprintf(ctx.App.Writer, "Build: %s=%s\n", b.Date, b.Commit)
	}
	return nil
}
