package cmd

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/export"
)

var exportFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "format, f",
		Usage: "csv, json or ics",
		Value: "csv",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "output file (default: sleepreset-export-<date>.<format> in the current directory)",
	},
}

func exportCmd(ctx *cli.Context) error {
	format := strings.ToLower(ctx.String("format"))
	if !slices.Contains(export.Formats, format) {
		return fmt.Errorf("export: unknown format %q (want one of %s)", format, strings.Join(export.Formats, ", "))
	}

	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	path := ctx.String("out")
	if path == "" {
		path = filepath.Join(".", fmt.Sprintf("sleepreset-export-%s.%s", e.svc.Now().Format("2006-01-02"), format))
	}

	stored, err := e.svc.StoredEvents()
	if err != nil {
		return err
	}
	if err := export.Write(appFs, format, stored, path); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Exported %d event(s) to %s\n", len(stored), path)
	return nil
}
