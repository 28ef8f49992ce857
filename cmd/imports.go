package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"
)

const defaultImportSource = "import"

var importFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "source, s",
		Usage: "source id the events are stored under; a re-import replaces them",
		Value: defaultImportSource,
	},
}

func importCmd(ctx *cli.Context) error {
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	c := context.Background()
	arg := ctx.Args().First()

	if arg == "" {
		if len(e.cfg.Subscriptions) == 0 {
			return errors.New("import: no file given and no subscriptions configured")
		}
		err := e.svc.Refresh(c, e.cfg.Subscriptions)
		fmt.Fprintf(ctx.App.Writer, "Refreshed %d subscription(s)\n", len(e.cfg.Subscriptions))
		return err
	}

	source, location := ctx.String("source"), arg
	if sub, ok := e.cfg.Subscription(arg); ok {
		source, location = sub.ID, sub.URL
	}

	n, err := e.svc.ImportLocation(c, source, location)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Imported %d event(s) into %q\n", n, source)
	return nil
}
