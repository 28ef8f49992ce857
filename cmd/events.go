package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/calendar"
	"github.com/sadopc/sleepreset/internal/schedule"
)

var addFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "title, t",
		Usage: "event title",
	},
	cli.StringFlag{
		Name:  "start, s",
		Usage: `start time, RFC3339 or "2006-01-02 15:04" in the configured timezone`,
	},
	cli.DurationFlag{
		Name:  "duration, d",
		Usage: "event length",
		Value: calendar.DefaultEventDuration,
	},
}

var eventsFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "days",
		Usage: "how many days ahead to list (default: window_days from the config)",
	},
}

func add(ctx *cli.Context) error {
	if ctx.String("start") == "" {
		return errors.New("add: --start is required")
	}

	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	start, err := calendar.ParseStart(ctx.String("start"), e.svc.Location())
	if err != nil {
		return err
	}
	ev, err := e.svc.CreateEvent(context.Background(), ctx.String("title"), start, ctx.Duration("duration"))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Added %q on %s (%s)\n", ev.Title, ev.Start.Format("Mon Jan 02 15:04"), span(ev.Duration()))
	return nil
}

func events(ctx *cli.Context) error {
	var opts []schedule.Option
	if d := ctx.Int("days"); d > 0 {
		opts = append(opts, schedule.WithWindow(time.Duration(d)*24*time.Hour))
	}

	e, err := openEnv(ctx, false, opts...)
	if err != nil {
		return err
	}
	defer e.Close()

	list, err := e.svc.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(ctx.App.Writer, "No upcoming events.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Day", "Time", "Length", "Title")
	for _, ev := range list {
		t.Row(ev.Start.Format("Mon Jan 02"), ev.Start.Format("15:04"), span(ev.Duration()), ev.Title)
	}
	fmt.Fprintln(ctx.App.Writer, t.String())
	return nil
}
