package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/planner"
)

var planFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "nights, n",
		Usage: "also print the outlook for this many evenings",
	},
	cli.Float64Flag{
		Name:  "goal, g",
		Usage: "sleep goal in hours, instead of the saved one",
	},
	cli.Float64Flag{
		Name:  "buffer, b",
		Usage: "minutes to wake before the first event, instead of the saved value",
	},
}

func plan(ctx *cli.Context) error {
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg, err := e.svc.PlanningConfig()
	if err != nil {
		return err
	}
	if ctx.IsSet("goal") {
		cfg.SleepGoalHours = ctx.Float64("goal")
	}
	if ctx.IsSet("buffer") {
		cfg.WakeBufferMinutes = ctx.Float64("buffer")
	}

	c := context.Background()
	if _, err := e.svc.Snapshot(c); err != nil {
		return err
	}
	rec, err := e.svc.RecommendWith(cfg)
	if err != nil {
		return err
	}
	printRecommendation(ctx.App.Writer, rec)

	if n := ctx.Int("nights"); n > 0 {
		nights, err := e.svc.OutlookWith(c, n, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer)
		fmt.Fprintln(ctx.App.Writer, outlookTable(nights))
	}
	return nil
}

func printRecommendation(w io.Writer, rec planner.Recommendation) {
	fmt.Fprintf(w, "Bedtime  %s\n", rec.Bedtime.Format("Mon Jan 02 15:04"))
	fmt.Fprintf(w, "Wake     %s\n", rec.WakeTime.Format("Mon Jan 02 15:04"))
	if ev, ok := rec.NextEvent(); ok {
		fmt.Fprintf(w, "Next     %s at %s (wake %s before)\n",
			ev.Title, ev.Start.Format("15:04"), span(ev.Start.Sub(rec.WakeTime)))
	} else {
		fmt.Fprintln(w, "Next     no early events, default wake")
	}
	fmt.Fprintf(w, "Sleep    %s\n", span(rec.SleepDuration()))
}

func outlookTable(nights []planner.Night) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Night", "Bedtime", "Wake", "First event")
	for _, n := range nights {
		first := "-"
		if ev, ok := n.NextEvent(); ok {
			first = fmt.Sprintf("%s %s", ev.Start.Format("15:04"), ev.Title)
		}
		t.Row(n.Evening.Format("Mon Jan 02"), n.Bedtime.Format("15:04"), n.WakeTime.Format("15:04"), first)
	}
	return t.String()
}

// span prints whole minutes as 1h30m, 45m or 8h.
func span(d time.Duration) string {
	if d < 0 {
		return "-" + span(-d)
	}
	m := int(d.Round(time.Minute).Minutes())
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	default:
		return fmt.Sprintf("%dh%02dm", m/60, m%60)
	}
}
