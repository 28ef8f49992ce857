package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/schedule"
)

var watchFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "once",
		Usage: "run a single refresh and exit",
	},
}

func watch(ctx *cli.Context) error {
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := schedule.NewWatcher(e.svc, e.cfg.Refresh, e.cfg.Subscriptions)
	if err != nil {
		return err
	}
	w.OnUpdate = func(rec planner.Recommendation) {
		fmt.Fprintf(ctx.App.Writer, "bedtime %s, wake %s\n",
			rec.Bedtime.Format("Mon 15:04"), rec.WakeTime.Format("Mon 15:04"))
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.RunOnce(sigCtx)
	if ctx.Bool("once") {
		return nil
	}

	w.Start()
	slog.Info("watching subscriptions",
		"subscriptions", len(e.cfg.Subscriptions), "schedule", e.cfg.Refresh, "next_run", w.Next())

	<-sigCtx.Done()
	slog.Info("stopping watcher")
	<-w.Stop().Done()
	return nil
}
