package cmd

import (
	"fmt"
	"io"

	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/config"
	"github.com/sadopc/sleepreset/internal/ics"
	"github.com/sadopc/sleepreset/internal/logging"
	"github.com/sadopc/sleepreset/internal/schedule"
	"github.com/sadopc/sleepreset/internal/store"
)

// env is everything a command needs, opened from the config file.
type env struct {
	cfg   *config.Config
	store *store.Store
	svc   *schedule.Service
	logs  io.Closer
}

func configPath(ctx *cli.Context) string {
	if p := ctx.GlobalString("config"); p != "" {
		return p
	}
	if p := ctx.String("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// openEnv loads the config, installs the logger and opens the store.
// logToFile sends logs to the rotating file instead of stderr.
func openEnv(ctx *cli.Context, logToFile bool, opts ...schedule.Option) (*env, error) {
	cfg, err := config.Load(appFs, configPath(ctx))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, err := logging.Setup(cfg.Log, logToFile)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("timezone: %w", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	base := []schedule.Option{
		schedule.WithClock(clock),
		schedule.WithLocation(loc),
		schedule.WithWindow(cfg.Window()),
		schedule.WithFetcher(ics.NewFetcher(appFs, cfg.CacheDir)),
	}
	svc := schedule.New(st, append(base, opts...)...)

	return &env{cfg: cfg, store: st, svc: svc, logs: logs}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.logs.Close()
}
