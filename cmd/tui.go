package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"

	"github.com/sadopc/sleepreset/internal/tui"
)

func runTUI(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return fmt.Errorf("unknown command %q", ctx.Args().First())
	}

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	p := tea.NewProgram(tui.NewApp(e.svc, appFs, exportDir), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
