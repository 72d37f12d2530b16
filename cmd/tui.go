package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/frame"
	"github.com/TFMV/forcegraph/logging"
	"github.com/TFMV/forcegraph/tui"
)

func tuiCmd(a *app) *cobra.Command {
	var (
		in      input
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tui <input>",
		Short: "Explore a graph in the terminal",
		Long: `Open an interactive terminal view of a graph. Drag nodes and pan
with the mouse, zoom with the wheel or +/-, press ? for every key.

  forcegraph tui services.json
  forcegraph tui deps.json --log-file forcegraph.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			// the terminal belongs to the viewer; logs only go to a file
			logger := logging.Discard()
			if logFile != "" {
				f, err := openLogFile(logFile)
				if err != nil {
					return err
				}
				defer f.Close()
				if logger, err = a.logger(cfg, f); err != nil {
					return err
				}
			}

			ds, g, err := loadGraph(cfg, args[0], in)
			if err != nil {
				return err
			}
			sim, err := newSimulator(cfg)
			if err != nil {
				return err
			}

			cam := newCamera(g, cfg.Camera, float64(cfg.Layout.Width), float64(cfg.Layout.Height))
			loop := frame.New(g, sim, cam, cfg.Frame, frame.WithLogger(logger))
			m := tui.New(loop,
				tui.WithLogger(logger),
				tui.WithName(ds.Name),
				tui.WithSeedPolicy(cfg.Seed.Policy),
				tui.WithTick(tickFor(cfg.Frame.MaxFPS)),
			)

			logger.Info("terminal viewer started", "dataset", ds.Name, "nodes", g.Len())
			return tui.Run(cmd.Context(), m)
		},
	}

	f := cmd.Flags()
	in.bind(cmd)
	f.StringVar(&logFile, "log-file", "", "Write logs to this file")
	return cmd
}

// tickFor returns the frame period for a rate.
func tickFor(fps float64) time.Duration {
	if fps <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// openLogFile opens path for appending log lines.
func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
