package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/frame"
	"github.com/TFMV/forcegraph/metrics"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr   string
		in     input
		theme  string
		settle bool
	)

	cmd := &cobra.Command{
		Use:   "serve <input>",
		Short: "Serve a live, interactive view of a graph",
		Long: `Start the HTTP viewer. Browsers connect over a websocket, stream
frames and drive the shared view with mouse, touch and wheel input.

  forcegraph serve services.json
  forcegraph serve deps.json --addr :9090 --config forcegraph.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := a.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			th, err := render.ThemeByName(theme)
			if err != nil {
				return err
			}

			ds, g, err := loadGraph(cfg, args[0], in)
			if err != nil {
				return err
			}
			sim, err := newSimulator(cfg)
			if err != nil {
				return err
			}
			reg := metrics.NewRegistry()

			ctx := cmd.Context()
			if settle {
				start := time.Now()
				ticks, err := physics.Settle(ctx, sim, g, cfg.Layout.MaxTicks)
				if err != nil {
					return err
				}
				reg.RecordSettle(sim.Backend().Name(), ticks, time.Since(start))
				logger.Info("initial layout settled", "ticks", ticks, "duration", time.Since(start))
			}

			cam := newCamera(g, cfg.Camera, float64(cfg.Layout.Width), float64(cfg.Layout.Height))
			loop := frame.New(g, sim, cam, cfg.Frame,
				frame.WithMetrics(reg),
				frame.WithLogger(logger.With("component", "frame")),
			)
			srv := server.New(cfg, loop,
				server.WithLogger(logger.With("component", "server")),
				server.WithMetrics(reg),
				server.WithTheme(th),
				server.WithName(ds.Name),
			)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", Good.Sprint("●"), Brand.Sprint(ds.Name))
			field(w, "nodes", g.Len())
			field(w, "edges", len(g.Edges()))
			field(w, "backend", sim.Backend().Name())
			field(w, "listening", cfg.Server.Addr)
			fmt.Fprintln(w, Subtle.Sprint("  Press Ctrl+C to stop"))

			group, gctx := errgroup.WithContext(ctx)
			group.Go(func() error { return srv.Run(gctx) })
			group.Go(func() error { return srv.ListenAndServe(gctx) })
			if a.configPath != "" {
				group.Go(func() error {
					return config.Watch(gctx, a.configPath, logger, func(next *config.Config) {
						if err := srv.Apply(gctx, next); err != nil {
							logger.Warn("failed to apply config", "error", err)
						}
					})
				})
			}
			if err := group.Wait(); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			fmt.Fprintln(w, Subtle.Sprint("  stopped"))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "Listen address (default from config)")
	in.bind(cmd)
	f.StringVar(&theme, "theme", "default", "Color theme: default or surreal")
	f.BoolVar(&settle, "settle", false, "Settle the layout before serving")
	return cmd
}
