package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
)

var extensions = map[string]string{
	"svg":   ".svg",
	"ascii": ".txt",
	"json":  ".json",
	"dot":   ".dot",
}

func layoutCmd(a *app) *cobra.Command {
	var (
		format     string
		in         input
		output     string
		theme      string
		labels     bool
		caption    string
		maxTicks   int
		seedPolicy string
	)

	cmd := &cobra.Command{
		Use:   "layout <input>",
		Short: "Settle a graph and render the layout to a file",
		Long: `Read a graph, seed it, run the simulation until no node moves and
render the result.

  forcegraph layout services.json
  forcegraph layout deps.json --format ascii --output -
  forcegraph layout edges.csv --format svg --theme surreal --labels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, err := a.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if seedPolicy != "" {
				cfg.Seed.Policy = seedPolicy
			}
			if maxTicks > 0 {
				cfg.Layout.MaxTicks = maxTicks
			}

			renderer, err := render.GetRenderer(format)
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

			start := time.Now()
			ticks, err := physics.Settle(cmd.Context(), sim, g, cfg.Layout.MaxTicks)
			if err != nil {
				return fmt.Errorf("layout interrupted after %d ticks: %w", ticks, err)
			}
			elapsed := time.Since(start)
			logger.Info("layout settled",
				"dataset", ds.Name,
				"nodes", g.Len(),
				"edges", len(g.Edges()),
				"ticks", ticks,
				"backend", sim.Backend().Name(),
				"duration", elapsed,
			)
			settled := ticks < cfg.Layout.MaxTicks

			cam := newCamera(g, cfg.Camera, float64(cfg.Layout.Width), float64(cfg.Layout.Height))
			cam.SetScale(cfg.Layout.Scale)
			scene := render.FromCamera(cam, th)
			scene.Labels = labels
			scene.Caption = caption

			out, err := renderer.Render(scene)
			if err != nil {
				return fmt.Errorf("rendering failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if output == "-" {
				_, err := w.Write(out)
				return err
			}
			if output == "" {
				output = ds.Name + extensions[strings.ToLower(format)]
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			fmt.Fprintf(w, "%s %s\n", Good.Sprint("✓"), Brand.Sprint(ds.Name))
			field(w, "nodes", g.Len())
			field(w, "edges", len(g.Edges()))
			field(w, "ticks", ticks)
			field(w, "backend", sim.Backend().Name())
			field(w, "output", output)
			if !settled {
				Warn.Fprintf(w, "  layout did not settle within %d ticks\n", cfg.Layout.MaxTicks)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "svg", "Output format: svg, ascii, json or dot")
	in.bind(cmd)
	f.StringVarP(&output, "output", "o", "", "Output file, - for stdout (default <dataset name>.<format>)")
	f.StringVar(&theme, "theme", "default", "Color theme: default or surreal")
	f.BoolVar(&labels, "labels", false, "Label every node")
	f.StringVar(&caption, "caption", "", "Caption drawn in the corner")
	f.IntVar(&maxTicks, "max-ticks", 0, "Tick budget (default from config)")
	f.StringVar(&seedPolicy, "seed", "", "Seed policy: spread, random, smart, noise or none (default from config)")
	return cmd
}
