// Package cmd implements the forcegraph command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/logging"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

var version = "0.3.0"

// app holds the persistent flags shared by every command.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "forcegraph",
		Short: "forcegraph: interactive force-directed graph layouts",
		Long: Brand.Sprint("forcegraph") + " lays out graphs with a grid-accelerated force simulation\n" +
			Subtle.Sprint("Render layouts to files, or explore them live in a browser or terminal"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("forcegraph {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML, TOML or JSON config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: json or text")

	root.AddCommand(
		layoutCmd(a),
		serveCmd(a),
		tuiCmd(a),
		configCmd(a),
		versionCmd(),
	)
	return root
}

// Execute runs the command line until it finishes or ctx is canceled.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// loadConfig returns the config file named by --config, or the defaults,
// with the log flags applied on top.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(cfg.Log, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// input selects how a dataset is read and which part of it is laid out.
type input struct {
	format   string
	group    string
	edgeType string
}

func (in *input) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&in.format, "input-format", "", "Input format: json, manifest, csv or text (default from extension)")
	f.StringVar(&in.group, "group", "", "Only lay out nodes of this group")
	f.StringVar(&in.edgeType, "edge-type", "", "Only keep edges of this type")
}

// loadGraph reads a dataset, narrows it to the selected group and edge type,
// builds its graph and seeds it with the configured policy.
func loadGraph(cfg *config.Config, path string, in input) (*models.Dataset, *graph.Graph, error) {
	ds, err := ingest.ProcessFile(path, in.format)
	if err != nil {
		return nil, nil, err
	}
	if in.group != "" || in.edgeType != "" {
		ds = ds.Subset(in.group, in.edgeType)
		if len(ds.Nodes) == 0 {
			return nil, nil, fmt.Errorf("no nodes in group %q", in.group)
		}
	}
	g, _, err := ds.Build(cfg.Physics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build graph: %w", err)
	}
	if err := physics.Seed(cfg.Seed.Policy, g, cfg.Seed.Value); err != nil {
		return nil, nil, err
	}
	return ds, g, nil
}

func newSimulator(cfg *config.Config) (*physics.Simulator, error) {
	backend, err := physics.NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return physics.NewSimulator(backend), nil
}

// newCamera returns a controller looking at a fixed w by h canvas.
func newCamera(g *graph.Graph, cfg camera.Config, w, h float64) *camera.Controller {
	cam := camera.New(g, cfg)
	cam.Feed(camera.Input{}, camera.Viewport{Rect: geom.Rect{W: w, H: h}, DPR: 1})
	return cam
}
